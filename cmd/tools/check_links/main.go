package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/becalab/becamap/internal/db"
	"github.com/becalab/becamap/internal/linkcheck"
)

func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	store := db.NewStore(pool)
	list, err := store.ListScholarships(ctx, db.ListParams{})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Verifying %d URLs...", len(list.Scholarships))

	verifier := linkcheck.NewVerifier(linkcheck.NewHTTPProber(15 * time.Second))
	verifier.OnProgress = func(p linkcheck.Progress) {
		fmt.Printf("\r[%d/%d] %s", p.Current, p.Total, p.Status)
	}

	report, err := verifier.VerifyAll(ctx, list.Scholarships)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Beca", "URL", "Error"})
	for _, b := range report.Broken {
		t.AppendRow(table.Row{b.ID, b.Name, b.SourceURL, b.Reason})
	}
	t.AppendFooter(table.Row{"", "", "Working", len(report.Working)})
	t.Render()

	if data := report.BrokenReportBytes(); data != nil {
		filename := linkcheck.ReportFilename(time.Now())
		if err := os.WriteFile(filename, data, 0o644); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		log.Printf("Broken-link report written to %s", filename)
	}
}
