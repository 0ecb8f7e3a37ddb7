package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/becalab/becamap/internal/db"
)

func main() {
	limit := flag.Int("limit", 30, "number of audit entries to show")
	flag.Parse()

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	store := db.NewStore(pool)
	entries, err := store.ListDeadlineUpdates(ctx, *limit)
	if err != nil {
		log.Fatal(err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"When", "Scholarship", "Field", "Old", "New", "Notes"})
	for _, e := range entries {
		t.AppendRow(table.Row{
			e.ChangedAt.Format("2006-01-02 15:04"),
			e.ScholarshipID, e.FieldChanged, e.OldValue, e.NewValue, e.Notes,
		})
	}
	t.Render()
}
