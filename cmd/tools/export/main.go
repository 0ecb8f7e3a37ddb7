package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/becalab/becamap/internal/db"
	"github.com/becalab/becamap/internal/export"
)

func main() {
	format := flag.String("format", "json", "export format: json, markdown, pdf, ragtext")
	level := flag.String("level", "", "level filter: pregrado, maestria, doctorado")
	outDir := flag.String("out", ".", "output directory")
	flag.Parse()

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

	result, err := export.Serialize(list.Scholarships, export.Format(*format), *level)
	if err != nil {
		log.Fatal(err)
	}
	if result.Advisory != "" {
		log.Fatal(result.Advisory)
	}

	path := filepath.Join(*outDir, export.Filename(export.Format(*format), time.Now()))
	if err := os.WriteFile(path, result.Data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}
	log.Printf("Wrote %d records to %s", result.Count, path)
}
