// Package export renders scholarship batches into the downloadable formats
// the dashboard offers. Every serializer is a pure function of the input
// slice: no store access, no clock reads in the payload, so identical input
// always yields byte-identical output.
package export

import (
	"fmt"
	"time"

	"github.com/becalab/becamap/internal/models"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatRAGText  Format = "ragtext"
)

// levelFilters is the only accepted filter vocabulary; keys are what the
// dashboard sends, values are what the nivel column actually holds.
var levelFilters = map[string]string{
	"pregrado":  "Pregrado",
	"maestria":  "Maestría",
	"doctorado": "Doctorado",
}

// Result carries the rendered artifact. An empty batch is not an error:
// Data is nil and Advisory tells the operator why.
type Result struct {
	Data     []byte `json:"-"`
	Count    int    `json:"count"`
	Advisory string `json:"advisory,omitempty"`
}

// Serialize renders records in the requested format after applying the
// optional level filter.
func Serialize(records []models.Scholarship, format Format, levelFilter string) (*Result, error) {
	filtered, err := filterByLevel(records, levelFilter)
	if err != nil {
		return nil, err
	}
	if len(filtered) == 0 {
		return &Result{Advisory: "No hay becas disponibles para este nivel"}, nil
	}

	var data []byte
	switch format {
	case FormatJSON:
		data, err = renderJSON(filtered)
	case FormatMarkdown:
		data, err = renderMarkdown(filtered)
	case FormatPDF:
		data, err = renderPDF(filtered)
	case FormatRAGText:
		data, err = renderRAGText(filtered)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("rendering %s export: %w", format, err)
	}

	return &Result{Data: data, Count: len(filtered)}, nil
}

func filterByLevel(records []models.Scholarship, levelFilter string) ([]models.Scholarship, error) {
	if levelFilter == "" || levelFilter == "all" {
		return records, nil
	}

	level, ok := levelFilters[levelFilter]
	if !ok {
		return nil, fmt.Errorf("unknown level filter %q", levelFilter)
	}

	filtered := make([]models.Scholarship, 0, len(records))
	for _, r := range records {
		if r.Level == level {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// Filename names the downloadable artifact for the given day.
func Filename(format Format, now time.Time) string {
	ext := "txt"
	switch format {
	case FormatJSON:
		ext = "json"
	case FormatPDF:
		ext = "pdf"
	}
	return fmt.Sprintf("becas_%s.%s", now.Format("2006-01-02"), ext)
}

// ContentType maps a format to its download MIME type.
func ContentType(format Format) string {
	switch format {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/plain; charset=utf-8"
	}
}
