package export

import (
	"bytes"
	"sort"

	"github.com/becalab/becamap/internal/models"
)

// RecordSeparator delimits records in the RAG text export. Downstream
// chunking splits on it, so it appears between records only.
const RecordSeparator = "\n-----\n\n"

const (
	fallbackConsult     = "Consultar convocatoria"
	fallbackUnspecified = "No especificado"
	fallbackNoURL       = "No disponible"
)

// ragKeys is the fixed key set every record emits, in order. A downstream
// retrieval index relies on every key being present, so missing values get
// fallback text instead of being dropped.
var ragKeys = []struct {
	label    string
	fallback string
	value    func(models.Scholarship) string
}{
	{"Código", "", func(s models.Scholarship) string { return s.ID }},
	{"Beca", fallbackUnspecified, func(s models.Scholarship) string { return s.Name }},
	{"País", fallbackUnspecified, func(s models.Scholarship) string { return s.Country }},
	{"Región", fallbackUnspecified, func(s models.Scholarship) string { return s.Region }},
	{"Universidad", fallbackUnspecified, func(s models.Scholarship) string { return s.University }},
	{"Nivel", fallbackUnspecified, func(s models.Scholarship) string { return s.Level }},
	{"Área", fallbackUnspecified, func(s models.Scholarship) string { return s.Area }},
	{"Disciplina", fallbackUnspecified, func(s models.Scholarship) string { return s.Discipline }},
	{"Modalidad", fallbackUnspecified, func(s models.Scholarship) string { return s.Modality }},
	{"Idioma", fallbackUnspecified, func(s models.Scholarship) string { return s.Language }},
	{"Nacionalidad", fallbackUnspecified, func(s models.Scholarship) string { return s.Nationality }},
	{"Beneficios", fallbackConsult, func(s models.Scholarship) string { return s.Benefits }},
	{"Requisitos", fallbackConsult, func(s models.Scholarship) string { return s.Requirements }},
	{"Siguiente deadline", fallbackConsult, func(s models.Scholarship) string { return s.NextDeadline }},
	{"Último deadline", fallbackConsult, func(s models.Scholarship) string { return s.FinalDeadline }},
	{"Estado", fallbackUnspecified, func(s models.Scholarship) string { return s.State }},
	{"URL", fallbackNoURL, func(s models.Scholarship) string { return s.SourceURL }},
}

func renderRAGText(records []models.Scholarship) ([]byte, error) {
	sorted := make([]models.Scholarship, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var buf bytes.Buffer
	for i, s := range sorted {
		if i > 0 {
			buf.WriteString(RecordSeparator)
		}
		for _, key := range ragKeys {
			value := key.value(s)
			if value == "" {
				value = key.fallback
			}
			buf.WriteString(key.label)
			buf.WriteString(": ")
			buf.WriteString(value)
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}
