package export

import (
	"bytes"
	"fmt"

	"github.com/becalab/becamap/internal/models"
)

const (
	fallbackRegion  = "Sin Región"
	fallbackCountry = "Sin País"
)

// renderMarkdown groups records by region, then country, in first-seen
// order. Empty fields are omitted rather than printed as placeholders,
// except Universidad and Nivel which always appear with an N/A fallback.
func renderMarkdown(records []models.Scholarship) ([]byte, error) {
	var (
		regionOrder  []string
		countryOrder = map[string][]string{}
		grouped      = map[string]map[string][]models.Scholarship{}
	)
	for _, s := range records {
		region := s.Region
		if region == "" {
			region = fallbackRegion
		}
		country := s.Country
		if country == "" {
			country = fallbackCountry
		}

		if _, ok := grouped[region]; !ok {
			grouped[region] = map[string][]models.Scholarship{}
			regionOrder = append(regionOrder, region)
		}
		if _, ok := grouped[region][country]; !ok {
			countryOrder[region] = append(countryOrder[region], country)
		}
		grouped[region][country] = append(grouped[region][country], s)
	}

	var buf bytes.Buffer
	buf.WriteString("# BecaMap - Complete Scholarship Database\n\n")
	fmt.Fprintf(&buf, "**Total Scholarships**: %d\n\n", len(records))
	buf.WriteString("---\n\n")

	for _, region := range regionOrder {
		fmt.Fprintf(&buf, "## %s\n\n", region)

		for _, country := range countryOrder[region] {
			fmt.Fprintf(&buf, "### %s\n\n", country)

			for i, s := range grouped[region][country] {
				name := s.Name
				if name == "" {
					name = "Sin nombre"
				}
				fmt.Fprintf(&buf, "#### %d. %s (%s)\n\n", i+1, name, s.ID)

				writeLine(&buf, "Universidad", orNA(s.University))
				writeLine(&buf, "Nivel", orNA(s.Level))
				writeOptional(&buf, "Modalidad", s.Modality)
				writeOptional(&buf, "Idioma", s.Language)
				writeOptional(&buf, "Área", s.Area)
				writeOptional(&buf, "Disciplina", s.Discipline)
				if s.Excellence {
					buf.WriteString("- **Beca de Excelencia**\n")
				}
				if s.WomenOnly {
					buf.WriteString("- **Solo Mujeres**\n")
				}
				writeOptional(&buf, "Nacionalidades Elegibles", s.Nationality)
				writeOptional(&buf, "Beneficios", s.Benefits)
				writeOptional(&buf, "Requisitos", s.Requirements)
				writeOptional(&buf, "Próximo Deadline", s.NextDeadline)
				writeOptional(&buf, "Deadline Final", s.FinalDeadline)
				writeOptional(&buf, "Estado", s.State)
				writeOptional(&buf, "Información Adicional", s.AdditionalInfo)

				url := s.SourceURL
				if url == "" {
					url = "No disponible"
				}
				writeLine(&buf, "URL", url)
				if s.ValidationStatus == models.ValidationActive {
					writeLine(&buf, "Status", "Active")
				} else {
					writeLine(&buf, "Status", "Inactive")
				}
				buf.WriteString("\n")
			}
		}
	}

	return buf.Bytes(), nil
}

func writeLine(buf *bytes.Buffer, label, value string) {
	fmt.Fprintf(buf, "- **%s**: %s\n", label, value)
}

func writeOptional(buf *bytes.Buffer, label, value string) {
	if value != "" {
		writeLine(buf, label, value)
	}
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
