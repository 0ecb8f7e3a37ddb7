package export

import (
	"encoding/json"

	"github.com/becalab/becamap/internal/models"
)

// exportedRecord is the external-facing schema consumed by the browser
// extension. Field names differ from the storage schema on purpose and must
// stay stable even if the internal model is renamed.
type exportedRecord struct {
	ID            string `json:"id"`
	Codigo        string `json:"codigo"`
	Titulo        string `json:"titulo"`
	Pais          string `json:"pais"`
	Region        string `json:"region"`
	Nivel         string `json:"nivel"`
	Link          string `json:"link"`
	Active        bool   `json:"active"`
	Universidad   string `json:"universidad"`
	Area          string `json:"area"`
	Disciplina    string `json:"disciplina"`
	Carrera       string `json:"carrera"`
	Excepciones   string `json:"excepciones"`
	Modalidad     string `json:"modalidad"`
	Idioma        string `json:"idioma"`
	Cooperante    string `json:"cooperante"`
	Nacionalidad  string `json:"nacionalidad"`
	Beneficios    string `json:"beneficios"`
	Requisitos    string `json:"requisitos"`
	SiguienteDead string `json:"siguiente_deadline"`
	UltimaDead    string `json:"ultima_deadline"`
	Estado        string `json:"estado"`
	Adicional     string `json:"adicional"`
	Excelencia    bool   `json:"excelencia"`
	Mujeres       bool   `json:"mujeres"`
}

func renderJSON(records []models.Scholarship) ([]byte, error) {
	out := make([]exportedRecord, len(records))
	for i, s := range records {
		out[i] = exportedRecord{
			ID:            s.ID,
			Codigo:        s.ID,
			Titulo:        s.Name,
			Pais:          s.Country,
			Region:        s.Region,
			Nivel:         s.Level,
			Link:          s.SourceURL,
			Active:        s.ValidationStatus == models.ValidationActive,
			Universidad:   s.University,
			Area:          s.Area,
			Disciplina:    s.Discipline,
			Carrera:       s.Career,
			Excepciones:   s.Exceptions,
			Modalidad:     s.Modality,
			Idioma:        s.Language,
			Cooperante:    s.Cooperator,
			Nacionalidad:  s.Nationality,
			Beneficios:    s.Benefits,
			Requisitos:    s.Requirements,
			SiguienteDead: s.NextDeadline,
			UltimaDead:    s.FinalDeadline,
			Estado:        s.State,
			Adicional:     s.AdditionalInfo,
			Excelencia:    s.Excellence,
			Mujeres:       s.WomenOnly,
		}
	}
	return json.MarshalIndent(out, "", "  ")
}
