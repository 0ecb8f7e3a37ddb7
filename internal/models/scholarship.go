package models

import "time"

// URL liveness classification, distinct from the editorial ValidationStatus.
const (
	URLStatusWorking     = "working"
	URLStatusBroken      = "broken"
	URLStatusNeedsReview = "needs_review"
)

const (
	ValidationActive     = "active"
	ValidationBrokenLink = "broken_link"
	ValidationPending    = "pending"
)

type Scholarship struct {
	ID               string     `json:"id"` // <COUNTRY_CODE>-<NN>, e.g. NL-01
	Country          string     `json:"pais"`
	Region           string     `json:"region"`
	Name             string     `json:"beca_nombre"`
	University       string     `json:"universidad"`
	Level            string     `json:"nivel"` // Pregrado, Maestría, Doctorado, ...
	Excellence       bool       `json:"excelencia"`
	WomenOnly        bool       `json:"mujeres"`
	Area             string     `json:"area"`
	Discipline       string     `json:"disciplina"`
	Career           string     `json:"carrera"`
	Exceptions       string     `json:"excepciones"`
	Modality         string     `json:"modalidad"`
	Language         string     `json:"idioma"`
	Cooperator       string     `json:"cooperante"`
	Nationality      string     `json:"nacionalidad"`
	Benefits         string     `json:"beneficios"`
	Requirements     string     `json:"requisitos"`
	NextDeadline     string     `json:"siguiente_deadline"` // display-only text, never parsed
	FinalDeadline    string     `json:"ultima_deadline"`
	State            string     `json:"estado"` // open vocabulary, see editor vs. creation form
	AdditionalInfo   string     `json:"adicional"`
	SourceURL        string     `json:"url_origen"`
	URLStatus        string     `json:"url_status"` // working, broken, needs_review or empty
	URLLastChecked   *time.Time `json:"url_last_checked"`
	ValidationStatus string     `json:"status_validacion"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// DeadlineUpdate is one append-only audit entry in the deadline_updates
// table. The bulk URL rewriter writes one per mutated record.
type DeadlineUpdate struct {
	ID            int64     `json:"id"`
	ScholarshipID string    `json:"scholarship_id"`
	FieldChanged  string    `json:"field_changed"`
	OldValue      string    `json:"old_value"`
	NewValue      string    `json:"new_value"`
	Notes         string    `json:"notes"`
	ChangedAt     time.Time `json:"changed_at"`
}
