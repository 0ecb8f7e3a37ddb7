package models

import "time"

// Content workflow statuses. Transitions are manual; there is no
// state-machine enforcement beyond membership in this set.
var ContentStatuses = []string{
	"Idea", "Guionizado", "En Grabación", "Edición", "Programado", "Publicado",
}

// ContentPiece is one planned social-media piece on the BecaContent board.
type ContentPiece struct {
	ID                 int64      `json:"id"`
	Brand              string     `json:"brand"`
	ContentStatus      string     `json:"content_status"`
	Format             string     `json:"format"`
	RedSocial          string     `json:"red_social"`
	FunnelStage        string     `json:"funnel_stage"` // TOFU, MOFU, BOFU
	GoalPillar         string     `json:"goal_pillar"`
	Producto           string     `json:"producto"`
	HookText           string     `json:"hook_text"`
	CaptionAI          string     `json:"caption_ai"`
	ManychatKeyword    string     `json:"manychat_keyword"`
	ManychatAutomation string     `json:"manychat_automation"`
	FreebieLink        string     `json:"freebie_link"`
	RefURL             string     `json:"ref_url"`
	UpsellTarget       string     `json:"upsell_target"`
	ScheduledDate      *time.Time `json:"scheduled_date"`
	Priority           int        `json:"priority"` // 1-5
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func ValidContentStatus(s string) bool {
	for _, known := range ContentStatuses {
		if s == known {
			return true
		}
	}
	return false
}
