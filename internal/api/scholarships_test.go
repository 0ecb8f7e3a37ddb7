package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/becalab/becamap/internal/models"
)

func TestAuditChanges(t *testing.T) {
	before := &models.Scholarship{
		ID:            "NL-01",
		NextDeadline:  "15 de enero",
		FinalDeadline: "1 de marzo",
		State:         "Abierto",
	}
	after := &models.Scholarship{
		ID:            "NL-01",
		NextDeadline:  "20 de enero",
		FinalDeadline: "1 de marzo",
		State:         "Cerrado",
	}

	entries := auditChanges(before, after)
	require.Len(t, entries, 2)

	assert.Equal(t, "siguiente_deadline", entries[0].FieldChanged)
	assert.Equal(t, "15 de enero", entries[0].OldValue)
	assert.Equal(t, "20 de enero", entries[0].NewValue)
	assert.Equal(t, "estado", entries[1].FieldChanged)

	// Entries carry a real timestamp; changed_at orders the audit trail.
	for _, e := range entries {
		assert.Equal(t, "NL-01", e.ScholarshipID)
		assert.False(t, e.ChangedAt.IsZero())
	}
}

func TestAuditChangesNoDiff(t *testing.T) {
	rec := &models.Scholarship{ID: "NL-01", NextDeadline: "15 de enero", State: "Abierto"}
	assert.Empty(t, auditChanges(rec, rec))
}
