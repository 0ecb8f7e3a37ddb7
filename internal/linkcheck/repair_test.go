package linkcheck

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/becalab/becamap/internal/models"
)

type fakeRepairStore struct {
	records    []models.Scholarship
	listErr    error
	failIDs    map[string]error
	marked     []string
	lastStatus string
}

func (f *fakeRepairStore) ListBrokenOrUnchecked(_ context.Context, limit int) ([]models.Scholarship, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit < len(f.records) {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeRepairStore) MarkURLStatus(_ context.Context, id, status string, _ time.Time) error {
	if err, ok := f.failIDs[id]; ok {
		return err
	}
	f.marked = append(f.marked, id)
	f.lastStatus = status
	return nil
}

func TestMarkBrokenForReview(t *testing.T) {
	store := &fakeRepairStore{
		records: []models.Scholarship{
			{ID: "NL-01", URLStatus: models.URLStatusBroken},
			{ID: "NL-02"},
			{ID: "NL-03", URLStatus: models.URLStatusBroken},
		},
	}
	r := NewRepairerWithDelay(store, 0)

	report, err := r.MarkBrokenForReview(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Repaired)
	assert.Empty(t, report.Failed)
	assert.Equal(t, []string{"NL-01", "NL-02", "NL-03"}, store.marked)
	assert.Equal(t, models.URLStatusNeedsReview, store.lastStatus)
}

func TestMarkBrokenForReviewPartialFailure(t *testing.T) {
	store := &fakeRepairStore{
		records: []models.Scholarship{
			{ID: "PE-01"}, {ID: "PE-02"}, {ID: "PE-03"},
		},
		failIDs: map[string]error{"PE-02": errors.New("write refused")},
	}
	r := NewRepairerWithDelay(store, 0)

	report, err := r.MarkBrokenForReview(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Repaired)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "PE-02", report.Failed[0].ID)
	assert.Equal(t, "write refused", report.Failed[0].Error)
	// The failing record must not stop later ones.
	assert.Contains(t, store.marked, "PE-03")
}

func TestMarkBrokenForReviewRespectsLimit(t *testing.T) {
	store := &fakeRepairStore{}
	for i := 0; i < 30; i++ {
		store.records = append(store.records, models.Scholarship{ID: "US-" + string(rune('A'+i))})
	}
	r := NewRepairerWithDelay(store, 0)

	report, err := r.MarkBrokenForReview(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Repaired)
}

func TestMarkBrokenForReviewListFailureIsFatal(t *testing.T) {
	store := &fakeRepairStore{listErr: errors.New("store unavailable")}
	r := NewRepairerWithDelay(store, 0)

	_, err := r.MarkBrokenForReview(context.Background(), 20)
	assert.ErrorContains(t, err, "store unavailable")
}
