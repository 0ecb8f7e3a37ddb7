package linkcheck

import (
	"context"
	"fmt"
	"time"

	"github.com/becalab/becamap/internal/models"
)

const (
	DefaultRepairLimit = 20

	defaultRepairDelay = 200 * time.Millisecond
)

// RepairStore is the slice of the record store the auto-repair pass needs.
type RepairStore interface {
	ListBrokenOrUnchecked(ctx context.Context, limit int) ([]models.Scholarship, error)
	MarkURLStatus(ctx context.Context, id, status string, checkedAt time.Time) error
}

type FailureEntry struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type RepairReport struct {
	Repaired int            `json:"repaired"`
	Failed   []FailureEntry `json:"failed"`
}

type Repairer struct {
	store RepairStore
	delay time.Duration
	now   func() time.Time

	OnProgress func(Progress)
}

func NewRepairer(store RepairStore) *Repairer {
	return &Repairer{store: store, delay: defaultRepairDelay, now: time.Now}
}

func NewRepairerWithDelay(store RepairStore, delay time.Duration) *Repairer {
	return &Repairer{store: store, delay: delay, now: time.Now}
}

// MarkBrokenForReview pulls records whose url_status is broken or unset and
// flags them needs_review. This is a holding pattern: no replacement URL is
// searched for, a human follows up on everything flagged here.
//
// Per-record write failures are collected and do not stop the batch.
func (r *Repairer) MarkBrokenForReview(ctx context.Context, limit int) (*RepairReport, error) {
	if limit <= 0 {
		limit = DefaultRepairLimit
	}

	records, err := r.store.ListBrokenOrUnchecked(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing broken records: %w", err)
	}

	report := &RepairReport{Failed: []FailureEntry{}}

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if r.OnProgress != nil {
			r.OnProgress(Progress{
				Current: i + 1,
				Total:   len(records),
				Status:  fmt.Sprintf("Buscando URL para %s...", record.ID),
			})
		}

		if err := r.store.MarkURLStatus(ctx, record.ID, models.URLStatusNeedsReview, r.now()); err != nil {
			report.Failed = append(report.Failed, FailureEntry{ID: record.ID, Error: err.Error()})
		} else {
			report.Repaired++
		}

		if r.delay > 0 && i < len(records)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.delay):
			}
		}
	}

	return report, nil
}
