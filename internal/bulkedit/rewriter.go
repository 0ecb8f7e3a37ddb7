// Package bulkedit implements the two-phase bulk URL rewrite: an admin first
// searches for candidate records, then applies one replacement URL to a
// hand-picked subset of the matches. Applying against records that were not
// in the latest search is rejected, which keeps a stale dashboard tab from
// mutating rows the operator never saw.
package bulkedit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/becalab/becamap/internal/models"
)

var (
	ErrEmptyCriterion  = errors.New("search criterion is empty")
	ErrNoMatch         = errors.New("no records matched the criterion")
	ErrEmptyURL        = errors.New("replacement URL is empty")
	ErrEmptySelection  = errors.New("no records selected")
	ErrNotInLastSearch = errors.New("selection includes records outside the last search")
)

// Mode picks how the search value is interpreted.
type Mode string

const (
	ModeName Mode = "name" // substring match on beca_nombre
	ModeIDs  Mode = "ids"  // explicit ID list
	ModeURL  Mode = "url"  // exact url_origen match
)

type Criterion struct {
	Mode  Mode   `json:"mode"`
	Value string `json:"value"`
}

// Store is the slice of the record store the rewriter needs.
type Store interface {
	SearchByName(ctx context.Context, substring string) ([]models.Scholarship, error)
	SearchByIDs(ctx context.Context, ids []string) ([]models.Scholarship, error)
	SearchByURL(ctx context.Context, exact string) ([]models.Scholarship, error)
	BulkUpdateURL(ctx context.Context, ids []string, newURL string, checkedAt time.Time) (int64, error)
	InsertDeadlineUpdates(ctx context.Context, entries []models.DeadlineUpdate) error
}

// RewriteResult reports what a completed apply did. AuditError is set when
// the URL update itself landed but the audit-trail write failed; the rewrite
// is not rolled back in that case, the operator is told instead.
type RewriteResult struct {
	Count      int64    `json:"count"`
	IDs        []string `json:"ids"`
	AuditError string   `json:"audit_error,omitempty"`
}

// Rewriter holds the latest search results so ApplyRewrite can insist the
// selection came from them. One instance serves the whole dashboard.
type Rewriter struct {
	store Store
	now   func() time.Time

	mu      sync.Mutex
	matches map[string]models.Scholarship
}

func NewRewriter(store Store) *Rewriter {
	return &Rewriter{store: store, now: time.Now}
}

// Search runs the criterion against the store and remembers the matches.
// Every call replaces the previous result set. Zero matches is reported as
// ErrNoMatch so the operator sees it instead of a silently empty list, and
// it still clears the previous result set.
func (r *Rewriter) Search(ctx context.Context, c Criterion) ([]models.Scholarship, error) {
	value := strings.TrimSpace(c.Value)
	if value == "" {
		return nil, ErrEmptyCriterion
	}

	var (
		results []models.Scholarship
		err     error
	)
	switch c.Mode {
	case ModeIDs:
		ids := splitIDs(value)
		if len(ids) == 0 {
			return nil, ErrEmptyCriterion
		}
		results, err = r.store.SearchByIDs(ctx, ids)
	case ModeURL:
		results, err = r.store.SearchByURL(ctx, value)
	case ModeName:
		results, err = r.store.SearchByName(ctx, value)
	default:
		return nil, fmt.Errorf("unknown search mode %q", c.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("searching records: %w", err)
	}

	r.mu.Lock()
	r.matches = make(map[string]models.Scholarship, len(results))
	for _, record := range results {
		r.matches[record.ID] = record
	}
	r.mu.Unlock()

	if len(results) == 0 {
		return nil, ErrNoMatch
	}
	return results, nil
}

// ApplyRewrite points every selected record at newURL, marks it working, and
// appends one audit entry per record. Validation happens before any write:
// an invalid request leaves the store untouched.
func (r *Rewriter) ApplyRewrite(ctx context.Context, selectedIDs []string, newURL string) (*RewriteResult, error) {
	newURL = strings.TrimSpace(newURL)
	if newURL == "" {
		return nil, ErrEmptyURL
	}
	if len(selectedIDs) == 0 {
		return nil, ErrEmptySelection
	}

	r.mu.Lock()
	selected := make([]models.Scholarship, 0, len(selectedIDs))
	for _, id := range selectedIDs {
		record, ok := r.matches[id]
		if !ok {
			r.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrNotInLastSearch, id)
		}
		selected = append(selected, record)
	}
	r.mu.Unlock()

	ids := make([]string, len(selected))
	for i, record := range selected {
		ids[i] = record.ID
	}

	appliedAt := r.now()
	count, err := r.store.BulkUpdateURL(ctx, ids, newURL, appliedAt)
	if err != nil {
		return nil, fmt.Errorf("updating URLs: %w", err)
	}

	result := &RewriteResult{Count: count, IDs: ids}

	entries := make([]models.DeadlineUpdate, len(selected))
	for i, record := range selected {
		oldStatus := record.URLStatus
		if oldStatus == "" {
			oldStatus = "unknown"
		}
		entries[i] = models.DeadlineUpdate{
			ScholarshipID: record.ID,
			FieldChanged:  "url_status",
			OldValue:      oldStatus,
			NewValue:      models.URLStatusWorking,
			Notes:         fmt.Sprintf("Bulk update: URL changed from %s to %s", record.SourceURL, newURL),
			ChangedAt:     appliedAt,
		}
	}
	if err := r.store.InsertDeadlineUpdates(ctx, entries); err != nil {
		result.AuditError = err.Error()
	}

	return result, nil
}

// splitIDs tolerates comma, whitespace and newline separated input, since
// admins paste ID lists straight out of spreadsheets.
func splitIDs(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			ids = append(ids, f)
		}
	}
	return ids
}
