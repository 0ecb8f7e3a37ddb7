package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/becalab/becamap/internal/db"
	"github.com/becalab/becamap/internal/linkcheck"
	"github.com/becalab/becamap/internal/models"
)

type fakeVerifyStore struct {
	records       []models.Scholarship
	listErr       error
	notifications []string

	// statusWrites counts calls that would mutate url_status. The verify
	// job must leave it at zero.
	statusWrites int
}

func (f *fakeVerifyStore) ListScholarships(_ context.Context, _ db.ListParams) (*db.ListResult, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return &db.ListResult{Scholarships: f.records, Total: len(f.records)}, nil
}

func (f *fakeVerifyStore) CreateNotification(_ context.Context, title, _ string) error {
	f.notifications = append(f.notifications, title)
	return nil
}

func (f *fakeVerifyStore) MarkURLStatus(_ context.Context, _, _ string, _ time.Time) error {
	f.statusWrites++
	return nil
}

type stubProber struct {
	failures map[string]error
}

func (p stubProber) Probe(_ context.Context, url string) error {
	return p.failures[url]
}

func TestRunVerificationLeavesStatusesUntouched(t *testing.T) {
	store := &fakeVerifyStore{records: []models.Scholarship{
		{ID: "NL-01", Name: "Amsterdam Excellence", SourceURL: "https://ok.example"},
		{ID: "DE-01", Name: "DAAD Masters", SourceURL: "https://gone.example"},
	}}
	verifier := linkcheck.NewVerifierWithDelay(stubProber{failures: map[string]error{
		"https://gone.example": errors.New("status 404"),
	}}, 0)

	report, result, err := runVerification(context.Background(), store, verifier)
	require.NoError(t, err)

	require.Len(t, report.Working, 1)
	require.Len(t, report.Broken, 1)
	assert.Equal(t, "DE-01", report.Broken[0].ID)

	assert.Equal(t, 1, result["working"])
	assert.Contains(t, result, "report")
	assert.Contains(t, result, "report_filename")

	// Diagnosis only: broken records trigger a notification, never an
	// url_status write.
	assert.Equal(t, []string{"Enlaces rotos detectados"}, store.notifications)
	assert.Zero(t, store.statusWrites)
}

func TestRunVerificationAllWorkingSkipsNotification(t *testing.T) {
	store := &fakeVerifyStore{records: []models.Scholarship{
		{ID: "NL-01", Name: "Amsterdam Excellence", SourceURL: "https://ok.example"},
	}}
	verifier := linkcheck.NewVerifierWithDelay(stubProber{}, 0)

	report, result, err := runVerification(context.Background(), store, verifier)
	require.NoError(t, err)

	assert.Len(t, report.Working, 1)
	assert.Empty(t, report.Broken)
	assert.NotContains(t, result, "report")
	assert.Empty(t, store.notifications)
	assert.Zero(t, store.statusWrites)
}

func TestRunVerificationListFailure(t *testing.T) {
	store := &fakeVerifyStore{listErr: errors.New("connection refused")}
	verifier := linkcheck.NewVerifierWithDelay(stubProber{}, 0)

	_, _, err := runVerification(context.Background(), store, verifier)
	assert.ErrorContains(t, err, "connection refused")
}
