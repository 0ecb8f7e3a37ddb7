package linkcheck

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/becalab/becamap/internal/models"
)

type fakeProber struct {
	calls      int
	calledURLs []string
	failWith   map[string]error
}

func (f *fakeProber) Probe(_ context.Context, url string) error {
	f.calls++
	f.calledURLs = append(f.calledURLs, url)
	if err, ok := f.failWith[url]; ok {
		return err
	}
	return nil
}

func sch(id, url string) models.Scholarship {
	return models.Scholarship{ID: id, Name: "Beca " + id, SourceURL: url}
}

func TestVerifyAllEmptyBatch(t *testing.T) {
	v := NewVerifierWithDelay(&fakeProber{}, 0)

	report, err := v.VerifyAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Working)
	assert.Empty(t, report.Broken)
	assert.Nil(t, report.BrokenReportBytes())
}

func TestVerifyAllInvalidURLsSkipProbe(t *testing.T) {
	prober := &fakeProber{}
	v := NewVerifierWithDelay(prober, 0)

	records := []models.Scholarship{
		sch("NL-01", ""),
		sch("NL-02", "ftp://archive.example/becas"),
		sch("NL-03", "https://uva.example/scholarships"),
	}

	report, err := v.VerifyAll(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, report.Broken, 2)
	for _, b := range report.Broken {
		assert.Equal(t, InvalidURLReason, b.Reason)
	}
	assert.Len(t, report.Working, 1)

	// The two invalid URLs must never reach the network.
	assert.Equal(t, 1, prober.calls)
	assert.Equal(t, []string{"https://uva.example/scholarships"}, prober.calledURLs)
}

func TestVerifyAllPartitionsEveryRecord(t *testing.T) {
	probeErr := errors.New("connection refused")
	prober := &fakeProber{failWith: map[string]error{
		"https://dead.example/a": probeErr,
		"https://dead.example/b": probeErr,
	}}
	v := NewVerifierWithDelay(prober, 0)

	records := []models.Scholarship{
		sch("DE-01", "https://dead.example/a"),
		sch("DE-02", "https://alive.example/x"),
		sch("DE-03", "https://dead.example/b"),
		sch("DE-04", "not-a-url"),
		sch("DE-05", "https://alive.example/y"),
	}

	report, err := v.VerifyAll(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, len(records), len(report.Working)+len(report.Broken))
	assert.Len(t, report.Working, 2)
	require.Len(t, report.Broken, 3)
	assert.Equal(t, "connection refused", report.Broken[0].Reason)
}

func TestVerifyAllOneFailureNeverAbortsBatch(t *testing.T) {
	prober := &fakeProber{failWith: map[string]error{
		"https://dead.example": errors.New("timeout"),
	}}
	v := NewVerifierWithDelay(prober, 0)

	records := []models.Scholarship{
		sch("PE-01", "https://dead.example"),
		sch("PE-02", "https://alive.example"),
	}

	report, err := v.VerifyAll(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 2, prober.calls)
	assert.Len(t, report.Working, 1)
	assert.Len(t, report.Broken, 1)
}

func TestVerifyAllHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := NewVerifierWithDelay(&fakeProber{}, 0)
	_, err := v.VerifyAll(ctx, []models.Scholarship{sch("PE-01", "https://x.example")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerifyAllReportsProgress(t *testing.T) {
	v := NewVerifierWithDelay(&fakeProber{}, 0)

	var seen []Progress
	v.OnProgress = func(p Progress) { seen = append(seen, p) }

	records := []models.Scholarship{
		sch("PE-01", "https://a.example"),
		sch("PE-02", "https://b.example"),
	}
	_, err := v.VerifyAll(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, 1, seen[0].Current)
	assert.Equal(t, 2, seen[0].Total)
	assert.Contains(t, seen[1].Status, "PE-02")
}

func TestBrokenReportBytes(t *testing.T) {
	report := &VerificationReport{
		Broken: []BrokenLink{
			{Scholarship: sch("NL-01", "https://dead.example"), Reason: "timeout"},
			{Scholarship: sch("NL-02", ""), Reason: InvalidURLReason},
		},
	}

	lines := strings.Split(strings.TrimRight(string(report.BrokenReportBytes()), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID|Beca|URL|Error", lines[0])
	assert.Equal(t, "NL-01|Beca NL-01|https://dead.example|timeout", lines[1])
	assert.Equal(t, "NL-02|Beca NL-02||Invalid URL", lines[2])
}
