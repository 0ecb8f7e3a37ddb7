// Package linkcheck verifies that scholarship source URLs still answer, and
// marks dead ones for manual review. Probing is deliberately sequential
// with a fixed inter-request delay so batches never hammer target sites.
package linkcheck

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/becalab/becamap/internal/models"
)

const (
	// InvalidURLReason classifies records whose URL is missing or not
	// http(s); those are never probed.
	InvalidURLReason = "Invalid URL"

	defaultProbeDelay = 100 * time.Millisecond
)

// BrokenLink is a record that failed verification plus why.
type BrokenLink struct {
	models.Scholarship
	Reason string `json:"reason"`
}

type VerificationReport struct {
	Working []models.Scholarship `json:"working"`
	Broken  []BrokenLink         `json:"broken"`
}

// Progress reports batch position for the live current/total display.
type Progress struct {
	Current int
	Total   int
	Status  string
}

type Verifier struct {
	prober Prober
	delay  time.Duration

	// OnProgress, when set, is invoked before each record is handled.
	OnProgress func(Progress)
}

func NewVerifier(prober Prober) *Verifier {
	return &Verifier{prober: prober, delay: defaultProbeDelay}
}

// NewVerifierWithDelay exists for tests and operator tooling that want a
// different throttle; delay <= 0 disables the inter-probe sleep.
func NewVerifierWithDelay(prober Prober, delay time.Duration) *Verifier {
	return &Verifier{prober: prober, delay: delay}
}

// VerifyAll probes every record sequentially and partitions the batch into
// working and broken. One failing probe never aborts the batch; only
// cancellation of ctx does. The store is never touched: the report is
// advisory, remediation is a separate step.
func (v *Verifier) VerifyAll(ctx context.Context, records []models.Scholarship) (*VerificationReport, error) {
	report := &VerificationReport{
		Working: []models.Scholarship{},
		Broken:  []BrokenLink{},
	}

	for i, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v.reportProgress(Progress{
			Current: i + 1,
			Total:   len(records),
			Status:  fmt.Sprintf("Verificando %s...", record.ID),
		})

		if record.SourceURL == "" || !strings.HasPrefix(record.SourceURL, "http") {
			report.Broken = append(report.Broken, BrokenLink{Scholarship: record, Reason: InvalidURLReason})
			continue
		}

		if err := v.prober.Probe(ctx, record.SourceURL); err != nil {
			report.Broken = append(report.Broken, BrokenLink{Scholarship: record, Reason: err.Error()})
		} else {
			report.Working = append(report.Working, record)
		}

		if v.delay > 0 && i < len(records)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(v.delay):
			}
		}
	}

	return report, nil
}

func (v *Verifier) reportProgress(p Progress) {
	if v.OnProgress != nil {
		v.OnProgress(p)
	}
}

// BrokenReportBytes renders the downloadable broken-link report:
// a pipe-delimited header row plus one row per broken record.
func (r *VerificationReport) BrokenReportBytes() []byte {
	if len(r.Broken) == 0 {
		return nil
	}

	var buf bytes.Buffer
	buf.WriteString("ID|Beca|URL|Error\n")
	for _, b := range r.Broken {
		fmt.Fprintf(&buf, "%s|%s|%s|%s\n", b.ID, b.Name, b.SourceURL, b.Reason)
	}
	return buf.Bytes()
}

// ReportFilename names the downloadable artifact for the given day.
func ReportFilename(now time.Time) string {
	return fmt.Sprintf("broken_links_%s.txt", now.Format("2006-01-02"))
}
