package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/becalab/becamap/internal/db"
	"github.com/becalab/becamap/internal/linkcheck"
	"github.com/becalab/becamap/internal/models"
)

// verificationStore is the slice of the record store the verify job reads.
// It is deliberately read-only: verification diagnoses and reports, only
// the repair pass writes status transitions.
type verificationStore interface {
	ListScholarships(ctx context.Context, params db.ListParams) (*db.ListResult, error)
	CreateNotification(ctx context.Context, title, message string) error
}

// runVerification probes every stored URL and builds the job result. A
// broken-link report triggers a dashboard notification; url_status itself
// is never touched.
func runVerification(ctx context.Context, store verificationStore, verifier *linkcheck.Verifier) (*linkcheck.VerificationReport, map[string]interface{}, error) {
	list, err := store.ListScholarships(ctx, db.ListParams{})
	if err != nil {
		return nil, nil, fmt.Errorf("loading records: %w", err)
	}

	report, err := verifier.VerifyAll(ctx, list.Scholarships)
	if err != nil {
		return nil, nil, err
	}

	result := map[string]interface{}{
		"working": len(report.Working),
		"broken":  report.Broken,
	}
	if data := report.BrokenReportBytes(); data != nil {
		result["report_filename"] = linkcheck.ReportFilename(time.Now())
		result["report"] = string(data)

		if err := store.CreateNotification(ctx,
			"Enlaces rotos detectados",
			fmt.Sprintf("%d enlaces fallaron la verificación", len(report.Broken)),
		); err != nil {
			log.Printf("verify notification: %v", err)
		}
	}
	return report, result, nil
}

// handleVerifyLinks probes every stored URL in a background job. The probes
// run sequentially with a fixed delay, so large batches take minutes; the
// endpoint returns 202 and the dashboard polls /links/job/:id for progress.
func (s *Server) handleVerifyLinks(c echo.Context) error {
	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":  "A verification job is already running",
			"job_id": job.ID,
		})
	}

	// Detach from the HTTP request lifecycle but keep an upper bound.
	jobCtx, jobCancel := context.WithTimeout(
		context.WithoutCancel(c.Request().Context()), 30*time.Minute,
	)

	jobID := uuid.New().String()[:8]
	job := &backgroundJob{
		ID:        jobID,
		Kind:      "verify",
		Status:    "running",
		StartedAt: time.Now(),
	}
	s.runningJob = job
	s.jobMu.Unlock()

	go func() {
		defer jobCancel()

		verifier := linkcheck.NewVerifier(linkcheck.NewHTTPProber(15 * time.Second))
		verifier.OnProgress = func(p linkcheck.Progress) {
			s.jobMu.Lock()
			job.Current = p.Current
			job.Total = p.Total
			job.Detail = p.Status
			s.jobMu.Unlock()
		}

		report, result, err := runVerification(jobCtx, s.Store, verifier)
		if err != nil {
			s.failJob(job, err)
			return
		}

		s.Metrics.IncProbes(models.URLStatusWorking, len(report.Working))
		s.Metrics.IncProbes(models.URLStatusBroken, len(report.Broken))

		s.jobMu.Lock()
		job.Status = "completed"
		job.EndedAt = time.Now()
		job.Result = result
		s.jobMu.Unlock()
		log.Printf("[verify-job %s] completed: working=%d broken=%d", jobID, len(report.Working), len(report.Broken))
	}()

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message": "Verification job started",
		"job_id":  jobID,
		"poll":    fmt.Sprintf("/api/v1/links/job/%s", jobID),
	})
}

func (s *Server) failJob(job *backgroundJob, err error) {
	s.jobMu.Lock()
	job.Status = "failed"
	job.Error = err.Error()
	job.EndedAt = time.Now()
	s.jobMu.Unlock()
	s.Metrics.IncErrors("verify_failed")
	log.Printf("[%s-job %s] failed: %v", job.Kind, job.ID, err)
}

// handleRepairLinks flags a limited batch of broken or unchecked records
// for manual review. Runs synchronously: the batch is capped small enough
// that the dashboard can wait.
func (s *Server) handleRepairLinks(c echo.Context) error {
	limit := linkcheck.DefaultRepairLimit
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	repairer := linkcheck.NewRepairer(s.Store)
	report, err := repairer.MarkBrokenForReview(c.Request().Context(), limit)
	if err != nil {
		s.Metrics.IncErrors("repair_failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, report)
}
