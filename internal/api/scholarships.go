package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/becalab/becamap/internal/db"
	"github.com/becalab/becamap/internal/idgen"
	"github.com/becalab/becamap/internal/models"
)

func (s *Server) handleListScholarships(c echo.Context) error {
	params := db.ListParams{
		Search:     c.QueryParam("q"),
		Country:    c.QueryParam("country"),
		Estado:     c.QueryParam("estado"),
		Nivel:      c.QueryParam("nivel"),
		Validation: c.QueryParam("validation"),
		Limit:      50,
	}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 500 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		params.Offset = o
	}

	result, err := s.Store.ListScholarships(c.Request().Context(), params)
	if err != nil {
		c.Logger().Errorf("Failed to list scholarships: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetScholarship(c echo.Context) error {
	sch, err := s.Store.GetScholarship(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.JSON(http.StatusOK, sch)
}

func (s *Server) handleCreateScholarship(c echo.Context) error {
	var sch models.Scholarship
	if err := c.Bind(&sch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if sch.Name == "" || sch.Country == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "beca_nombre and pais are required"})
	}
	s.sanitizeScholarship(&sch)

	ctx := c.Request().Context()
	id, err := s.IDGen.GenerateUnique(ctx, sch.Country,
		func(err error) bool { return errors.Is(err, db.ErrDuplicateID) },
		func(id string) error {
			sch.ID = id
			return s.Store.CreateScholarship(ctx, &sch)
		})
	if err != nil {
		if errors.Is(err, idgen.ErrUnknownCountry) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown country: " + sch.Country})
		}
		c.Logger().Errorf("Failed to create scholarship: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create scholarship"})
	}

	created, err := s.Store.GetScholarship(ctx, id)
	if err != nil {
		return c.JSON(http.StatusCreated, sch)
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdateScholarship(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	existing, err := s.Store.GetScholarship(ctx, id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}

	// Bind over a copy so absent fields keep their stored values.
	updated := *existing
	if err := c.Bind(&updated); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	updated.ID = id
	s.sanitizeScholarship(&updated)

	entries := auditChanges(existing, &updated)

	if err := s.Store.UpdateScholarship(ctx, &updated); err != nil {
		c.Logger().Errorf("Failed to update scholarship %s: %v", id, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update scholarship"})
	}

	resp := map[string]interface{}{"scholarship": updated}
	if len(entries) > 0 {
		if err := s.Store.InsertDeadlineUpdates(ctx, entries); err != nil {
			// The record update stands; the missing audit rows are surfaced.
			c.Logger().Errorf("Audit insert failed for %s: %v", id, err)
			s.Metrics.IncErrors("audit_insert_failed")
			resp["audit_error"] = err.Error()
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeleteScholarship(c echo.Context) error {
	if err := s.Store.DeleteScholarship(c.Request().Context(), c.Param("id")); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListLevels(c echo.Context) error {
	levels, err := s.Store.Levels(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if levels == nil {
		levels = []string{}
	}
	return c.JSON(http.StatusOK, levels)
}

func (s *Server) handleGetStats(c echo.Context) error {
	stats, err := s.Store.GetStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleListAudit(c echo.Context) error {
	limit := 100
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 1000 {
		limit = l
	}

	entries, err := s.Store.ListDeadlineUpdates(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, entries)
}

// sanitizeScholarship strips markup from every free-text field before it
// reaches the store. IDs, URLs and flags pass through untouched.
func (s *Server) sanitizeScholarship(sch *models.Scholarship) {
	for _, field := range []*string{
		&sch.Country, &sch.Region, &sch.Name, &sch.University, &sch.Level,
		&sch.Area, &sch.Discipline, &sch.Career, &sch.Exceptions,
		&sch.Modality, &sch.Language, &sch.Cooperator, &sch.Nationality,
		&sch.Benefits, &sch.Requirements, &sch.NextDeadline,
		&sch.FinalDeadline, &sch.State, &sch.AdditionalInfo,
	} {
		*field = s.sanitizer.Sanitize(*field)
	}
}

// auditChanges records deadline and estado edits the way the editor always
// has: one append-only row per changed field.
func auditChanges(before, after *models.Scholarship) []models.DeadlineUpdate {
	var entries []models.DeadlineUpdate
	changedAt := time.Now()
	add := func(field, oldValue, newValue string) {
		if oldValue == newValue {
			return
		}
		entries = append(entries, models.DeadlineUpdate{
			ScholarshipID: before.ID,
			FieldChanged:  field,
			OldValue:      oldValue,
			NewValue:      newValue,
			Notes:         "Editor update",
			ChangedAt:     changedAt,
		})
	}

	add("siguiente_deadline", before.NextDeadline, after.NextDeadline)
	add("ultima_deadline", before.FinalDeadline, after.FinalDeadline)
	add("estado", before.State, after.State)
	return entries
}
