package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/becalab/becamap/internal/bulkedit"
)

func (s *Server) handleBulkSearch(c echo.Context) error {
	var criterion bulkedit.Criterion
	if err := c.Bind(&criterion); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	results, err := s.Rewriter.Search(c.Request().Context(), criterion)
	if err != nil {
		if errors.Is(err, bulkedit.ErrEmptyCriterion) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Search criterion is required"})
		}
		if errors.Is(err, bulkedit.ErrNoMatch) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "No se encontraron becas con ese criterio"})
		}
		c.Logger().Errorf("Bulk search failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Search failed"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"count":   len(results),
		"matches": results,
	})
}

type bulkApplyRequest struct {
	SelectedIDs []string `json:"selected_ids"`
	NewURL      string   `json:"new_url"`
}

func (s *Server) handleBulkApply(c echo.Context) error {
	var req bulkApplyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	result, err := s.Rewriter.ApplyRewrite(c.Request().Context(), req.SelectedIDs, req.NewURL)
	if err != nil {
		switch {
		case errors.Is(err, bulkedit.ErrEmptyURL),
			errors.Is(err, bulkedit.ErrEmptySelection),
			errors.Is(err, bulkedit.ErrNotInLastSearch):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		c.Logger().Errorf("Bulk apply failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Rewrite failed"})
	}

	s.Metrics.AddRewrites(result.Count)
	if result.AuditError != "" {
		s.Metrics.IncErrors("audit_insert_failed")
	}

	return c.JSON(http.StatusOK, result)
}
