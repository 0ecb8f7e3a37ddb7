package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/becalab/becamap/internal/db"
	"github.com/becalab/becamap/internal/export"
)

// handleExport streams the whole directory in the requested format as an
// attachment download.
func (s *Server) handleExport(c echo.Context) error {
	format := export.Format(c.QueryParam("format"))
	level := c.QueryParam("level")

	list, err := s.Store.ListScholarships(c.Request().Context(), db.ListParams{})
	if err != nil {
		c.Logger().Errorf("Export load failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load records"})
	}

	result, err := export.Serialize(list.Scholarships, format, level)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if result.Advisory != "" {
		return c.JSON(http.StatusOK, result)
	}

	s.Metrics.IncExports(string(format))

	filename := export.Filename(format, time.Now())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, export.ContentType(format), result.Data)
}
