package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/becalab/becamap/internal/db"
	"github.com/becalab/becamap/internal/models"
)

func (s *Server) handleListContent(c echo.Context) error {
	params := db.ContentListParams{
		Brand:       c.QueryParam("brand"),
		FunnelStage: c.QueryParam("funnel_stage"),
		Status:      c.QueryParam("status"),
	}

	pieces, err := s.Store.ListContentPieces(c.Request().Context(), params)
	if err != nil {
		c.Logger().Errorf("Failed to list content: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, pieces)
}

func (s *Server) handleCreateContent(c echo.Context) error {
	var piece models.ContentPiece
	if err := c.Bind(&piece); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if piece.Brand == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "brand is required"})
	}
	if piece.ContentStatus == "" {
		piece.ContentStatus = models.ContentStatuses[0]
	}
	if !models.ValidContentStatus(piece.ContentStatus) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown content_status: " + piece.ContentStatus})
	}

	if err := s.Store.CreateContentPiece(c.Request().Context(), &piece); err != nil {
		c.Logger().Errorf("Failed to create content piece: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create content piece"})
	}
	return c.JSON(http.StatusCreated, piece)
}

func (s *Server) handleUpdateContent(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid content ID"})
	}

	var piece models.ContentPiece
	if err := c.Bind(&piece); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	piece.ID = id
	if piece.ContentStatus != "" && !models.ValidContentStatus(piece.ContentStatus) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown content_status: " + piece.ContentStatus})
	}

	if err := s.Store.UpdateContentPiece(c.Request().Context(), &piece); err != nil {
		c.Logger().Errorf("Failed to update content piece %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update content piece"})
	}
	return c.JSON(http.StatusOK, piece)
}

func (s *Server) handleDeleteContent(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid content ID"})
	}

	if err := s.Store.DeleteContentPiece(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleContentStats(c echo.Context) error {
	stats, err := s.Store.GetContentStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

type ideaRequest struct {
	Brand        string `json:"brand"`
	FunnelStage  string `json:"funnel_stage"`
	UpsellTarget string `json:"upsell_target"`
}

func (s *Server) handleGenerateIdea(c echo.Context) error {
	var req ideaRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if req.Brand == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "brand is required"})
	}

	aiCtx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	idea, err := s.AI.GenerateContentIdea(aiCtx, req.Brand, req.FunnelStage, req.UpsellTarget)
	if err != nil {
		c.Logger().Errorf("Idea generation failed: %v", err)
		s.Metrics.IncErrors("idea_generation_failed")
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Idea generation failed"})
	}

	return c.JSON(http.StatusOK, idea)
}
