package api

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/becalab/becamap/internal/storage"
)

func (s *Server) handleListNotifications(c echo.Context) error {
	notifications, err := s.Store.ListNotifications(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, notifications)
}

func (s *Server) handleMarkNotificationRead(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid notification ID"})
	}

	if err := s.Store.MarkNotificationRead(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) handleDismissNotification(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid notification ID"})
	}

	if err := s.Store.DismissNotification(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusOK)
}

const maxUploadBytes = 10 << 20 // 10 MiB

// handleUpload pushes a multipart file to object storage and returns its
// public URL. Bucket defaults to the content-images bucket.
func (s *Server) handleUpload(c echo.Context) error {
	bucket := c.FormValue("bucket")
	if bucket == "" {
		bucket = "content-images"
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}
	if fileHeader.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "file too large"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read file"})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to read file"})
	}
	if int64(len(data)) > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "file too large"})
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileHeader.Filename), "."))
	if ext == "" {
		ext = "bin"
	}
	path := storage.ObjectPath(ext)

	if _, err := s.Storage.Upload(c.Request().Context(), bucket, path, data, fileHeader.Header.Get("Content-Type")); err != nil {
		c.Logger().Errorf("Upload failed: %v", err)
		s.Metrics.IncErrors("upload_failed")
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Upload failed"})
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"path": path,
		"url":  s.Storage.PublicURL(bucket, path),
	})
}
