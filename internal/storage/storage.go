// Package storage uploads dashboard assets (content images, export
// snapshots) to an S3-compatible object store over its REST API.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient points at a storage endpoint, e.g. https://xyz.example/storage/v1.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload stores data under bucket/path and returns the path back. Paths are
// caller-generated (see ObjectPath); there is no server-side collision check.
func (c *Client) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	url := fmt.Sprintf("%s/object/%s/%s", c.baseURL, bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("storage returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return path, nil
}

// PublicURL builds the unauthenticated download URL for an uploaded object.
func (c *Client) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.baseURL, bucket, path)
}

// ObjectPath names a new object <epoch-ms>-<random>.<ext>. The timestamp
// keeps listings chronological, the random suffix avoids collisions within
// the same millisecond.
func ObjectPath(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), suffix, ext)
}
