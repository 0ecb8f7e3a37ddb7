package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	var gotPath, gotAuth, gotType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret-key")
	path, err := c.Upload(context.Background(), "content-images", "123-abc.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)

	assert.Equal(t, "123-abc.png", path)
	assert.Equal(t, "/object/content-images/123-abc.png", gotPath)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, []byte("png-bytes"), gotBody)
}

func TestUploadSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bucket not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k")
	_, err := c.Upload(context.Background(), "missing", "x.txt", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "bucket not found")
}

func TestPublicURL(t *testing.T) {
	c := NewClient("https://store.example/storage/v1/", "k")
	assert.Equal(t,
		"https://store.example/storage/v1/object/public/content-images/123-abc.png",
		c.PublicURL("content-images", "123-abc.png"))
}

func TestObjectPath(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{13}-[0-9a-f]{8}\.png$`)

	first := ObjectPath(".png")
	second := ObjectPath("png")
	assert.Regexp(t, pattern, first)
	assert.Regexp(t, pattern, second)
	assert.NotEqual(t, first, second)
}
