package models

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMarksDownloadedModels(t *testing.T) {
	modelDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "ggml-small.bin"), []byte("weights"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, list(&buf, modelDir))

	var smallLine, tinyLine string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "small ") {
			smallLine = line
		}
		if strings.Contains(line, "tiny ") {
			tinyLine = line
		}
	}
	require.NotEmpty(t, smallLine)
	require.NotEmpty(t, tinyLine)
	assert.True(t, strings.HasPrefix(smallLine, "*"), "downloaded model should be marked: %q", smallLine)
	assert.True(t, strings.HasPrefix(tinyLine, " "), "missing model should not be marked: %q", tinyLine)
	assert.Contains(t, buf.String(), "model directory: "+modelDir)
	assert.Contains(t, buf.String(), "english-only")
}

func TestDownloadModelRejectsUnknownID(t *testing.T) {
	var buf bytes.Buffer
	err := downloadModel(&buf, t.TempDir(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")
}

func TestDownloadModelSkipsPresentFile(t *testing.T) {
	modelDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "ggml-tiny.bin"), []byte("weights"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, downloadModel(&buf, modelDir, "tiny"))
	assert.Contains(t, buf.String(), "already present")
}

func TestFetchToFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("model weights"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "ggml-tiny.bin")
	require.NoError(t, fetchToFile(dest, server.URL))

	content, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "model weights", string(content))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(dest), ".partial-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestFetchToFileBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "ggml-tiny.bin")
	err := fetchToFile(dest, server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected HTTP status")
	assert.NoFileExists(t, dest)
}
