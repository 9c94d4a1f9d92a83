package whisper_server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DEstebanP/transcript-AI/internal/app/api"
)

// Name identifies this engine in config files and run history.
const Name = "whisper_server"

// maxResponseBytes bounds how much of a response body is read. Transcripts
// are text; anything bigger than this is a misbehaving server.
const maxResponseBytes = 16 << 20

// Config points at a running whisper.cpp server instance. The server holds
// the model, so model selection happens there, not here.
type Config struct {
	BaseURL       string
	InferencePath string        // default "/inference"
	Timeout       time.Duration // default 300s, whisper on CPU is slow
	Language      string        // empty lets the server autodetect
}

// HTTPTranscriber posts audio files to a whisper.cpp server's inference
// endpoint and reads back the recognized text.
type HTTPTranscriber struct {
	config Config
	client *http.Client
}

var _ api.Transcriber = (*HTTPTranscriber)(nil)

// NewHTTPTranscriber validates the target URL up front. A missing base URL
// means no file could ever be transcribed, which is a load failure.
func NewHTTPTranscriber(config Config) (*HTTPTranscriber, error) {
	if config.BaseURL == "" {
		return nil, &api.InferenceError{Engine: Name,
			Err: errors.New("whisper_server base_url is not configured")}
	}
	if !strings.HasPrefix(config.BaseURL, "http://") && !strings.HasPrefix(config.BaseURL, "https://") {
		return nil, &api.InferenceError{Engine: Name,
			Err: fmt.Errorf("whisper_server base_url %q must start with http:// or https://", config.BaseURL)}
	}
	if config.InferencePath == "" {
		config.InferencePath = "/inference"
	}
	if config.Timeout == 0 {
		config.Timeout = 300 * time.Second
	}

	return &HTTPTranscriber{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}, nil
}

type inferenceResponse struct {
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// Transcript uploads the audio as multipart form data and parses the JSON
// response.
func (ht *HTTPTranscriber) Transcript(ctx context.Context, audioPath string) (string, error) {
	body, contentType, err := ht.createMultipartForm(audioPath)
	if err != nil {
		return "", &api.InferenceError{Engine: Name, File: audioPath, Err: err}
	}

	url := ht.config.BaseURL + ht.config.InferencePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", &api.InferenceError{Engine: Name, File: audioPath, Err: err}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := ht.client.Do(req)
	if err != nil {
		return "", &api.InferenceError{Engine: Name, File: audioPath, Err: err}
	}
	defer resp.Body.Close()

	responseData, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &api.InferenceError{Engine: Name, File: audioPath,
			Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &api.InferenceError{Engine: Name, File: audioPath,
			Err: fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseData)))}
	}

	var parsed inferenceResponse
	if err := json.Unmarshal(responseData, &parsed); err != nil {
		return "", &api.InferenceError{Engine: Name, File: audioPath,
			Err: fmt.Errorf("failed to parse JSON response: %w", err)}
	}
	if parsed.Error != "" {
		return "", &api.InferenceError{Engine: Name, File: audioPath, Err: errors.New(parsed.Error)}
	}

	return strings.TrimSpace(parsed.Text), nil
}

func (ht *HTTPTranscriber) createMultipartForm(audioPath string) (*bytes.Buffer, string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to copy file content: %w", err)
	}

	if err := writer.WriteField("response_format", "json"); err != nil {
		return nil, "", fmt.Errorf("failed to write field: %w", err)
	}
	if ht.config.Language != "" {
		if err := writer.WriteField("language", ht.config.Language); err != nil {
			return nil, "", fmt.Errorf("failed to write field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
