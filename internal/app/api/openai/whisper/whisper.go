package whisper

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/DEstebanP/transcript-AI/internal/app/api"
)

// Name identifies this engine in config files and run history.
const Name = "openai"

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client *openai.Client
}

var _ api.Transcriber = (*RemoteTranscriber)(nil)

// NewRemoteTranscriber creates an authenticated client. baseURL overrides
// the endpoint for self-hosted gateways and tests; empty keeps the default.
func NewRemoteTranscriber(apiKey string, baseURL string) *RemoteTranscriber {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &RemoteTranscriber{client: openai.NewClientWithConfig(cfg)}
}

// Transcript uploads the audio file and returns the recognized text.
func (rt *RemoteTranscriber) Transcript(ctx context.Context, audioPath string) (string, error) {
	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
	}
	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", &api.InferenceError{Engine: Name, File: audioPath, Err: err}
	}

	return resp.Text, nil
}
