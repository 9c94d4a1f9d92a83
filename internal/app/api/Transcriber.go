package api

import (
	"context"
	"fmt"
)

// Transcriber defines a transcription interface for converting audio files
// to text. Implementations hold a resolved model or client and are reused
// for every file in a batch.
type Transcriber interface {
	Transcript(ctx context.Context, audioPath string) (string, error)
}

// InferenceError reports a transcription engine failure. A failure with an
// empty File happened while loading the model and aborts the whole run; a
// failure naming a File only fails that file.
type InferenceError struct {
	Engine string
	File   string
	Err    error
}

func (e *InferenceError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%s: model load failed: %v", e.Engine, e.Err)
	}
	return fmt.Sprintf("%s: transcription failed for %q: %v", e.Engine, e.File, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }
