package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/DEstebanP/transcript-AI/internal/app/api"
)

// MockTranscriber is a testify mock for api.Transcriber, for tests that
// assert on exact call expectations rather than canned behavior.
type MockTranscriber struct {
	mock.Mock
}

var _ api.Transcriber = (*MockTranscriber)(nil)

func (m *MockTranscriber) Transcript(ctx context.Context, audioPath string) (string, error) {
	args := m.Called(ctx, audioPath)
	return args.String(0), args.Error(1)
}
