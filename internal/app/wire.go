//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/DEstebanP/transcript-AI/internal/app/batch"
)

// InitializeBatch assembles the whole pipeline from the command line options.
func InitializeBatch(opts Options) (*batch.Batch, error) {
	wire.Build(
		provideLogger,
		provideSettings,
		provideModel,
		provideConverter,
		provideTranscriber,
		provideHistory,
		provideBatch,
	)
	return nil, nil
}
