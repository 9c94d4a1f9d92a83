package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DEstebanP/transcript-AI/internal/app/api"
	openaiwhisper "github.com/DEstebanP/transcript-AI/internal/app/api/openai/whisper"
	"github.com/DEstebanP/transcript-AI/internal/app/api/whisper_cpp"
	"github.com/DEstebanP/transcript-AI/internal/app/api/whisper_server"
	"github.com/DEstebanP/transcript-AI/internal/app/audio"
	"github.com/DEstebanP/transcript-AI/internal/app/batch"
	"github.com/DEstebanP/transcript-AI/internal/app/config"
	"github.com/DEstebanP/transcript-AI/internal/app/logging"
	"github.com/DEstebanP/transcript-AI/internal/app/repository"
	"github.com/DEstebanP/transcript-AI/internal/app/whisper"
	envcfg "github.com/DEstebanP/transcript-AI/internal/config"
)

// Options carries the command line selections into the object graph.
type Options struct {
	ModelID      string
	Engine       string // overrides the configured engine when set
	Device       string // overrides the configured device when set
	ConfigPath   string
	Verbose      bool
	ShowProgress bool
}

func provideLogger(opts Options) (*zap.Logger, error) {
	return logging.NewLogger(opts.Verbose)
}

func provideSettings(opts Options) (*config.Settings, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Engine != "" {
		settings.Engine = opts.Engine
	}
	if opts.Device != "" {
		settings.WhisperCpp.Device = opts.Device
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func provideModel(opts Options) (whisper.Model, error) {
	id := opts.ModelID
	if id == "" {
		id = whisper.DefaultModelID
	}
	return whisper.Lookup(id)
}

func provideConverter() audio.Converter {
	return audio.NewFFmpeg()
}

func provideTranscriber(settings *config.Settings, model whisper.Model, logger *zap.Logger) (api.Transcriber, error) {
	switch settings.Engine {
	case whisper_cpp.Name:
		return whisper_cpp.NewLocalTranscriber(whisper_cpp.Config{
			Binary:   settings.WhisperCpp.Binary,
			ModelDir: settings.WhisperCpp.ModelDir,
			Device:   settings.WhisperCpp.Device,
			Threads:  settings.WhisperCpp.Threads,
		}, model, logger)
	case openaiwhisper.Name:
		apiKey, err := envcfg.OpenAIKey()
		if err != nil {
			return nil, err
		}
		return openaiwhisper.NewRemoteTranscriber(apiKey, settings.OpenAI.BaseURL), nil
	case whisper_server.Name:
		return whisper_server.NewHTTPTranscriber(whisper_server.Config{
			BaseURL: settings.Server.BaseURL,
			Timeout: time.Duration(settings.Server.TimeoutSec) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown engine %q", settings.Engine)
	}
}

func provideHistory() (repository.TranscriptionDAO, error) {
	return repository.Open()
}

func provideBatch(opts Options, settings *config.Settings, model whisper.Model, converter audio.Converter,
	transcriber api.Transcriber, history repository.TranscriptionDAO, logger *zap.Logger) *batch.Batch {
	return batch.New(batch.Config{
		Converter:   converter,
		Transcriber: transcriber,
		History:     history,
		Engine:      settings.Engine,
		Model:       model.ID,
		Logger:      logger,
		Progress:    batch.ProgressConfig{Enabled: opts.ShowProgress},
	})
}
