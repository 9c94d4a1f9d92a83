package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates the process logger. Verbose runs log at debug level with
// caller info, everything else logs info and above. Output goes to stderr so
// transcripts and summaries on stdout stay clean.
func NewLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	if !verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		config.DisableCaller = true
		config.DisableStacktrace = true
	}

	return config.Build()
}

// MustNewLogger creates a new logger and panics if it fails
func MustNewLogger(verbose bool) *zap.Logger {
	logger, err := NewLogger(verbose)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return logger
}
