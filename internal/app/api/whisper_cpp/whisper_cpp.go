package whisper_cpp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/DEstebanP/transcript-AI/internal/app/api"
	"github.com/DEstebanP/transcript-AI/internal/app/util/files"
	"github.com/DEstebanP/transcript-AI/internal/app/whisper"
)

// Name identifies this engine in config files and run history.
const Name = "whisper_cpp"

// Config controls the local whisper.cpp invocation.
type Config struct {
	Binary   string // whisper.cpp CLI binary, resolved on PATH when bare
	ModelDir string // directory holding the ggml weights files
	Device   string // "auto" lets the binary pick, "cpu" disables GPU offload
	Threads  int    // 0 lets the binary decide
}

// LocalTranscriber implements local transcription by shelling out to a
// whisper.cpp binary. The binary and weights file are resolved once at
// construction and reused for every file in the batch.
type LocalTranscriber struct {
	binaryPath string
	modelPath  string
	model      whisper.Model
	device     string
	threads    int
	logger     *zap.Logger

	run func(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

var _ api.Transcriber = (*LocalTranscriber)(nil)

// NewLocalTranscriber resolves the binary and the model weights. Either one
// missing means nothing can be transcribed, so construction fails with a
// load error instead of failing file by file later.
func NewLocalTranscriber(cfg Config, model whisper.Model, logger *zap.Logger) (*LocalTranscriber, error) {
	binaryPath, err := exec.LookPath(cfg.Binary)
	if err != nil {
		return nil, &api.InferenceError{Engine: Name, Err: fmt.Errorf("whisper binary %q not found: %w", cfg.Binary, err)}
	}

	modelPath := filepath.Join(cfg.ModelDir, model.FileName)
	if _, err := os.Stat(modelPath); err != nil {
		return nil, &api.InferenceError{Engine: Name,
			Err: fmt.Errorf("model weights %q not found, run `a2t models --download %s`: %w", modelPath, model.ID, err)}
	}

	return &LocalTranscriber{
		binaryPath: binaryPath,
		modelPath:  modelPath,
		model:      model,
		device:     cfg.Device,
		threads:    cfg.Threads,
		logger:     logger,
		run:        runCommand,
	}, nil
}

// Transcript runs the binary against a normalized WAV file and returns the
// recognized text. The binary's own .txt output file is read and removed.
func (lt *LocalTranscriber) Transcript(ctx context.Context, audioPath string) (string, error) {
	outputBase := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	args := lt.args(audioPath, outputBase)

	lt.logger.Debug("running whisper.cpp",
		zap.String("binary", lt.binaryPath),
		zap.Strings("args", args))

	_, stderr, err := lt.run(ctx, lt.binaryPath, args...)
	if err != nil {
		return "", &api.InferenceError{Engine: Name, File: audioPath,
			Err: fmt.Errorf("%v: %s", err, lastLine(stderr))}
	}

	textPath := outputBase + ".txt"
	defer os.Remove(textPath)

	output, err := files.ReadOutputFile(textPath)
	if err != nil {
		return "", &api.InferenceError{Engine: Name, File: audioPath,
			Err: fmt.Errorf("transcript output missing: %w", err)}
	}

	return output, nil
}

func (lt *LocalTranscriber) args(audioPath string, outputBase string) []string {
	args := []string{
		"-m", lt.modelPath,
		"-f", audioPath,
		"-of", outputBase,
		"-otxt",
	}
	if lang := lt.model.Language(); lang != "" {
		args = append(args, "-l", lang)
	}
	if lt.device == "cpu" {
		args = append(args, "-ng")
	}
	if lt.threads > 0 {
		args = append(args, "-t", strconv.Itoa(lt.threads))
	}
	return args
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	command := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr
	err := command.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func lastLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
