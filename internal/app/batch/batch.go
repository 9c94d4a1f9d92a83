package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/DEstebanP/transcript-AI/internal/app/api"
	"github.com/DEstebanP/transcript-AI/internal/app/audio"
	"github.com/DEstebanP/transcript-AI/internal/app/model"
	"github.com/DEstebanP/transcript-AI/internal/app/repository"
	"github.com/DEstebanP/transcript-AI/internal/app/util/files"
	"github.com/DEstebanP/transcript-AI/internal/app/utils"
)

// WriteError reports a transcript that could not be persisted to the output
// directory. Like conversion and inference errors it only fails its file.
type WriteError struct {
	File string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write transcript for %q: %v", e.File, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Request describes one batch run over a directory.
type Request struct {
	InputDir      string
	OutputDir     string
	Extension     string // audio extension to pick up, e.g. ".m4a"
	SkipProcessed bool   // consult run history and skip known-good files
}

// Failure pairs a failed input file with the reason it failed.
type Failure struct {
	File   string
	Reason string
}

// Summary reports the outcome of one run.
type Summary struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Failures  []Failure
	Elapsed   time.Duration
}

// FailedFiles returns the names of all failed inputs, in processing order.
func (s *Summary) FailedFiles() []string {
	return lo.Map(s.Failures, func(f Failure, _ int) string { return f.File })
}

func (s *Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "done: %d succeeded, %d failed, %d skipped (%d total, %s)",
		s.Succeeded, s.Failed, s.Skipped, s.Total, s.Elapsed.Round(time.Millisecond))
	if len(s.Failures) > 0 {
		sb.WriteString("\nfailed files:")
		for _, f := range s.Failures {
			fmt.Fprintf(&sb, "\n  - %s: %s", f.File, f.Reason)
		}
	}
	return sb.String()
}

// Config carries the run-wide collaborators and labels.
type Config struct {
	Converter   audio.Converter
	Transcriber api.Transcriber
	History     repository.TranscriptionDAO
	Engine      string
	Model       string
	Logger      *zap.Logger
	Progress    ProgressConfig
}

// Batch drives the convert, transcribe, persist pipeline over one directory,
// one file at a time.
type Batch struct {
	converter   audio.Converter
	transcriber api.Transcriber
	db          repository.TranscriptionDAO
	engine      string
	model       string
	logger      *zap.Logger
	progress    *ProgressManager
}

func New(cfg Config) *Batch {
	return &Batch{
		converter:   cfg.Converter,
		transcriber: cfg.Transcriber,
		db:          cfg.History,
		engine:      cfg.Engine,
		model:       cfg.Model,
		logger:      cfg.Logger,
		progress:    NewProgressManager(cfg.Progress),
	}
}

func (b *Batch) Close() error {
	b.progress.Shutdown()
	return b.db.Close()
}

type fileResult struct {
	skipped bool
	err     error
}

// Run processes every matching file in the input directory in lexicographic
// order. Setup problems (bad input dir, unwritable output dir) abort with an
// error; a failing file is recorded in the summary and the loop keeps going.
func (b *Batch) Run(ctx context.Context, req Request) (*Summary, error) {
	started := time.Now()

	info, err := os.Stat(req.InputDir)
	if err != nil {
		return nil, fmt.Errorf("input directory %q is not accessible: %w", req.InputDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %q is not a directory", req.InputDir)
	}

	if err := files.EnsureDir(req.OutputDir); err != nil {
		return nil, err
	}

	fileInfos, err := files.ListAudioFiles(req.InputDir, req.Extension)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID: uuid.NewString(),
		Total: len(fileInfos),
	}

	b.logger.Info("starting batch run",
		zap.String("run_id", summary.RunID),
		zap.String("input_dir", req.InputDir),
		zap.String("output_dir", req.OutputDir),
		zap.String("engine", b.engine),
		zap.String("model", b.model),
		zap.Int("files", len(fileInfos)))

	// one scratch dir per run holds every intermediate WAV
	tempDir, err := os.MkdirTemp("", "a2t-*")
	if err != nil {
		return nil, fmt.Errorf("cannot create temporary workspace: %w", err)
	}
	defer os.RemoveAll(tempDir)

	progressBar := b.progress.CreateBar(len(fileInfos), "Transcribing")
	defer b.progress.Wait()

	var runErr error
	for _, file := range fileInfos {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("run aborted: %w", err)
			break
		}

		result := b.processFile(ctx, summary.RunID, file, req, tempDir)
		switch {
		case result.skipped:
			summary.Skipped++
			b.logger.Info("already transcribed, skipping", zap.String("file", file.Name))
		case result.err != nil:
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{File: file.Name, Reason: result.err.Error()})
			b.logger.Warn("file failed", zap.String("file", file.Name), zap.Error(result.err))
		default:
			summary.Succeeded++
		}
		progressBar.Increment()
	}
	progressBar.Complete()

	if runErr != nil {
		return nil, runErr
	}

	summary.Elapsed = time.Since(started)
	return summary, nil
}

// processFile takes one input through the whole pipeline. Every exit path
// removes the intermediate WAV and leaves a history record.
func (b *Batch) processFile(ctx context.Context, runID string, file model.FileInfo, req Request, tempDir string) fileResult {
	started := time.Now()
	b.logger.Info("processing", zap.String("file", file.Name))

	record := model.TranscriptionRecord{
		RunID:      runID,
		FileName:   file.Name,
		InputPath:  file.FullPath,
		OutputPath: filepath.Join(req.OutputDir, files.BaseName(file.Name)+".txt"),
		Engine:     b.engine,
		Model:      b.model,
	}

	fingerprint, err := utils.CalculateFileFingerprint(file.FullPath)
	if err != nil {
		err = fmt.Errorf("cannot read %q: %w", file.Name, err)
		b.record(record, err)
		return fileResult{err: err}
	}
	record.Fingerprint = fingerprint

	if req.SkipProcessed {
		done, err := b.db.CheckIfFileProcessed(fingerprint)
		if err != nil {
			b.logger.Warn("history lookup failed, processing anyway",
				zap.String("file", file.Name), zap.Error(err))
		} else if done {
			return fileResult{skipped: true}
		}
	}

	wavPath := filepath.Join(tempDir, files.BaseName(file.Name)+".wav")
	defer func() {
		if err := os.Remove(wavPath); err != nil && !os.IsNotExist(err) {
			b.logger.Warn("temp file not removed", zap.String("path", wavPath), zap.Error(err))
		}
	}()

	if err := b.converter.ToWAV(ctx, file.FullPath, wavPath); err != nil {
		b.record(record, err)
		return fileResult{err: err}
	}

	if duration, err := b.converter.Duration(ctx, wavPath); err != nil {
		// bookkeeping only, the transcript does not depend on it
		b.logger.Debug("duration probe failed", zap.String("file", file.Name), zap.Error(err))
	} else {
		record.AudioDuration = duration.Seconds()
	}

	transcript, err := b.transcriber.Transcript(ctx, wavPath)
	if err != nil {
		b.record(record, err)
		return fileResult{err: err}
	}

	if err := files.WriteTranscript(record.OutputPath, transcript); err != nil {
		writeErr := &WriteError{File: file.Name, Err: err}
		b.record(record, writeErr)
		return fileResult{err: writeErr}
	}

	record.Transcript = transcript
	b.record(record, nil)

	b.logger.Info("transcribed",
		zap.String("file", file.Name),
		zap.String("output", record.OutputPath),
		zap.Duration("elapsed", time.Since(started).Round(time.Millisecond)))
	return fileResult{}
}

// record persists one history row. History failures are logged, never
// propagated: bookkeeping must not break a batch.
func (b *Batch) record(record model.TranscriptionRecord, cause error) {
	if cause != nil {
		record.HasError = true
		record.ErrorMessage = cause.Error()
	}
	record.CreatedAt = time.Now()
	if err := b.db.RecordFile(record); err != nil {
		b.logger.Warn("history write failed", zap.String("file", record.FileName), zap.Error(err))
	}
}
