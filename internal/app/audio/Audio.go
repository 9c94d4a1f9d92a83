package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Converter normalizes input audio into the form the transcription engines
// expect. Implementations must be safe to reuse across a whole batch.
type Converter interface {
	// ToWAV re-encodes inputPath into a 16 kHz mono signed 16-bit PCM WAV at
	// outputPath, overwriting whatever is there. It writes nothing else.
	ToWAV(ctx context.Context, inputPath string, outputPath string) error
	// Duration reports the playable length of an audio file.
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// ConversionError reports an input file that could not be decoded or
// re-encoded. The batch treats it as a per-file failure, not a fatal one.
type ConversionError struct {
	File   string
	Stderr string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("cannot convert %q: %v: %s", e.File, e.Err, e.Stderr)
	}
	return fmt.Sprintf("cannot convert %q: %v", e.File, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// runner abstracts subprocess execution so argument construction and error
// mapping stay testable without a local ffmpeg install.
type runner interface {
	run(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

type execRunner struct{}

func (execRunner) run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// FFmpeg is the production Converter backed by the ffmpeg and ffprobe
// binaries found on PATH.
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	runner      runner
}

// NewFFmpeg returns a Converter that shells out to ffmpeg and ffprobe.
func NewFFmpeg() *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  "ffmpeg",
		ffprobePath: "ffprobe",
		runner:      execRunner{},
	}
}

var _ Converter = (*FFmpeg)(nil)

func (f *FFmpeg) ToWAV(ctx context.Context, inputPath string, outputPath string) error {
	_, stderr, err := f.runner.run(ctx, f.ffmpegPath, wavArgs(inputPath, outputPath)...)
	if err != nil {
		return &ConversionError{File: inputPath, Stderr: lastLine(stderr), Err: err}
	}
	return nil
}

// wavArgs builds the ffmpeg invocation for 16 kHz mono pcm_s16le output.
// -nostdin keeps ffmpeg from eating the terminal, -y overwrites leftovers
// from an interrupted run, -vn drops any cover-art video stream.
func wavArgs(inputPath string, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		outputPath,
	}
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (f *FFmpeg) Duration(ctx context.Context, path string) (time.Duration, error) {
	stdout, stderr, err := f.runner.run(ctx, f.ffprobePath,
		"-v", "error", "-print_format", "json", "-show_format", path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %q: %v: %s", path, err, lastLine(stderr))
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(stdout, &probe); err != nil {
		return 0, fmt.Errorf("cannot parse ffprobe output for %q: %w", path, err)
	}

	seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse ffprobe duration %q: %w", probe.Format.Duration, err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// lastLine extracts the tail of subprocess stderr, which is where ffmpeg
// puts the actual reason for a failure.
func lastLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
