// Package testutil provides in-memory stand-ins for the pipeline
// collaborators so the batch loop can be tested without ffmpeg, whisper
// binaries or a database.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/DEstebanP/transcript-AI/internal/app/api"
	"github.com/DEstebanP/transcript-AI/internal/app/audio"
	"github.com/DEstebanP/transcript-AI/internal/app/model"
	"github.com/DEstebanP/transcript-AI/internal/app/repository"
)

// stem strips the directory and extension from a path, leaving the part
// tests key their maps by.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ConvertCall records one ToWAV invocation.
type ConvertCall struct {
	Input  string
	Output string
}

// FakeConverter implements audio.Converter by writing a small placeholder
// WAV. Files whose stem appears in FailFor fail with a ConversionError.
type FakeConverter struct {
	mu            sync.Mutex
	FailFor       map[string]string // stem -> stderr text
	DurationValue time.Duration
	DurationErr   error
	Calls         []ConvertCall
	Written       []string
}

var _ audio.Converter = (*FakeConverter)(nil)

func NewFakeConverter() *FakeConverter {
	return &FakeConverter{
		FailFor:       make(map[string]string),
		DurationValue: 3 * time.Second,
	}
}

func (c *FakeConverter) ToWAV(_ context.Context, inputPath, outputPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls = append(c.Calls, ConvertCall{Input: inputPath, Output: outputPath})

	if stderr, bad := c.FailFor[stem(inputPath)]; bad {
		return &audio.ConversionError{
			File:   inputPath,
			Stderr: stderr,
			Err:    errors.New("exit status 1"),
		}
	}

	if err := os.WriteFile(outputPath, []byte("RIFF fake wav"), 0o644); err != nil {
		return err
	}
	c.Written = append(c.Written, outputPath)
	return nil
}

func (c *FakeConverter) Duration(_ context.Context, _ string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.DurationValue, c.DurationErr
}

// FakeTranscriber implements api.Transcriber from canned responses.
// Unknown stems fall back to a deterministic placeholder.
type FakeTranscriber struct {
	mu        sync.Mutex
	Responses map[string]string // stem -> transcript
	FailFor   map[string]error  // stem -> error
	Calls     []string
}

var _ api.Transcriber = (*FakeTranscriber)(nil)

func NewFakeTranscriber() *FakeTranscriber {
	return &FakeTranscriber{
		Responses: make(map[string]string),
		FailFor:   make(map[string]error),
	}
}

func (t *FakeTranscriber) Transcript(_ context.Context, audioPath string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.Calls = append(t.Calls, audioPath)

	key := stem(audioPath)
	if err, bad := t.FailFor[key]; bad {
		return "", &api.InferenceError{Engine: "fake", File: audioPath, Err: err}
	}
	if text, ok := t.Responses[key]; ok {
		return text, nil
	}
	return fmt.Sprintf("transcript of %s", key), nil
}

// MemoryDAO implements repository.TranscriptionDAO in memory.
type MemoryDAO struct {
	mu        sync.Mutex
	Records   []model.TranscriptionRecord
	Processed map[string]bool // fingerprint -> already done
	RecordErr error
	CheckErr  error
	Closed    bool
}

var _ repository.TranscriptionDAO = (*MemoryDAO)(nil)

func NewMemoryDAO() *MemoryDAO {
	return &MemoryDAO{Processed: make(map[string]bool)}
}

func (d *MemoryDAO) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return nil
}

func (d *MemoryDAO) RecordFile(record model.TranscriptionRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.RecordErr != nil {
		return d.RecordErr
	}
	d.Records = append(d.Records, record)
	if !record.HasError {
		d.Processed[record.Fingerprint] = true
	}
	return nil
}

func (d *MemoryDAO) CheckIfFileProcessed(fingerprint string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.CheckErr != nil {
		return false, d.CheckErr
	}
	return d.Processed[fingerprint], nil
}

func (d *MemoryDAO) History(limit int) ([]model.TranscriptionRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	records := make([]model.TranscriptionRecord, len(d.Records))
	copy(records, d.Records)
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}
