package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DEstebanP/transcript-AI/internal/app/api"
	"github.com/DEstebanP/transcript-AI/internal/app/audio"
	"github.com/DEstebanP/transcript-AI/internal/app/repository"
	"github.com/DEstebanP/transcript-AI/internal/app/testutil"
)

func writeAudio(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestBatch(conv audio.Converter, trans api.Transcriber, dao repository.TranscriptionDAO) *Batch {
	return New(Config{
		Converter:   conv,
		Transcriber: trans,
		History:     dao,
		Engine:      "whisper_cpp",
		Model:       "small",
		Logger:      zap.NewNop(),
	})
}

func TestRunTranscribesAllFiles(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "transcripts")
	writeAudio(t, inputDir, "c.m4a", "audio c")
	writeAudio(t, inputDir, "a.m4a", "audio a")
	writeAudio(t, inputDir, "b.m4a", "audio b")

	conv := testutil.NewFakeConverter()
	trans := testutil.NewFakeTranscriber()
	dao := testutil.NewMemoryDAO()
	b := newTestBatch(conv, trans, dao)

	summary, err := b.Run(context.Background(), Request{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Extension: ".m4a",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)
	_, err = uuid.Parse(summary.RunID)
	assert.NoError(t, err)

	for _, name := range []string{"a", "b", "c"} {
		content, err := os.ReadFile(filepath.Join(outputDir, name+".txt"))
		require.NoError(t, err)
		assert.Equal(t, "transcript of "+name, string(content))
	}

	require.Len(t, dao.Records, 3)
	for _, record := range dao.Records {
		assert.Equal(t, summary.RunID, record.RunID)
		assert.Equal(t, "whisper_cpp", record.Engine)
		assert.Equal(t, "small", record.Model)
		assert.NotEmpty(t, record.Fingerprint)
		assert.False(t, record.HasError)
		assert.NotEmpty(t, record.Transcript)
		assert.InDelta(t, 3.0, record.AudioDuration, 0.001)
	}
}

func TestRunProcessesFilesInLexicographicOrder(t *testing.T) {
	inputDir := t.TempDir()
	for _, name := range []string{"z.m4a", "x.m4a", "w.m4a", "y.m4a"} {
		writeAudio(t, inputDir, name, "audio "+name)
	}

	conv := testutil.NewFakeConverter()
	b := newTestBatch(conv, testutil.NewFakeTranscriber(), testutil.NewMemoryDAO())

	_, err := b.Run(context.Background(), Request{
		InputDir:  inputDir,
		OutputDir: t.TempDir(),
		Extension: ".m4a",
	})
	require.NoError(t, err)

	var order []string
	for _, call := range conv.Calls {
		order = append(order, filepath.Base(call.Input))
	}
	assert.Equal(t, []string{"w.m4a", "x.m4a", "y.m4a", "z.m4a"}, order)
}

func TestRunIsolatesConversionFailure(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeAudio(t, inputDir, "a.m4a", "audio a")
	writeAudio(t, inputDir, "b.m4a", "audio b")
	writeAudio(t, inputDir, "c.m4a", "audio c")

	conv := testutil.NewFakeConverter()
	conv.FailFor["b"] = "Invalid data found when processing input"
	dao := testutil.NewMemoryDAO()
	b := newTestBatch(conv, testutil.NewFakeTranscriber(), dao)

	summary, err := b.Run(context.Background(), Request{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Extension: ".m4a",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "b.m4a", summary.Failures[0].File)
	assert.Contains(t, summary.Failures[0].Reason, "Invalid data found")
	assert.Equal(t, []string{"b.m4a"}, summary.FailedFiles())

	assert.FileExists(t, filepath.Join(outputDir, "a.txt"))
	assert.FileExists(t, filepath.Join(outputDir, "c.txt"))
	assert.NoFileExists(t, filepath.Join(outputDir, "b.txt"))

	require.Len(t, dao.Records, 3)
	var failed int
	for _, record := range dao.Records {
		if record.HasError {
			failed++
			assert.Equal(t, "b.m4a", record.FileName)
			assert.Contains(t, record.ErrorMessage, "Invalid data found")
		}
	}
	assert.Equal(t, 1, failed)
}

func TestRunIsolatesTranscriberFailure(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeAudio(t, inputDir, "a.m4a", "audio a")
	writeAudio(t, inputDir, "b.m4a", "audio b")

	trans := testutil.NewFakeTranscriber()
	trans.FailFor["b"] = errors.New("model exploded")
	b := newTestBatch(testutil.NewFakeConverter(), trans, testutil.NewMemoryDAO())

	summary, err := b.Run(context.Background(), Request{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Extension: ".m4a",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "b.m4a", summary.Failures[0].File)
	assert.Contains(t, summary.Failures[0].Reason, "transcription failed")
	assert.NoFileExists(t, filepath.Join(outputDir, "b.txt"))
}

func TestRunRemovesIntermediateWAVs(t *testing.T) {
	inputDir := t.TempDir()
	writeAudio(t, inputDir, "a.m4a", "audio a")
	writeAudio(t, inputDir, "b.m4a", "audio b")

	conv := testutil.NewFakeConverter()
	trans := testutil.NewFakeTranscriber()
	trans.FailFor["b"] = errors.New("model exploded")
	b := newTestBatch(conv, trans, testutil.NewMemoryDAO())

	_, err := b.Run(context.Background(), Request{
		InputDir:  inputDir,
		OutputDir: t.TempDir(),
		Extension: ".m4a",
	})
	require.NoError(t, err)

	require.NotEmpty(t, conv.Written)
	for _, wav := range conv.Written {
		_, statErr := os.Stat(wav)
		assert.True(t, os.IsNotExist(statErr), "intermediate %s should be gone", wav)
	}
	_, statErr := os.Stat(filepath.Dir(conv.Written[0]))
	assert.True(t, os.IsNotExist(statErr), "scratch dir should be gone")
}

func TestRunEmptyDirectory(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "out")
	b := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), testutil.NewMemoryDAO())

	summary, err := b.Run(context.Background(), Request{
		InputDir:  t.TempDir(),
		OutputDir: outputDir,
		Extension: ".m4a",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Total)
	assert.Contains(t, summary.String(), "0 succeeded")
	assert.DirExists(t, outputDir)
}

func TestRunRejectsMissingInputDir(t *testing.T) {
	b := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), testutil.NewMemoryDAO())

	summary, err := b.Run(context.Background(), Request{
		InputDir:  filepath.Join(t.TempDir(), "no-such-dir"),
		OutputDir: t.TempDir(),
		Extension: ".m4a",
	})
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Contains(t, err.Error(), "not accessible")
}

func TestRunRejectsFileAsInputDir(t *testing.T) {
	dir := t.TempDir()
	notADir := writeAudio(t, dir, "a.m4a", "audio a")
	b := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), testutil.NewMemoryDAO())

	_, err := b.Run(context.Background(), Request{
		InputDir:  notADir,
		OutputDir: t.TempDir(),
		Extension: ".m4a",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestRunCreatesNestedOutputDir(t *testing.T) {
	inputDir := t.TempDir()
	writeAudio(t, inputDir, "a.m4a", "audio a")
	outputDir := filepath.Join(t.TempDir(), "deep", "nested", "transcripts")

	b := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), testutil.NewMemoryDAO())

	summary, err := b.Run(context.Background(), Request{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Extension: ".m4a",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.FileExists(t, filepath.Join(outputDir, "a.txt"))
}

func TestRunOverwritesExistingTranscript(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeAudio(t, inputDir, "a.m4a", "audio a")
	require.NoError(t, os.WriteFile(filepath.Join(outputDir, "a.txt"), []byte("stale result"), 0o644))

	b := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), testutil.NewMemoryDAO())

	_, err := b.Run(context.Background(), Request{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Extension: ".m4a",
	})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(outputDir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "transcript of a", string(content))
}

func TestRunReportsTranscriptWriteFailure(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeAudio(t, inputDir, "a.m4a", "audio a")
	// a directory squatting on the output path makes the write fail
	require.NoError(t, os.Mkdir(filepath.Join(outputDir, "a.txt"), 0o755))

	dao := testutil.NewMemoryDAO()
	b := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), dao)

	summary, err := b.Run(context.Background(), Request{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Extension: ".m4a",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Contains(t, summary.Failures[0].Reason, `cannot write transcript for "a.m4a"`)

	require.Len(t, dao.Records, 1)
	assert.True(t, dao.Records[0].HasError)
}

func TestRunSkipsProcessedFiles(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeAudio(t, inputDir, "a.m4a", "audio a")
	writeAudio(t, inputDir, "b.m4a", "audio b")

	dao := testutil.NewMemoryDAO()
	req := Request{
		InputDir:      inputDir,
		OutputDir:     outputDir,
		Extension:     ".m4a",
		SkipProcessed: true,
	}

	first := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), dao)
	summary, err := first.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)

	conv := testutil.NewFakeConverter()
	second := newTestBatch(conv, testutil.NewFakeTranscriber(), dao)
	summary, err = second.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Empty(t, conv.Calls)
}

func TestRunReprocessesChangedFile(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeAudio(t, inputDir, "a.m4a", "audio a")
	writeAudio(t, inputDir, "b.m4a", "audio b")

	dao := testutil.NewMemoryDAO()
	req := Request{
		InputDir:      inputDir,
		OutputDir:     outputDir,
		Extension:     ".m4a",
		SkipProcessed: true,
	}

	first := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), dao)
	_, err := first.Run(context.Background(), req)
	require.NoError(t, err)

	// new content means a new fingerprint, so b is no longer known
	writeAudio(t, inputDir, "b.m4a", "audio b take two")

	second := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), dao)
	summary, err := second.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Succeeded)
}

func TestRunWithoutSkipReprocessesEverything(t *testing.T) {
	inputDir := t.TempDir()
	writeAudio(t, inputDir, "a.m4a", "audio a")

	dao := testutil.NewMemoryDAO()
	req := Request{InputDir: inputDir, OutputDir: t.TempDir(), Extension: ".m4a"}

	first := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), dao)
	_, err := first.Run(context.Background(), req)
	require.NoError(t, err)

	second := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), dao)
	summary, err := second.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, summary.Skipped)
	assert.Len(t, dao.Records, 2)
}

func TestRunProcessesWhenHistoryLookupFails(t *testing.T) {
	inputDir := t.TempDir()
	writeAudio(t, inputDir, "a.m4a", "audio a")

	dao := testutil.NewMemoryDAO()
	dao.CheckErr = errors.New("database is locked")
	b := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), dao)

	summary, err := b.Run(context.Background(), Request{
		InputDir:      inputDir,
		OutputDir:     t.TempDir(),
		Extension:     ".m4a",
		SkipProcessed: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, summary.Skipped)
}

func TestRunSurvivesHistoryWriteFailure(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeAudio(t, inputDir, "a.m4a", "audio a")

	dao := testutil.NewMemoryDAO()
	dao.RecordErr = errors.New("disk full")
	b := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), dao)

	summary, err := b.Run(context.Background(), Request{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Extension: ".m4a",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.FileExists(t, filepath.Join(outputDir, "a.txt"))
}

func TestRunTwiceProducesIdenticalOutputs(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeAudio(t, inputDir, "a.m4a", "audio a")
	writeAudio(t, inputDir, "b.m4a", "audio b")

	req := Request{InputDir: inputDir, OutputDir: outputDir, Extension: ".m4a"}

	run := func() map[string][]byte {
		b := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), testutil.NewMemoryDAO())
		_, err := b.Run(context.Background(), req)
		require.NoError(t, err)

		outputs := make(map[string][]byte)
		for _, name := range []string{"a.txt", "b.txt"} {
			content, err := os.ReadFile(filepath.Join(outputDir, name))
			require.NoError(t, err)
			outputs[name] = content
		}
		return outputs
	}

	assert.Equal(t, run(), run())
}

func TestRunAbortsOnCanceledContext(t *testing.T) {
	inputDir := t.TempDir()
	writeAudio(t, inputDir, "a.m4a", "audio a")

	b := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), testutil.NewMemoryDAO())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Run(ctx, Request{
		InputDir:  inputDir,
		OutputDir: t.TempDir(),
		Extension: ".m4a",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run aborted")
}

func TestRunPassesWAVToTranscriber(t *testing.T) {
	inputDir := t.TempDir()
	writeAudio(t, inputDir, "recording.m4a", "audio")

	trans := testutil.NewFakeTranscriber()
	b := newTestBatch(testutil.NewFakeConverter(), trans, testutil.NewMemoryDAO())

	_, err := b.Run(context.Background(), Request{
		InputDir:  inputDir,
		OutputDir: t.TempDir(),
		Extension: ".m4a",
	})
	require.NoError(t, err)

	require.Len(t, trans.Calls, 1)
	assert.Equal(t, "recording.wav", filepath.Base(trans.Calls[0]))
}

func TestRunWithMockTranscriber(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	writeAudio(t, inputDir, "a.m4a", "audio a")
	writeAudio(t, inputDir, "b.m4a", "audio b")

	trans := new(testutil.MockTranscriber)
	trans.On("Transcript", mock.Anything, mock.Anything).Return("from mock", nil).Times(2)

	b := newTestBatch(testutil.NewFakeConverter(), trans, testutil.NewMemoryDAO())

	summary, err := b.Run(context.Background(), Request{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Extension: ".m4a",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)

	content, err := os.ReadFile(filepath.Join(outputDir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "from mock", string(content))
	trans.AssertExpectations(t)
}

func TestBatchCloseClosesHistory(t *testing.T) {
	dao := testutil.NewMemoryDAO()
	b := newTestBatch(testutil.NewFakeConverter(), testutil.NewFakeTranscriber(), dao)

	require.NoError(t, b.Close())
	assert.True(t, dao.Closed)
}

func TestSummaryString(t *testing.T) {
	summary := &Summary{
		RunID:     "run-1",
		Total:     4,
		Succeeded: 2,
		Failed:    1,
		Skipped:   1,
		Elapsed:   1500 * time.Millisecond,
		Failures:  []Failure{{File: "b.m4a", Reason: "boom"}},
	}

	out := summary.String()
	assert.Contains(t, out, "2 succeeded, 1 failed, 1 skipped (4 total, 1.5s)")
	assert.Contains(t, out, "failed files:")
	assert.Contains(t, out, "  - b.m4a: boom")
}

func TestSummaryStringWithoutFailures(t *testing.T) {
	summary := &Summary{Total: 2, Succeeded: 2, Elapsed: time.Second}

	out := summary.String()
	assert.Contains(t, out, "2 succeeded, 0 failed, 0 skipped")
	assert.NotContains(t, out, "failed files")
}
