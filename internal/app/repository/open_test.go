package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DEstebanP/transcript-AI/internal/app/model"
	"github.com/DEstebanP/transcript-AI/internal/config"
)

func historyRecord() model.TranscriptionRecord {
	return model.TranscriptionRecord{
		RunID:       "run-1",
		FileName:    "a.m4a",
		Fingerprint: "fp-a",
		Engine:      "whisper_cpp",
		Model:       "small",
		CreatedAt:   time.Now().UTC(),
	}
}

func TestOpenHistoryOff(t *testing.T) {
	t.Setenv(config.EnvHistoryMode, "off")

	dao, err := Open()
	require.NoError(t, err)
	assert.IsType(t, NopDAO{}, dao)

	// the nop sink accepts everything silently
	require.NoError(t, dao.RecordFile(historyRecord()))
	done, err := dao.CheckIfFileProcessed("fp")
	require.NoError(t, err)
	assert.False(t, done)
	require.NoError(t, dao.Close())
}

func TestOpenSQLiteAtConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	t.Setenv(config.EnvHistoryMode, "")
	t.Setenv(config.EnvHistoryDriver, "")
	t.Setenv(config.EnvHistoryDB, path)

	dao, err := Open()
	require.NoError(t, err)
	defer dao.Close()

	require.NoError(t, dao.RecordFile(historyRecord()))

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file should be created at the configured path")
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	t.Setenv(config.EnvHistoryMode, "")
	t.Setenv(config.EnvHistoryDriver, "postgres")
	t.Setenv(config.EnvHistoryDSN, "")

	_, err := Open()
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvHistoryDSN)
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Setenv(config.EnvHistoryMode, "")
	t.Setenv(config.EnvHistoryDriver, "oracle")

	_, err := Open()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown history driver")
}
