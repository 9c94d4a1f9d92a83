package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DEstebanP/transcript-AI/internal/app/repository/pg"
	"github.com/DEstebanP/transcript-AI/internal/app/repository/sqlite"
	"github.com/DEstebanP/transcript-AI/internal/config"
)

// Open selects the history backend from the environment: sqlite in the user
// cache dir by default, postgres when A2T_HISTORY_DRIVER=postgres, and a
// no-op sink when A2T_HISTORY=off.
func Open() (TranscriptionDAO, error) {
	if strings.EqualFold(os.Getenv(config.EnvHistoryMode), "off") {
		return NopDAO{}, nil
	}

	switch driver := os.Getenv(config.EnvHistoryDriver); driver {
	case "", "sqlite":
		path := os.Getenv(config.EnvHistoryDB)
		if path == "" {
			cacheDir, err := os.UserCacheDir()
			if err != nil {
				return nil, fmt.Errorf("cannot resolve history database location: %w", err)
			}
			path = filepath.Join(cacheDir, "a2t", "history.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("cannot create history directory: %w", err)
		}
		return sqlite.NewSQLiteDB(path)
	case "postgres":
		dsn := os.Getenv(config.EnvHistoryDSN)
		if dsn == "" {
			return nil, fmt.Errorf("%s must be set when %s=postgres", config.EnvHistoryDSN, config.EnvHistoryDriver)
		}
		return pg.NewPostgresDB(dsn)
	default:
		return nil, fmt.Errorf("unknown history driver %q", driver)
	}
}
