package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/DEstebanP/transcript-AI/internal/app/model"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	file_name TEXT NOT NULL,
	input_path TEXT NOT NULL,
	output_path TEXT NOT NULL,
	engine TEXT NOT NULL,
	model TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	audio_duration REAL NOT NULL,
	transcription TEXT NOT NULL,
	has_error INTEGER NOT NULL,
	error_message TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_fingerprint ON transcriptions(fingerprint);
`

type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (creating if needed) the history database at dbFilePath
// and makes sure the schema exists.
func NewSQLiteDB(dbFilePath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc", dbFilePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteDB{db: db}, nil
}

// NewWithDB wraps an already opened connection. Used by tests.
func NewWithDB(db *sql.DB) *SQLiteDB {
	return &SQLiteDB{db: db}
}

func (sdb *SQLiteDB) Close() error {
	return sdb.db.Close()
}

func (sdb *SQLiteDB) CheckIfFileProcessed(fingerprint string) (bool, error) {
	query := `SELECT COUNT(1) FROM transcriptions WHERE fingerprint = ? AND has_error = 0`
	row := sdb.db.QueryRow(query, fingerprint)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("history lookup failed: %w", err)
	}
	return count > 0, nil
}

func (sdb *SQLiteDB) RecordFile(record model.TranscriptionRecord) error {
	insertSQL := `INSERT INTO transcriptions (run_id, file_name, input_path, output_path, engine, model, fingerprint, audio_duration, transcription, has_error, error_message, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`
	hasError := 0
	if record.HasError {
		hasError = 1
	}
	_, err := sdb.db.Exec(insertSQL,
		record.RunID, record.FileName, record.InputPath, record.OutputPath,
		record.Engine, record.Model, record.Fingerprint, record.AudioDuration,
		record.Transcript, hasError, record.ErrorMessage, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert history row: %w", err)
	}
	return nil
}

func (sdb *SQLiteDB) History(limit int) ([]model.TranscriptionRecord, error) {
	query := `
		SELECT id, run_id, file_name, input_path, output_path, engine, model, fingerprint, audio_duration, transcription, has_error, error_message, created_at
		FROM transcriptions
		ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := sdb.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	records := make([]model.TranscriptionRecord, 0)
	for rows.Next() {
		var record model.TranscriptionRecord
		var hasError int
		err = rows.Scan(&record.ID, &record.RunID, &record.FileName, &record.InputPath,
			&record.OutputPath, &record.Engine, &record.Model, &record.Fingerprint,
			&record.AudioDuration, &record.Transcript, &hasError, &record.ErrorMessage,
			&record.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db scan failed: %w", err)
		}
		record.HasError = hasError != 0
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}
	return records, nil
}
