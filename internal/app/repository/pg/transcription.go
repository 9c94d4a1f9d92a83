package pg

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/DEstebanP/transcript-AI/internal/app/model"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS transcriptions (
	id SERIAL PRIMARY KEY,
	run_id TEXT NOT NULL,
	file_name TEXT NOT NULL,
	input_path TEXT NOT NULL,
	output_path TEXT NOT NULL,
	engine TEXT NOT NULL,
	model TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	audio_duration DOUBLE PRECISION NOT NULL,
	transcription TEXT NOT NULL,
	has_error INTEGER NOT NULL,
	error_message TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_fingerprint ON transcriptions(fingerprint);
`

type PostgresDB struct {
	db *sql.DB
}

// NewPostgresDB connects with a lib/pq connection string and makes sure the
// schema exists.
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &PostgresDB{db: db}, nil
}

// NewWithDB wraps an already opened connection. Used by tests.
func NewWithDB(db *sql.DB) *PostgresDB {
	return &PostgresDB{db: db}
}

func (pdb *PostgresDB) Close() error {
	return pdb.db.Close()
}

func (pdb *PostgresDB) CheckIfFileProcessed(fingerprint string) (bool, error) {
	query := `SELECT COUNT(1) FROM transcriptions WHERE fingerprint = $1 AND has_error = 0`
	row := pdb.db.QueryRow(query, fingerprint)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("history lookup failed: %w", err)
	}
	return count > 0, nil
}

func (pdb *PostgresDB) RecordFile(record model.TranscriptionRecord) error {
	insertSQL := `INSERT INTO transcriptions (run_id, file_name, input_path, output_path, engine, model, fingerprint, audio_duration, transcription, has_error, error_message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`
	hasError := 0
	if record.HasError {
		hasError = 1
	}
	_, err := pdb.db.Exec(insertSQL,
		record.RunID, record.FileName, record.InputPath, record.OutputPath,
		record.Engine, record.Model, record.Fingerprint, record.AudioDuration,
		record.Transcript, hasError, record.ErrorMessage, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert history row: %w", err)
	}
	return nil
}

func (pdb *PostgresDB) History(limit int) ([]model.TranscriptionRecord, error) {
	query := `
		SELECT id, run_id, file_name, input_path, output_path, engine, model, fingerprint, audio_duration, transcription, has_error, error_message, created_at
		FROM transcriptions
		ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := pdb.db.Query(query, args...)
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
