package repository

import (
	"github.com/DEstebanP/transcript-AI/internal/app/model"
)

// TranscriptionDAO persists per-file outcomes of batch runs. History is
// bookkeeping: implementations report errors and must never panic or exit,
// a failed write may not break a running batch.
type TranscriptionDAO interface {
	Close() error

	// RecordFile appends one processed-file row, failed files included.
	RecordFile(record model.TranscriptionRecord) error

	// CheckIfFileProcessed reports whether a file with this content
	// fingerprint already has a successful transcription on record.
	CheckIfFileProcessed(fingerprint string) (bool, error)

	// History returns the most recent records, newest first.
	// limit <= 0 returns everything.
	History(limit int) ([]model.TranscriptionRecord, error)
}
