package model

import "time"

// TranscriptionRecord is one per-file outcome row in the run history ledger.
// A row is written for every processed file, failed ones included, so that
// exports and skip lookups see the full picture of past runs.
type TranscriptionRecord struct {
	ID            int
	RunID         string
	FileName      string
	InputPath     string
	OutputPath    string
	Engine        string
	Model         string
	Fingerprint   string
	AudioDuration float64 // seconds
	Transcript    string
	HasError      bool
	ErrorMessage  string
	CreatedAt     time.Time
}
