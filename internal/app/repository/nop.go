package repository

import (
	"github.com/DEstebanP/transcript-AI/internal/app/model"
)

// NopDAO discards all history writes. Used when history is switched off.
type NopDAO struct{}

var _ TranscriptionDAO = NopDAO{}

func (NopDAO) Close() error { return nil }

func (NopDAO) RecordFile(model.TranscriptionRecord) error { return nil }

func (NopDAO) CheckIfFileProcessed(string) (bool, error) { return false, nil }

func (NopDAO) History(int) ([]model.TranscriptionRecord, error) { return nil, nil }
