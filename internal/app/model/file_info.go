package model

import "time"

// FileInfo describes one discovered input audio file.
type FileInfo struct {
	FullPath string
	Name     string
	Size     int64
	ModTime  time.Time
}
