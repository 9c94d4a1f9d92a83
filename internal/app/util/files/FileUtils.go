package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DEstebanP/transcript-AI/internal/app/model"
)

// ListAudioFiles returns every regular file in inputDir whose extension
// matches ext (case-insensitive), sorted lexicographically by name so runs
// over the same directory always process files in the same order.
func ListAudioFiles(inputDir string, ext string) ([]model.FileInfo, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	want := NormalizeExt(ext)
	var fileInfos []model.FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) != want {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		fileInfos = append(fileInfos, model.FileInfo{
			FullPath: filepath.Join(inputDir, entry.Name()),
			Name:     entry.Name(),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}

	sort.Slice(fileInfos, func(i, j int) bool {
		return fileInfos[i].Name < fileInfos[j].Name
	})

	return fileInfos, nil
}

// NormalizeExt lowercases an extension and ensures the leading dot, so
// "m4a", ".m4a" and ".M4A" all mean the same thing.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ext
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// BaseName strips the extension from a file name.
func BaseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// WriteTranscript writes text to path, replacing any previous content.
func WriteTranscript(path string, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return err
	}
	return nil
}

// ReadOutputFile reads the specified output file and returns its text content.
func ReadOutputFile(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(content)), nil
}
