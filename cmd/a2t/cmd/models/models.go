package models

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DEstebanP/transcript-AI/internal/app/config"
	"github.com/DEstebanP/transcript-AI/internal/app/util/files"
	"github.com/DEstebanP/transcript-AI/internal/app/whisper"
)

var (
	download   string
	configPath string
)

func init() {
	Cmd.Flags().StringVar(&download, "download", "", "download the given model into the model directory")
	Cmd.Flags().StringVar(&configPath, "config", "", "config file path")
}

// Cmd represents the models command
var Cmd = &cobra.Command{
	Use:   "models",
	Short: "List the known whisper models",
	Long: `List the known whisper models.

Models already present in the model directory are marked with *.
Use --download <id> to fetch one from huggingface.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(configPath)
		if err != nil {
			return err
		}

		if download != "" {
			return downloadModel(cmd.OutOrStdout(), settings.WhisperCpp.ModelDir, download)
		}
		return list(cmd.OutOrStdout(), settings.WhisperCpp.ModelDir)
	},
}

func list(w io.Writer, modelDir string) error {
	for _, m := range whisper.Catalog() {
		marker := " "
		if _, err := os.Stat(filepath.Join(modelDir, m.FileName)); err == nil {
			marker = "*"
		}
		language := "multilingual"
		if m.EnglishOnly {
			language = "english-only"
		}
		fmt.Fprintf(w, "%s %-10s %8s  %s\n", marker, m.ID, m.SizeLabel, language)
	}
	fmt.Fprintf(w, "\nmodel directory: %s\n", modelDir)
	return nil
}

func downloadModel(w io.Writer, modelDir, id string) error {
	m, err := whisper.Lookup(id)
	if err != nil {
		return err
	}

	if err := files.EnsureDir(modelDir); err != nil {
		return err
	}

	dest := filepath.Join(modelDir, m.FileName)
	if _, err := os.Stat(dest); err == nil {
		fmt.Fprintf(w, "model %s already present at %s\n", m.ID, dest)
		return nil
	}

	fmt.Fprintf(w, "downloading %s (%s) from %s\n", m.ID, m.SizeLabel, m.DownloadURL())
	if err := fetchToFile(dest, m.DownloadURL()); err != nil {
		return fmt.Errorf("download model %s: %w", m.ID, err)
	}

	fmt.Fprintf(w, "saved %s\n", dest)
	return nil
}

// fetchToFile downloads into a temp file next to the destination and renames
// it into place, so an interrupted download never leaves a half model behind.
func fetchToFile(destinationPath, sourceURL string) error {
	resp, err := http.Get(sourceURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status: %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destinationPath), ".partial-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	_, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if copyErr != nil {
		_ = os.Remove(tmpPath)
		return copyErr
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return closeErr
	}

	if err := os.Remove(destinationPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, destinationPath); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
