package whisper

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Model describes one pretrained whisper model preset. The ID is what users
// pass on the command line; FileName is the ggml weights file the local
// engine loads from the model directory.
type Model struct {
	ID          string
	FileName    string
	URL         string
	SizeLabel   string
	EnglishOnly bool
}

// DefaultModelID is used when no model is selected explicitly.
const DefaultModelID = "small"

const downloadBase = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

var catalog = []Model{
	{ID: "tiny", FileName: "ggml-tiny.bin", SizeLabel: "75 MiB"},
	{ID: "tiny.en", FileName: "ggml-tiny.en.bin", SizeLabel: "75 MiB", EnglishOnly: true},
	{ID: "base", FileName: "ggml-base.bin", SizeLabel: "142 MiB"},
	{ID: "base.en", FileName: "ggml-base.en.bin", SizeLabel: "142 MiB", EnglishOnly: true},
	{ID: "small", FileName: "ggml-small.bin", SizeLabel: "466 MiB"},
	{ID: "small.en", FileName: "ggml-small.en.bin", SizeLabel: "466 MiB", EnglishOnly: true},
	{ID: "medium", FileName: "ggml-medium.bin", SizeLabel: "1.5 GiB"},
	{ID: "medium.en", FileName: "ggml-medium.en.bin", SizeLabel: "1.5 GiB", EnglishOnly: true},
	{ID: "large", FileName: "ggml-large-v3.bin", SizeLabel: "2.9 GiB"},
}

// Catalog returns every known model, smallest first.
func Catalog() []Model {
	out := make([]Model, len(catalog))
	copy(out, catalog)
	return out
}

// IDs returns the valid model identifiers in catalog order.
func IDs() []string {
	return lo.Map(catalog, func(m Model, _ int) string { return m.ID })
}

// Lookup resolves a model ID, rejecting anything outside the catalog.
func Lookup(id string) (Model, error) {
	m, ok := lo.Find(catalog, func(m Model) bool { return m.ID == id })
	if !ok {
		return Model{}, fmt.Errorf("unknown model %q, valid models are: %s", id, strings.Join(IDs(), ", "))
	}
	return m, nil
}

// Language returns the forced recognition language, or empty for autodetect.
// The .en variants only know English and must be pinned to it.
func (m Model) Language() string {
	if m.EnglishOnly {
		return "en"
	}
	return ""
}

// DownloadURL is where the weights file can be fetched from.
func (m Model) DownloadURL() string {
	if m.URL != "" {
		return m.URL
	}
	return downloadBase + m.FileName
}
