// Package diagnostics runs the environment checks behind the doctor
// command: external tools on PATH, model files on disk, credentials for
// remote engines.
package diagnostics

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// Item is one check result with an optional fix hint.
type Item struct {
	ID      string
	Name    string
	Status  Status
	Message string
	Hint    string
}

// Report aggregates all checks for one engine configuration.
type Report struct {
	GeneratedAt time.Time
	HasFailures bool
	Items       []Item
}

// Inputs names everything the checks look at. The caller resolves them
// from settings and the selected model.
type Inputs struct {
	Engine     string
	Binary     string // whisper.cpp executable name or path
	ModelFile  string // resolved model file path
	ModelDir   string
	BaseURL    string // whisper_server endpoint
	HaveAPIKey bool
}

// Checker validates external tools and required filesystem paths.
type Checker struct {
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		stat:       os.Stat,
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes the checks that apply to the configured engine.
func (c *Checker) Run(in Inputs) Report {
	items := []Item{
		c.checkTool("ffmpeg"),
		c.checkTool("ffprobe"),
	}

	switch in.Engine {
	case "openai":
		items = append(items, c.checkAPIKey(in.HaveAPIKey))
	case "whisper_server":
		items = append(items, c.checkServerURL(in.BaseURL))
	default:
		items = append(items,
			c.checkTool(in.Binary),
			c.checkModelFile(in.ModelFile),
			c.checkModelDir(in.ModelDir),
		)
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == StatusFail {
			hasFailures = true
			break
		}
	}

	return Report{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

func (c *Checker) checkTool(name string) Item {
	item := Item{ID: "tool_" + filepath.Base(name), Name: filepath.Base(name)}

	if strings.TrimSpace(name) == "" {
		item.Status = StatusFail
		item.Message = "No executable configured."
		item.Hint = "Set the binary name in the config file."
		return item
	}

	path, err := c.lookPath(name)
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Tool not found in PATH: %s", name)
		item.Hint = "Install it and make sure the binary is on PATH."
		return item
	}

	item.Status = StatusPass
	item.Message = fmt.Sprintf("Found at %s", path)
	return item
}

func (c *Checker) checkModelFile(modelFile string) Item {
	item := Item{ID: "model_file", Name: "Model file"}

	if strings.TrimSpace(modelFile) == "" {
		item.Status = StatusFail
		item.Message = "No model file configured."
		item.Hint = "Pick a model with --model or set one in the config file."
		return item
	}

	info, err := c.stat(modelFile)
	switch {
	case err != nil && os.IsNotExist(err):
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Model file does not exist: %s", modelFile)
		item.Hint = "Run `a2t models --download <id>` to fetch it."
	case err != nil:
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Cannot access model file: %s", modelFile)
		item.Hint = "Check filesystem permissions."
	case info.IsDir():
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Model path is a directory: %s", modelFile)
		item.Hint = "Point the model dir at the folder that holds the ggml files."
	default:
		item.Status = StatusPass
		item.Message = fmt.Sprintf("Model file found: %s", modelFile)
	}
	return item
}

func (c *Checker) checkModelDir(modelDir string) Item {
	item := Item{ID: "model_dir", Name: "Model directory"}

	if strings.TrimSpace(modelDir) == "" {
		item.Status = StatusFail
		item.Message = "Model directory is empty."
		item.Hint = "Set model_dir in the config file."
		return item
	}

	if err := c.mkdirAll(modelDir, 0o755); err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Cannot create model directory: %s", modelDir)
		item.Hint = "Choose a writable location."
		return item
	}

	tmpFile, err := c.createTemp(modelDir, ".write-check-*")
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Model directory is not writable: %s", modelDir)
		item.Hint = "Model downloads need write access here."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = StatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", modelDir)
	return item
}

func (c *Checker) checkAPIKey(present bool) Item {
	item := Item{ID: "openai_key", Name: "OpenAI API key"}
	if !present {
		item.Status = StatusFail
		item.Message = "OPENAI_API_KEY is not set."
		item.Hint = "Export it or add it to a .env file."
		return item
	}
	item.Status = StatusPass
	item.Message = "API key configured."
	return item
}

func (c *Checker) checkServerURL(baseURL string) Item {
	item := Item{ID: "server_url", Name: "Whisper server"}
	if strings.TrimSpace(baseURL) == "" {
		item.Status = StatusFail
		item.Message = "No server base URL configured."
		item.Hint = "Set whisper_server.base_url in the config file."
		return item
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Base URL must start with http:// or https://, got %q", baseURL)
		return item
	}
	item.Status = StatusPass
	item.Message = fmt.Sprintf("Configured endpoint: %s", baseURL)
	return item
}
