package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Settings is the on-disk configuration of the tool. Everything has a
// default so a fresh install runs without a config file; the file only
// overrides what it names.
type Settings struct {
	Engine     string                `yaml:"engine" validate:"required,oneof=whisper_cpp openai whisper_server"`
	WhisperCpp WhisperCppSettings    `yaml:"whisper_cpp"`
	OpenAI     OpenAISettings        `yaml:"openai"`
	Server     WhisperServerSettings `yaml:"whisper_server"`
}

// WhisperCppSettings configures the local whisper.cpp engine.
type WhisperCppSettings struct {
	Binary   string `yaml:"binary" validate:"required"`
	ModelDir string `yaml:"model_dir" validate:"required"`
	Device   string `yaml:"device" validate:"oneof=auto cpu"`
	Threads  int    `yaml:"threads" validate:"min=0"`
}

// OpenAISettings configures the hosted transcription engine. The API key
// itself comes from the environment, never from this file.
type OpenAISettings struct {
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
}

// WhisperServerSettings points at a whisper.cpp server instance.
type WhisperServerSettings struct {
	BaseURL    string `yaml:"base_url" validate:"omitempty,url"`
	TimeoutSec int    `yaml:"timeout_sec" validate:"min=0"`
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Engine: "whisper_cpp",
		WhisperCpp: WhisperCppSettings{
			Binary:   "whisper-cli",
			ModelDir: defaultModelDir(),
			Device:   "auto",
		},
		Server: WhisperServerSettings{
			TimeoutSec: 300,
		},
	}
}

// Load reads the settings file at configPath, or the default location when
// configPath is empty. A missing file yields the defaults; a present but
// unreadable or invalid file is an error.
func Load(configPath string) (*Settings, error) {
	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	configPath = os.ExpandEnv(configPath)

	settings := DefaultSettings()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	return settings, nil
}

// Save writes the settings to a YAML file, creating parent directories.
func Save(settings *Settings, configPath string) error {
	configPath = os.ExpandEnv(configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks field constraints.
func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return err
	}
	return nil
}

// DefaultConfigPath returns the configuration file location: the A2T_CONFIG
// environment variable when set, otherwise ~/.a2t/config.yaml.
func DefaultConfigPath() string {
	if path := os.Getenv("A2T_CONFIG"); path != "" {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}

	return filepath.Join(home, ".a2t", "config.yaml")
}

func defaultModelDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "models"
	}
	return filepath.Join(home, ".a2t", "models")
}
