package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names understood by the tool.
const (
	EnvConfigPath    = "A2T_CONFIG"
	EnvHistoryMode   = "A2T_HISTORY"
	EnvHistoryDB     = "A2T_HISTORY_DB"
	EnvHistoryDriver = "A2T_HISTORY_DRIVER"
	EnvHistoryDSN    = "A2T_HISTORY_DSN"
	EnvOpenAIKey     = "OPENAI_API_KEY"
)

// LoadEnv loads environment variables from a .env file if one exists next to
// the working directory. Variables already set in the environment win, and a
// missing file is not an error.
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	return nil
}

// OpenAIKey retrieves and validates the OpenAI API key. The remote engine
// cannot run without it, so a missing or malformed key fails immediately.
func OpenAIKey() (string, error) {
	key := strings.TrimSpace(os.Getenv(EnvOpenAIKey))
	if key == "" {
		return "", fmt.Errorf("OPENAI_API_KEY is not set, the openai engine needs it")
	}
	if !strings.HasPrefix(key, "sk-") {
		return "", fmt.Errorf("invalid OPENAI_API_KEY format: must start with 'sk-'")
	}
	if len(key) < 20 {
		return "", fmt.Errorf("invalid OPENAI_API_KEY format: too short")
	}
	return key, nil
}
