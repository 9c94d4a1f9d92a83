package doctor

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DEstebanP/transcript-AI/internal/app/config"
	"github.com/DEstebanP/transcript-AI/internal/app/diagnostics"
	"github.com/DEstebanP/transcript-AI/internal/app/whisper"
	envcfg "github.com/DEstebanP/transcript-AI/internal/config"
)

var (
	modelID    string
	engine     string
	configPath string
)

func init() {
	Cmd.Flags().StringVarP(&modelID, "model", "m", whisper.DefaultModelID, "model the checks should look for")
	Cmd.Flags().StringVar(&engine, "engine", "", "engine to check, overrides the config file")
	Cmd.Flags().StringVar(&configPath, "config", "", "config file path")
}

// Cmd represents the doctor command
var Cmd = &cobra.Command{
	Use:          "doctor",
	Short:        "Check that tools, models and credentials are in place",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if engine != "" {
			settings.Engine = engine
		}

		m, err := whisper.Lookup(modelID)
		if err != nil {
			return err
		}

		_, keyErr := envcfg.OpenAIKey()

		report := diagnostics.NewChecker().Run(diagnostics.Inputs{
			Engine:     settings.Engine,
			Binary:     settings.WhisperCpp.Binary,
			ModelFile:  filepath.Join(settings.WhisperCpp.ModelDir, m.FileName),
			ModelDir:   settings.WhisperCpp.ModelDir,
			BaseURL:    settings.Server.BaseURL,
			HaveAPIKey: keyErr == nil,
		})

		out := cmd.OutOrStdout()
		for _, item := range report.Items {
			mark := "✓"
			if item.Status == diagnostics.StatusFail {
				mark = "✗"
			}
			fmt.Fprintf(out, "%s %-18s %s\n", mark, item.Name, item.Message)
			if item.Status == diagnostics.StatusFail && item.Hint != "" {
				fmt.Fprintf(out, "  hint: %s\n", item.Hint)
			}
		}

		if report.HasFailures {
			return errors.New("some checks failed")
		}
		fmt.Fprintln(out, "all checks passed")
		return nil
	},
}
