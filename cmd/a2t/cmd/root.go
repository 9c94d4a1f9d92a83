package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DEstebanP/transcript-AI/cmd/a2t/cmd/doctor"
	"github.com/DEstebanP/transcript-AI/cmd/a2t/cmd/export"
	"github.com/DEstebanP/transcript-AI/cmd/a2t/cmd/models"
	"github.com/DEstebanP/transcript-AI/cmd/a2t/cmd/version"
	"github.com/DEstebanP/transcript-AI/internal/app"
	"github.com/DEstebanP/transcript-AI/internal/app/batch"
	"github.com/DEstebanP/transcript-AI/internal/app/whisper"
)

var Verbose bool

var (
	modelID       string
	outputDir     string
	extension     string
	engine        string
	device        string
	configPath    string
	skipProcessed bool
	noProgress    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "a2t <input_dir>",
	Short: "Batch transcribe the audio files in a directory to text",
	Long: `Batch transcribe the audio files in a directory to text.

- Iterate through the audio files in the given directory
- Convert each one to a normalized WAV and run it through the whisper engine
- Write one .txt transcript per input file to the output directory
- A failing file is reported and skipped, the batch keeps going`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := app.InitializeBatch(app.Options{
			ModelID:      modelID,
			Engine:       engine,
			Device:       device,
			ConfigPath:   configPath,
			Verbose:      Verbose,
			ShowProgress: !noProgress && batch.ShouldShowProgress(false),
		})
		if err != nil {
			return err
		}
		defer b.Close()

		summary, err := b.Run(cmd.Context(), batch.Request{
			InputDir:      args[0],
			OutputDir:     outputDir,
			Extension:     extension,
			SkipProcessed: skipProcessed,
		})
		if err != nil {
			return err
		}

		fmt.Println(summary.String())
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(models.Cmd)
	rootCmd.AddCommand(doctor.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.Flags().StringVarP(&modelID, "model", "m", whisper.DefaultModelID,
		fmt.Sprintf("whisper model to use, one of: %s", strings.Join(whisper.IDs(), ", ")))
	rootCmd.Flags().StringVarP(&outputDir, "output_dir", "o", "transcripts",
		"directory the .txt transcripts are written to, created if missing")
	rootCmd.Flags().StringVar(&extension, "ext", ".m4a",
		"audio file extension to pick up in the input directory")
	rootCmd.Flags().StringVar(&engine, "engine", "",
		"transcription engine (whisper_cpp, openai, whisper_server), overrides the config file")
	rootCmd.Flags().StringVar(&device, "device", "",
		"whisper_cpp inference device (auto, cpu), overrides the config file")
	rootCmd.Flags().StringVar(&configPath, "config", "",
		"config file path (default is $A2T_CONFIG or ~/.a2t/config.yaml)")
	rootCmd.Flags().BoolVar(&skipProcessed, "skip-processed", false,
		"skip files already transcribed successfully in an earlier run")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false,
		"disable the progress bar even on a terminal")

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
