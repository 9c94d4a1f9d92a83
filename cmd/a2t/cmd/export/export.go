package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DEstebanP/transcript-AI/internal/app/export"
	"github.com/DEstebanP/transcript-AI/internal/app/repository"
)

var (
	outputFilePath string
	limit          int
)

func init() {
	Cmd.Flags().StringVarP(&outputFilePath, "output", "o", "", "destination .xlsx file")
	Cmd.Flags().IntVar(&limit, "limit", 0, "export at most this many records, newest first (0 = all)")

	Cmd.MarkFlagRequired("output")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export the transcription history to excel",
	Long: `Export the transcription history to excel.

Every recorded run is included, failed files carry their error message.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := repository.Open()
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := db.History(limit)
		if err != nil {
			return err
		}

		if err := export.ToExcel(records, outputFilePath); err != nil {
			return err
		}

		fmt.Printf("export finished, exported file path: %v\n", outputFilePath)
		return nil
	},
}
