package export

import (
	"fmt"
	"time"

	"github.com/tealeg/xlsx"

	"github.com/DEstebanP/transcript-AI/internal/app/model"
)

// ToExcel writes the given history records to an xlsx workbook at
// outputFilePath, one row per record.
func ToExcel(records []model.TranscriptionRecord, outputFilePath string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transcriptions")
	if err != nil {
		return fmt.Errorf("cannot create sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	headerRow.AddCell().Value = "Run"
	headerRow.AddCell().Value = "File"
	headerRow.AddCell().Value = "Engine"
	headerRow.AddCell().Value = "Model"
	headerRow.AddCell().Value = "Duration (s)"
	headerRow.AddCell().Value = "Status"
	headerRow.AddCell().Value = "Error"
	headerRow.AddCell().Value = "Transcript"
	headerRow.AddCell().Value = "Created At"

	for _, record := range records {
		status := "ok"
		if record.HasError {
			status = "failed"
		}

		row := sheet.AddRow()
		row.AddCell().Value = record.RunID
		row.AddCell().Value = record.FileName
		row.AddCell().Value = record.Engine
		row.AddCell().Value = record.Model
		row.AddCell().Value = fmt.Sprintf("%.2f", record.AudioDuration)
		row.AddCell().Value = status
		row.AddCell().Value = record.ErrorMessage
		row.AddCell().Value = record.Transcript
		row.AddCell().Value = record.CreatedAt.Format(time.RFC3339)
	}

	if err := file.Save(outputFilePath); err != nil {
		return fmt.Errorf("cannot save %q: %w", outputFilePath, err)
	}
	return nil
}
