package importer

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Barczakson/inwentura-op-sub001/internal/model"
	"github.com/Barczakson/inwentura-op-sub001/internal/parser"
)

// SheetDetection is the detection preview for one sheet: either a resolved
// mapping or the typed reason it could not be resolved, so the client can
// open the manual mapping dialog with the right context.
type SheetDetection struct {
	SheetName string                 `json:"sheetName"`
	HeaderRow int                    `json:"headerRow"` // zero-based; -1 when not found
	Headers   []string               `json:"headers,omitempty"`
	Result    *model.DetectionResult `json:"result,omitempty"`
	Found     []model.Field          `json:"found,omitempty"`
	Missing   []model.Field          `json:"missing,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// Preview runs header discovery and column detection on every sheet of a
// spreadsheet without ingesting anything.
func Preview(filePath string, sampleRows int) ([]SheetDetection, error) {
	if sampleRows <= 0 {
		sampleRows = parser.MaxSampleRows
	}

	file, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer file.Close()

	var detections []SheetDetection
	for _, sheetName := range file.GetSheetList() {
		detection := SheetDetection{SheetName: sheetName, HeaderRow: -1}

		rows, err := file.GetRows(sheetName)
		if err != nil {
			detection.Error = fmt.Sprintf("failed to read sheet: %v", err)
			detections = append(detections, detection)
			continue
		}

		headerIdx := FindHeaderRow(rows)
		if headerIdx < 0 {
			detection.Error = "no header row found"
			detections = append(detections, detection)
			continue
		}
		detection.HeaderRow = headerIdx
		detection.Headers = rows[headerIdx]

		sample := rows[headerIdx+1:]
		if len(sample) > sampleRows {
			sample = sample[:sampleRows]
		}

		result, err := parser.Detect(detection.Headers, sample)
		if err != nil {
			var insufficient *parser.InsufficientColumnsError
			if errors.As(err, &insufficient) {
				detection.Found = insufficient.Found
				detection.Missing = insufficient.Missing
			}
			detection.Error = err.Error()
			detections = append(detections, detection)
			continue
		}

		detection.Result = result
		detections = append(detections, detection)
	}

	return detections, nil
}
