package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Barczakson/inwentura-op-sub001/internal/aggregator"
	"github.com/Barczakson/inwentura-op-sub001/internal/config"
	"github.com/Barczakson/inwentura-op-sub001/internal/model"
	"github.com/Barczakson/inwentura-op-sub001/internal/parser"
	"github.com/Barczakson/inwentura-op-sub001/internal/store"
)

// Coordinator drives one upload through detection, extraction and
// aggregation, sheet by sheet.
type Coordinator struct {
	store      *store.Store
	chunkSize  int
	sampleRows int
}

// NewCoordinator creates an import coordinator.
func NewCoordinator(st *store.Store, cfg config.ImportConfig) *Coordinator {
	sampleRows := cfg.SampleRows
	if sampleRows <= 0 {
		sampleRows = parser.MaxSampleRows
	}
	return &Coordinator{
		store:      st,
		chunkSize:  cfg.ChunkSize,
		sampleRows: sampleRows,
	}
}

// ImportOptions describes one import run.
type ImportOptions struct {
	FilePath string
	FileID   string
	Filename string
	// Mapping overrides automatic detection when the user has corrected the
	// columns by hand. Validated per sheet before use.
	Mapping *model.ColumnMapping
}

// ProgressEvent is one step of a running import, streamed to the client.
type ProgressEvent struct {
	Type      string      `json:"type"` // start/sheet_start/sheet_done/info/warning/error/done
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// SheetResult is the outcome of one sheet.
type SheetResult struct {
	SheetName     string                    `json:"sheetName"`
	Status        string                    `json:"status"` // imported/skipped/error
	Mapping       *model.ColumnMapping      `json:"mapping,omitempty"`
	Confidence    float64                   `json:"confidence,omitempty"`
	TotalRows     int                       `json:"totalRows"`
	ExtractedRows int                       `json:"extractedRows"`
	RejectedRows  int                       `json:"rejectedRows"`
	Rejections    []aggregator.RowRejection `json:"rejections,omitempty"`
	Errors        []string                  `json:"errors,omitempty"`
	Duration      time.Duration             `json:"duration"`
}

// ImportReport is the final summary of one upload.
type ImportReport struct {
	FileID         string        `json:"fileId"`
	Filename       string        `json:"filename"`
	TotalSheets    int           `json:"totalSheets"`
	ImportedSheets int           `json:"importedSheets"`
	SkippedSheets  int           `json:"skippedSheets"`
	TotalRows      int           `json:"totalRows"`
	ExtractedRows  int           `json:"extractedRows"`
	RejectedRows   int           `json:"rejectedRows"`
	Duration       time.Duration `json:"duration"`
	Sheets         []SheetResult `json:"sheets"`
}

type importContext struct {
	ctx          context.Context
	file         *excelize.File
	opts         ImportOptions
	report       *ImportReport
	progressChan chan ProgressEvent
}

// Import runs the import in the background and returns its progress channel.
// The channel is closed after the final done or error event.
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)
		c.doImport(ctx, opts, progressChan)
	}()

	return progressChan
}

func (c *Coordinator) doImport(ctx context.Context, opts ImportOptions, progressChan chan ProgressEvent) {
	startTime := time.Now()

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "start",
		Message:   fmt.Sprintf("importing %s", opts.Filename),
		Data:      map[string]string{"fileId": opts.FileID, "filename": opts.Filename},
		Timestamp: time.Now(),
	})

	file, err := excelize.OpenFile(opts.FilePath)
	if err != nil {
		c.failImport(opts, progressChan, fmt.Errorf("failed to open spreadsheet: %w", err))
		return
	}
	defer file.Close()

	ictx := &importContext{
		ctx:  ctx,
		file: file,
		opts: opts,
		report: &ImportReport{
			FileID:   opts.FileID,
			Filename: opts.Filename,
		},
		progressChan: progressChan,
	}

	sheetList := file.GetSheetList()
	ictx.report.TotalSheets = len(sheetList)

	for _, sheetName := range sheetList {
		if err := c.processSheet(ictx, sheetName); err != nil {
			// A storage failure invalidates the whole ingestion; whatever
			// upserts already committed stay durable, but the file must not
			// read as successfully imported.
			c.failImport(opts, progressChan, err)
			return
		}
	}

	ictx.report.Duration = time.Since(startTime)

	if err := c.store.FinishFile(opts.FileID,
		ictx.report.TotalRows, ictx.report.ExtractedRows, ictx.report.RejectedRows,
		model.UploadStatusCompleted, ""); err != nil {
		c.failImport(opts, progressChan, fmt.Errorf("failed to finalize file record: %w", err))
		return
	}

	c.sendProgress(progressChan, ProgressEvent{
		Type:      "done",
		Message:   "import completed",
		Data:      ictx.report,
		Timestamp: time.Now(),
	})
}

// processSheet handles one sheet. A returned error is fatal for the file;
// sheet-level problems (unreadable sheet, undetectable columns) are recorded
// in the report and skipped.
func (c *Coordinator) processSheet(ictx *importContext, sheetName string) error {
	sheetStart := time.Now()

	c.sendProgress(ictx.progressChan, ProgressEvent{
		Type:      "sheet_start",
		Message:   fmt.Sprintf("processing sheet %q", sheetName),
		Data:      map[string]string{"sheetName": sheetName},
		Timestamp: time.Now(),
	})

	rows, err := ictx.file.GetRows(sheetName)
	if err != nil {
		c.recordSheet(ictx, SheetResult{
			SheetName: sheetName,
			Status:    "error",
			Errors:    []string{fmt.Sprintf("failed to read sheet: %v", err)},
			Duration:  time.Since(sheetStart),
		})
		return nil
	}

	headerIdx := FindHeaderRow(rows)
	if headerIdx < 0 {
		c.recordSheet(ictx, SheetResult{
			SheetName: sheetName,
			Status:    "skipped",
			Errors:    []string{"no header row found"},
			Duration:  time.Since(sheetStart),
		})
		c.sendProgress(ictx.progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("sheet %q has no recognizable header row, skipping", sheetName),
			Timestamp: time.Now(),
		})
		return nil
	}

	headers := rows[headerIdx]
	dataRows := rows[headerIdx+1:]

	mapping, confidence, err := c.resolveMapping(headers, dataRows, ictx.opts.Mapping)
	if err != nil {
		var insufficient *parser.InsufficientColumnsError
		if errors.As(err, &insufficient) {
			// Recoverable: the client re-imports with a manual mapping.
			c.recordSheet(ictx, SheetResult{
				SheetName: sheetName,
				Status:    "skipped",
				Errors:    []string{insufficient.Error()},
				Duration:  time.Since(sheetStart),
			})
			c.sendProgress(ictx.progressChan, ProgressEvent{
				Type:      "warning",
				Message:   fmt.Sprintf("sheet %q: %s", sheetName, insufficient.Error()),
				Data:      insufficient,
				Timestamp: time.Now(),
			})
			return nil
		}
		c.recordSheet(ictx, SheetResult{
			SheetName: sheetName,
			Status:    "error",
			Errors:    []string{err.Error()},
			Duration:  time.Since(sheetStart),
		})
		return nil
	}

	c.sendProgress(ictx.progressChan, ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("sheet %q columns resolved (confidence %.2f)", sheetName, confidence),
		Data: map[string]interface{}{
			"sheetName":  sheetName,
			"mapping":    mapping,
			"confidence": confidence,
		},
		Timestamp: time.Now(),
	})

	padded := make([][]string, len(dataRows))
	for i, row := range dataRows {
		padded[i] = padRow(row, len(headers))
	}

	engine := aggregator.New(c.store, c.chunkSize)
	result, err := engine.IngestRows(ictx.ctx, ictx.opts.FileID, padded, headerIdx+2, mapping)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", sheetName, err)
	}

	if err := c.store.BatchInsertRows(result.Rows); err != nil {
		return fmt.Errorf("sheet %q: %w", sheetName, err)
	}

	c.recordSheet(ictx, SheetResult{
		SheetName:     sheetName,
		Status:        "imported",
		Mapping:       &mapping,
		Confidence:    confidence,
		TotalRows:     result.TotalRows,
		ExtractedRows: result.ExtractedRows,
		RejectedRows:  result.RejectedRows,
		Rejections:    result.Rejections,
		Duration:      time.Since(sheetStart),
	})

	c.sendProgress(ictx.progressChan, ProgressEvent{
		Type:    "sheet_done",
		Message: fmt.Sprintf("sheet %q: %d rows aggregated, %d rejected", sheetName, result.ExtractedRows, result.RejectedRows),
		Data: map[string]interface{}{
			"sheetName":     sheetName,
			"extractedRows": result.ExtractedRows,
			"rejectedRows":  result.RejectedRows,
		},
		Timestamp: time.Now(),
	})

	return nil
}

// resolveMapping produces the column mapping for a sheet: the user-supplied
// one when present, automatic detection otherwise. Either way the mapping is
// validated against the header width before any row is touched.
func (c *Coordinator) resolveMapping(headers []string, dataRows [][]string, manual *model.ColumnMapping) (model.ColumnMapping, float64, error) {
	sample := dataRows
	if len(sample) > c.sampleRows {
		sample = sample[:c.sampleRows]
	}

	var mapping model.ColumnMapping
	confidence := 0.0

	if manual != nil {
		mapping = *manual
	} else {
		result, err := parser.Detect(headers, sample)
		if err != nil {
			return model.ColumnMapping{}, 0, err
		}
		mapping = result.Mapping
		confidence = result.Confidence
	}

	if v := parser.Validate(mapping, len(headers)); !v.IsValid {
		return model.ColumnMapping{}, 0, fmt.Errorf("invalid column mapping: %s", strings.Join(v.Errors, "; "))
	}
	return mapping, confidence, nil
}

func (c *Coordinator) recordSheet(ictx *importContext, result SheetResult) {
	ictx.report.Sheets = append(ictx.report.Sheets, result)

	switch result.Status {
	case "imported":
		ictx.report.ImportedSheets++
	case "skipped":
		ictx.report.SkippedSheets++
	}

	ictx.report.TotalRows += result.TotalRows
	ictx.report.ExtractedRows += result.ExtractedRows
	ictx.report.RejectedRows += result.RejectedRows
}

// failImport marks the upload failed and emits the terminal error event.
// Internals are logged through the event stream with full context; callers
// surface only a generic failure message to end users.
func (c *Coordinator) failImport(opts ImportOptions, progressChan chan ProgressEvent, err error) {
	if storeErr := c.store.FinishFile(opts.FileID, 0, 0, 0, model.UploadStatusFailed, err.Error()); storeErr != nil {
		c.sendProgress(progressChan, ProgressEvent{
			Type:      "warning",
			Message:   fmt.Sprintf("failed to mark file as failed: %v", storeErr),
			Timestamp: time.Now(),
		})
	}
	c.sendProgress(progressChan, ProgressEvent{
		Type:      "error",
		Message:   err.Error(),
		Timestamp: time.Now(),
	})
}

// sendProgress delivers an event without ever blocking the import; a slow
// consumer loses events, not data.
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
	}
}
