// Package aggregator merges extracted rows into running per-item totals.
// It holds no aggregate state of its own: every contribution goes through the
// store's atomic upsert, so concurrent uploads touching the same key need no
// application-level lock.
package aggregator

import (
	"context"
	"errors"
	"fmt"

	"github.com/Barczakson/inwentura-op-sub001/internal/chunk"
	"github.com/Barczakson/inwentura-op-sub001/internal/model"
	"github.com/Barczakson/inwentura-op-sub001/internal/parser"
)

// Upserter is the persistence primitive the engine relies on. One call must
// atomically either create the record for key (quantity, count=1, sources
// {fileID}) or increment quantity by the delta, count by 1, and add fileID to
// the source set idempotently. Caller-side read-modify-write is exactly the
// bug this contract exists to rule out.
type Upserter interface {
	UpsertAggregate(ctx context.Context, key model.AggregateKey, quantity float64, fileID string) (*model.AggregateRecord, error)
}

// RowRejection records one row that failed extraction.
type RowRejection struct {
	RowNo  int    `json:"rowNo"`
	Reason string `json:"reason"`
}

// Result is the per-file ingestion outcome.
type Result struct {
	FileID        string                   `json:"fileId"`
	TotalRows     int                      `json:"totalRows"`
	ExtractedRows int                      `json:"extractedRows"`
	RejectedRows  int                      `json:"rejectedRows"`
	Rejections    []RowRejection           `json:"rejections,omitempty"`
	Rows          []model.ItemRow          `json:"-"`
	Aggregates    []*model.AggregateRecord `json:"aggregates"`
}

// Engine ingests raw rows through extraction and atomic upserts.
type Engine struct {
	store     Upserter
	chunkSize int
}

// New creates an aggregation engine. chunkSize <= 0 means the default.
func New(store Upserter, chunkSize int) *Engine {
	return &Engine{store: store, chunkSize: chunkSize}
}

type rowOutcome struct {
	row       model.ItemRow
	rejection *RowRejection
	record    *model.AggregateRecord
}

// numbered pairs a raw row with its 1-based position in the sheet.
type numbered struct {
	rowNo int
	cells []string
}

// IngestRows extracts and aggregates every row of one file, in sheet order,
// chunk by chunk. firstRowNo is the 1-based sheet position of rows[0], used
// in rejection reports so users can find the offending line.
//
// An extraction failure rejects that row and moves on; an upsert failure
// aborts the whole ingestion, since partial aggregation state must never pass
// as success. Blank rows are skipped outright and not counted.
func (e *Engine) IngestRows(ctx context.Context, fileID string, rows [][]string, firstRowNo int, mapping model.ColumnMapping) (*Result, error) {
	input := make([]numbered, 0, len(rows))
	for i, row := range rows {
		if parser.IsBlankRow(row) {
			continue
		}
		input = append(input, numbered{rowNo: firstRowNo + i, cells: row})
	}

	outcomes, err := chunk.Process(ctx, input, e.chunkSize,
		func(ctx context.Context, batch []numbered) ([]rowOutcome, error) {
			return e.processBatch(ctx, fileID, batch, mapping)
		})
	if err != nil {
		return nil, err
	}

	result := &Result{FileID: fileID, TotalRows: len(input)}
	touched := make(map[model.AggregateKey]int)
	for _, o := range outcomes {
		if o.rejection != nil {
			result.RejectedRows++
			result.Rejections = append(result.Rejections, *o.rejection)
			continue
		}
		result.ExtractedRows++
		result.Rows = append(result.Rows, o.row)
		key := o.record.Key()
		if pos, seen := touched[key]; seen {
			// Keep the latest snapshot for a key touched more than once.
			result.Aggregates[pos] = o.record
		} else {
			touched[key] = len(result.Aggregates)
			result.Aggregates = append(result.Aggregates, o.record)
		}
	}
	return result, nil
}

// processBatch handles one bounded batch, row by row in order.
func (e *Engine) processBatch(ctx context.Context, fileID string, batch []numbered, mapping model.ColumnMapping) ([]rowOutcome, error) {
	outcomes := make([]rowOutcome, 0, len(batch))
	for _, item := range batch {
		extracted, err := parser.Extract(item.cells, mapping)
		if err != nil {
			var extractionErr *parser.RowExtractionError
			if errors.As(err, &extractionErr) {
				outcomes = append(outcomes, rowOutcome{
					rejection: &RowRejection{RowNo: item.rowNo, Reason: extractionErr.Reason},
				})
				continue
			}
			return nil, fmt.Errorf("row %d: %w", item.rowNo, err)
		}

		record, err := e.store.UpsertAggregate(ctx, extracted.Key(), extracted.Quantity, fileID)
		if err != nil {
			return nil, fmt.Errorf("upsert row %d: %w", item.rowNo, err)
		}

		outcomes = append(outcomes, rowOutcome{
			row: model.ItemRow{
				FileID:   fileID,
				RowNo:    item.rowNo,
				LP:       extracted.LP,
				ItemID:   extracted.ItemID,
				Name:     extracted.Name,
				Quantity: extracted.Quantity,
				Unit:     extracted.Unit,
			},
			record: record,
		})
	}
	return outcomes, nil
}
