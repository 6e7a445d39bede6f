package parser

import (
	"fmt"
	"strings"

	"github.com/Barczakson/inwentura-op-sub001/internal/model"
)

// NoHeadersError means no header row was supplied to detection.
// Fatal for the whole sheet.
type NoHeadersError struct{}

func (e *NoHeadersError) Error() string {
	return "no header row supplied"
}

// InsufficientColumnsError means one or more required fields could not be
// resolved from headers and sample content. Automatic detection is abandoned;
// the caller falls back to a manual mapping.
type InsufficientColumnsError struct {
	Found   []model.Field `json:"found"`
	Missing []model.Field `json:"missing"`
}

func (e *InsufficientColumnsError) Error() string {
	found := "none"
	if len(e.Found) > 0 {
		found = joinFields(e.Found)
	}
	return fmt.Sprintf("could not detect required columns: missing %s (found: %s)",
		joinFields(e.Missing), found)
}

// RowExtractionError means a single row's data cannot be coerced into the
// required fields. The offending raw values are kept for diagnostics; the row
// is skipped and ingestion continues.
type RowExtractionError struct {
	Reason   string `json:"reason"`
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Unit     string `json:"unit"`
}

func (e *RowExtractionError) Error() string {
	return fmt.Sprintf("row extraction failed: %s (name=%q quantity=%q unit=%q)",
		e.Reason, e.Name, e.Quantity, e.Unit)
}

func joinFields(fields []model.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}
