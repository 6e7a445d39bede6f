package parser

import (
	"fmt"
	"strings"

	"github.com/Barczakson/inwentura-op-sub001/internal/model"
)

// Extract applies a validated mapping to one raw row and returns a typed row,
// or a *RowExtractionError carrying the offending raw values.
//
// Policy, deliberately asymmetric: a blank quantity cell defaults to 0, while
// a non-blank cell that does not parse as a number is an error. Do not "fix"
// one side to match the other. An unparsable lp is treated as absent; row
// numbers are a convenience field only.
func Extract(row []string, mapping model.ColumnMapping) (*model.ExtractedRow, error) {
	// Fail fast before touching any field, so a short row can never surface
	// as a partially populated record.
	if max := mapping.MaxIndex(); max >= len(row) {
		return nil, &RowExtractionError{
			Reason: fmt.Sprintf("row has %d cells but the mapping references column %d", len(row), max),
		}
	}

	extracted := &model.ExtractedRow{}

	if idx := mapping.LP; idx != nil {
		if v, err := ParseNumber(row[*idx]); err == nil {
			lp := int(v)
			extracted.LP = &lp
		}
	}

	if idx := mapping.ItemID; idx != nil {
		extracted.ItemID = strings.TrimSpace(row[*idx])
	}

	rawName := ""
	if idx := mapping.Name; idx != nil {
		rawName = row[*idx]
		extracted.Name = strings.TrimSpace(rawName)
	}

	rawQuantity := ""
	quantityErr := ""
	if idx := mapping.Quantity; idx != nil {
		rawQuantity = row[*idx]
		if strings.TrimSpace(rawQuantity) == "" {
			extracted.Quantity = 0
		} else if v, err := ParseNumber(rawQuantity); err == nil {
			extracted.Quantity = v
		} else {
			quantityErr = fmt.Sprintf("quantity %q is not a number", rawQuantity)
		}
	}

	rawUnit := ""
	if idx := mapping.Unit; idx != nil {
		rawUnit = row[*idx]
		extracted.Unit = strings.ToLower(strings.TrimSpace(rawUnit))
	}

	var reasons []string
	if extracted.Name == "" {
		reasons = append(reasons, "item name is empty")
	}
	if quantityErr != "" {
		reasons = append(reasons, quantityErr)
	}
	if extracted.Unit == "" {
		reasons = append(reasons, "unit is empty")
	}
	if len(reasons) > 0 {
		return nil, &RowExtractionError{
			Reason:   strings.Join(reasons, "; "),
			Name:     rawName,
			Quantity: rawQuantity,
			Unit:     rawUnit,
		}
	}

	return extracted, nil
}

// IsBlankRow reports whether every cell in the row is empty or whitespace.
// Spreadsheets routinely carry trailing blank rows; they are skipped before
// extraction rather than rejected.
func IsBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
