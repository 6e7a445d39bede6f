package importer

import (
	"strings"

	"github.com/Barczakson/inwentura-op-sub001/internal/parser"
)

// headerSearchWindow bounds how deep into a sheet the header row is looked
// for. Real files put titles, dates and blank rows above the table, but not
// ten of them.
const headerSearchWindow = 10

// FindHeaderRow returns the index of the first row that looks like a header:
// at least two non-empty cells, the majority of them textual rather than
// numeric. Returns -1 when no plausible header exists in the search window.
func FindHeaderRow(rows [][]string) int {
	limit := len(rows)
	if limit > headerSearchWindow {
		limit = headerSearchWindow
	}

	for i := 0; i < limit; i++ {
		nonEmpty := 0
		textual := 0
		for _, cell := range rows[i] {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			nonEmpty++
			if _, err := parser.ParseNumber(cell); err != nil {
				textual++
			}
		}
		if nonEmpty >= 2 && textual*2 > nonEmpty {
			return i
		}
	}
	return -1
}

// padRow extends a row with empty cells up to width. Excel readers trim
// trailing blanks, which would otherwise trip the extractor's out-of-bounds
// check for rows whose last mapped column is empty.
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
