package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/Barczakson/inwentura-op-sub001/internal/model"
)

// Scoring weights. Header evidence dominates; content heuristics only nudge.
const (
	patternScore         = 1.0
	exactNameBonus       = 0.5
	numericDensityWeight = 0.3
	sequentialWeight     = 0.4

	// MaxSampleRows caps how many data rows content heuristics inspect.
	MaxSampleRows = 5

	numericDensityThreshold = 0.8
	sequentialThreshold     = 0.5
)

// Score rates every column against every field from header text and a small
// sample of data rows. The result is a dense matrix: scores[field][column].
// A zero score means the column is not a candidate for that field.
// Pure function of its inputs.
func Score(headers []string, sampleRows [][]string) map[model.Field][]float64 {
	scores := make(map[model.Field][]float64, len(model.AllFields))
	for _, field := range model.AllFields {
		scores[field] = make([]float64, len(headers))
	}

	for col, raw := range headers {
		header := NormalizeHeader(raw)
		if header == "" {
			continue
		}
		for _, field := range model.AllFields {
			s := 0.0
			for _, re := range fieldPatterns[field] {
				if re.MatchString(header) {
					s += patternScore
				}
			}
			// Cumulative with pattern matches, not exclusive.
			if strings.EqualFold(header, string(field)) {
				s += exactNameBonus
			}
			scores[field][col] = s
		}
	}

	sample := sampleRows
	if len(sample) > MaxSampleRows {
		sample = sample[:MaxSampleRows]
	}

	for col := range headers {
		if ratio, ok := numericDensity(sample, col); ok && ratio >= numericDensityThreshold {
			scores[model.FieldQuantity][col] += numericDensityWeight
		}
		if ratio, ok := sequentialRatio(sample, col); ok && ratio >= sequentialThreshold {
			scores[model.FieldLP][col] += sequentialWeight
		}
	}

	return scores
}

// numericDensity reports the fraction of sampled cells in a column that parse
// as numbers. ok is false when the sample has no cells for the column.
func numericDensity(sample [][]string, col int) (ratio float64, ok bool) {
	total := 0
	numeric := 0
	for _, row := range sample {
		if col >= len(row) {
			continue
		}
		total++
		if _, err := ParseNumber(row[col]); err == nil {
			numeric++
		}
	}
	if total == 0 {
		return 0, false
	}
	return float64(numeric) / float64(total), true
}

// sequentialRatio reports the fraction of sampled cells equal to their
// 1-based row position, the signature of an ordinal (L.p.) column.
func sequentialRatio(sample [][]string, col int) (ratio float64, ok bool) {
	total := 0
	sequential := 0
	for i, row := range sample {
		if col >= len(row) {
			continue
		}
		total++
		if v, err := ParseNumber(row[col]); err == nil && v == float64(i+1) {
			sequential++
		}
	}
	if total == 0 {
		return 0, false
	}
	return float64(sequential) / float64(total), true
}

// ParseNumber parses a cell as a finite float, accepting Polish formatting:
// decimal comma and space (or NBSP) thousands separators. Empty cells do not
// parse; callers decide what blank means.
func ParseNumber(cell string) (float64, error) {
	s := strings.TrimSpace(cell)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
