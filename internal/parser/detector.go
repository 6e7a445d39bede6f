package parser

import (
	"sort"

	"github.com/Barczakson/inwentura-op-sub001/internal/model"
)

const maxSuggestions = 3

// Detect infers a column mapping from a header row and a small sample of data
// rows. Each field is resolved independently to its best-scoring column; ties
// go to the lowest index. Ambiguity is surfaced through Suggestions for manual
// correction rather than resolved automatically.
//
// Fails with *NoHeadersError when headers are empty, and with
// *InsufficientColumnsError when any of name, quantity, unit has no
// positive-scoring column. A partially valid mapping is never returned.
func Detect(headers []string, sampleRows [][]string) (*model.DetectionResult, error) {
	if len(headers) == 0 {
		return nil, &NoHeadersError{}
	}

	scores := Score(headers, sampleRows)

	result := &model.DetectionResult{
		Suggestions: make(map[model.Field][]int),
	}

	for _, field := range model.AllFields {
		winner, runnerUps := pickColumn(scores[field])
		if winner < 0 {
			continue
		}
		result.Mapping.Set(field, winner)
		if len(runnerUps) > 0 {
			result.Suggestions[field] = runnerUps
		}
	}

	var found, missing []model.Field
	for _, field := range model.RequiredFields {
		if result.Mapping.Index(field) != nil {
			found = append(found, field)
		} else {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &InsufficientColumnsError{Found: found, Missing: missing}
	}

	result.Confidence = float64(len(found)) / float64(len(model.RequiredFields))
	if len(result.Suggestions) == 0 {
		result.Suggestions = nil
	}
	return result, nil
}

// pickColumn selects the strictly best positive-scoring column (first
// occurrence wins ties) and up to maxSuggestions positive runner-ups in
// descending score order.
func pickColumn(columnScores []float64) (winner int, runnerUps []int) {
	winner = -1
	best := 0.0
	for col, s := range columnScores {
		if s > best {
			best = s
			winner = col
		}
	}
	if winner < 0 {
		return -1, nil
	}

	for col, s := range columnScores {
		if col != winner && s > 0 {
			runnerUps = append(runnerUps, col)
		}
	}
	sort.SliceStable(runnerUps, func(i, j int) bool {
		return columnScores[runnerUps[i]] > columnScores[runnerUps[j]]
	})
	if len(runnerUps) > maxSuggestions {
		runnerUps = runnerUps[:maxSuggestions]
	}
	return winner, runnerUps
}
