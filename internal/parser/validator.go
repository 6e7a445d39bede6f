package parser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Barczakson/inwentura-op-sub001/internal/model"
)

// ValidationResult lists every structural problem found in a mapping.
// Validation itself never fails; problems are returned as data.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Validate checks a mapping, detected or user-edited, for completeness,
// bounds and collisions against a sheet with headerCount columns. All rules
// are checked independently and every problem is reported in one call.
func Validate(mapping model.ColumnMapping, headerCount int) ValidationResult {
	var errs []string

	for _, field := range model.RequiredFields {
		if mapping.Index(field) == nil {
			errs = append(errs, fmt.Sprintf("missing required field: %s", field))
		}
	}

	for _, field := range model.AllFields {
		idx := mapping.Index(field)
		if idx == nil {
			continue
		}
		if *idx < 0 {
			errs = append(errs, fmt.Sprintf("invalid negative index %d for field %s", *idx, field))
		} else if *idx >= headerCount {
			errs = append(errs, fmt.Sprintf("index %d for field %s is out of bounds (sheet has %d columns)",
				*idx, field, headerCount))
		}
	}

	byIndex := make(map[int][]model.Field)
	for _, field := range model.AllFields {
		if idx := mapping.Index(field); idx != nil {
			byIndex[*idx] = append(byIndex[*idx], field)
		}
	}
	var duplicated []int
	for idx, fields := range byIndex {
		if len(fields) > 1 {
			duplicated = append(duplicated, idx)
		}
	}
	sort.Ints(duplicated)
	for _, idx := range duplicated {
		errs = append(errs, fmt.Sprintf("fields %s share column index %d",
			joinFields(byIndex[idx]), idx))
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// ParseManualMapping converts a plain field→index map (the JSON wire shape)
// into a ColumnMapping, rejecting unknown field names.
func ParseManualMapping(raw map[string]int) (model.ColumnMapping, error) {
	var mapping model.ColumnMapping
	known := make(map[model.Field]bool, len(model.AllFields))
	for _, f := range model.AllFields {
		known[f] = true
	}
	var unknown []string
	for name, idx := range raw {
		field := model.Field(name)
		if !known[field] {
			unknown = append(unknown, name)
			continue
		}
		mapping.Set(field, idx)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return model.ColumnMapping{}, fmt.Errorf("unknown mapping fields: %s", strings.Join(unknown, ", "))
	}
	return mapping, nil
}
