package parser

import (
	"strings"
	"testing"

	"github.com/Barczakson/inwentura-op-sub001/internal/model"
)

func TestValidate_ValidMapping(t *testing.T) {
	t.Parallel()

	result := Validate(fullMapping(), 5)
	if !result.IsValid || len(result.Errors) != 0 {
		t.Fatalf("want valid, got %+v", result)
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	t.Parallel()

	var m model.ColumnMapping
	m.Set(model.FieldName, 0)

	result := Validate(m, 3)
	if result.IsValid {
		t.Fatalf("want invalid")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("want exactly 2 errors, got %v", result.Errors)
	}
	joined := strings.Join(result.Errors, "\n")
	if !strings.Contains(joined, "missing required field: quantity") ||
		!strings.Contains(joined, "missing required field: unit") {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
}

func TestValidate_NegativeAndOutOfBoundsDistinct(t *testing.T) {
	t.Parallel()

	var m model.ColumnMapping
	m.Set(model.FieldName, -1)
	m.Set(model.FieldQuantity, 7)
	m.Set(model.FieldUnit, 2)

	result := Validate(m, 3)
	if result.IsValid {
		t.Fatalf("want invalid")
	}
	joined := strings.Join(result.Errors, "\n")
	if !strings.Contains(joined, "invalid negative index -1 for field name") {
		t.Fatalf("negative index not reported: %v", result.Errors)
	}
	if !strings.Contains(joined, "index 7 for field quantity is out of bounds (sheet has 3 columns)") {
		t.Fatalf("out-of-bounds not reported: %v", result.Errors)
	}
}

func TestValidate_DuplicateIndex(t *testing.T) {
	t.Parallel()

	var m model.ColumnMapping
	m.Set(model.FieldName, 1)
	m.Set(model.FieldQuantity, 1)
	m.Set(model.FieldUnit, 2)

	result := Validate(m, 3)
	if result.IsValid {
		t.Fatalf("want invalid")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("one error per duplicated index, got %v", result.Errors)
	}
	if !strings.Contains(result.Errors[0], "share column index 1") {
		t.Fatalf("unexpected error: %q", result.Errors[0])
	}
}

func TestValidate_AccumulatesAllProblems(t *testing.T) {
	t.Parallel()

	var m model.ColumnMapping
	m.Set(model.FieldLP, 5)
	m.Set(model.FieldName, 0)
	m.Set(model.FieldQuantity, 0)

	result := Validate(m, 3)
	// Missing unit, lp out of bounds, name/quantity collide.
	if len(result.Errors) != 3 {
		t.Fatalf("want 3 errors, got %v", result.Errors)
	}
}

func TestParseManualMapping(t *testing.T) {
	t.Parallel()

	mapping, err := ParseManualMapping(map[string]int{
		"name":     2,
		"quantity": 3,
		"unit":     4,
		"lp":       0,
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if idx := mapping.Index(model.FieldName); idx == nil || *idx != 2 {
		t.Fatalf("name: got %v", idx)
	}
	if mapping.ItemID != nil {
		t.Fatalf("itemId should be absent")
	}
}

func TestParseManualMapping_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := ParseManualMapping(map[string]int{"name": 0, "price": 1})
	if err == nil || !strings.Contains(err.Error(), "price") {
		t.Fatalf("want unknown-field error, got %v", err)
	}
}
