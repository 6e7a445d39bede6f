package model

// Field is a semantic column role within an uploaded sheet.
type Field string

const (
	FieldLP       Field = "lp"
	FieldItemID   Field = "itemId"
	FieldName     Field = "name"
	FieldQuantity Field = "quantity"
	FieldUnit     Field = "unit"
)

// AllFields lists every detectable field in mapping order.
var AllFields = []Field{FieldLP, FieldItemID, FieldName, FieldQuantity, FieldUnit}

// RequiredFields are the fields a mapping cannot do without.
var RequiredFields = []Field{FieldName, FieldQuantity, FieldUnit}

// ColumnMapping maps semantic fields to zero-based column indices within one
// sheet. lp and itemId are optional; nil means the sheet has no such column.
type ColumnMapping struct {
	LP       *int `json:"lp,omitempty"`
	ItemID   *int `json:"itemId,omitempty"`
	Name     *int `json:"name,omitempty"`
	Quantity *int `json:"quantity,omitempty"`
	Unit     *int `json:"unit,omitempty"`
}

// Index returns the mapped column index for a field, or nil if unmapped.
func (m *ColumnMapping) Index(field Field) *int {
	switch field {
	case FieldLP:
		return m.LP
	case FieldItemID:
		return m.ItemID
	case FieldName:
		return m.Name
	case FieldQuantity:
		return m.Quantity
	case FieldUnit:
		return m.Unit
	}
	return nil
}

// Set assigns a column index to a field.
func (m *ColumnMapping) Set(field Field, index int) {
	idx := index
	switch field {
	case FieldLP:
		m.LP = &idx
	case FieldItemID:
		m.ItemID = &idx
	case FieldName:
		m.Name = &idx
	case FieldQuantity:
		m.Quantity = &idx
	case FieldUnit:
		m.Unit = &idx
	}
}

// MaxIndex returns the largest column index referenced by the mapping,
// or -1 when nothing is mapped.
func (m *ColumnMapping) MaxIndex() int {
	max := -1
	for _, field := range AllFields {
		if idx := m.Index(field); idx != nil && *idx > max {
			max = *idx
		}
	}
	return max
}

// DetectionResult is the outcome of automatic column detection.
// Suggestions hold up to 3 runner-up column indices per field, best first,
// for manual disambiguation in the UI.
type DetectionResult struct {
	Mapping     ColumnMapping   `json:"mapping"`
	Confidence  float64         `json:"confidence"`
	Suggestions map[Field][]int `json:"suggestions,omitempty"`
}

// ExtractedRow is one raw sheet row coerced through a validated mapping.
// Never mutated after creation.
type ExtractedRow struct {
	LP       *int    `json:"lp,omitempty"`
	ItemID   string  `json:"itemId,omitempty"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// Key returns the aggregate identity of the row.
func (r *ExtractedRow) Key() AggregateKey {
	return AggregateKey{ItemID: r.ItemID, Name: r.Name, Unit: r.Unit}
}
