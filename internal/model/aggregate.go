package model

import "time"

// AggregateKey identifies "the same item" across rows and files.
// ItemID is empty when the source sheet has no index column; Name and Unit
// are compared exactly as normalized (trimmed, unit lower-cased).
type AggregateKey struct {
	ItemID string `json:"itemId"`
	Name   string `json:"name"`
	Unit   string `json:"unit"`
}

// AggregateRecord is the persisted running total for one aggregate key.
// Quantity and Count only ever grow; SourceFiles is a set of contributing
// upload identifiers.
type AggregateRecord struct {
	ID          int64     `json:"id"`
	ItemID      string    `json:"itemId,omitempty"`
	Name        string    `json:"name"`
	Unit        string    `json:"unit"`
	Quantity    float64   `json:"quantity"`
	Count       int       `json:"count"`
	SourceFiles []string  `json:"sourceFiles"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Key returns the record's aggregate identity.
func (r *AggregateRecord) Key() AggregateKey {
	return AggregateKey{ItemID: r.ItemID, Name: r.Name, Unit: r.Unit}
}

// ItemRow is a persisted raw contribution: one extracted row tied to the
// upload it came from. Kept as the audit trail behind every aggregate.
type ItemRow struct {
	ID       int64   `json:"id"`
	FileID   string  `json:"fileId"`
	RowNo    int     `json:"rowNo"`
	LP       *int    `json:"lp,omitempty"`
	ItemID   string  `json:"itemId,omitempty"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}
