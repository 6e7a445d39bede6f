package model

import "time"

// Upload statuses.
const (
	UploadStatusProcessing = "processing"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)

// UploadFile is the persisted record of one uploaded spreadsheet.
type UploadFile struct {
	ID            string     `json:"id"`
	Filename      string     `json:"filename"`
	Size          int64      `json:"size"`
	Status        string     `json:"status"`
	TotalRows     int        `json:"totalRows"`
	ExtractedRows int        `json:"extractedRows"`
	RejectedRows  int        `json:"rejectedRows"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}
