package documents

import "time"

// Status tracks where a document is in the summarization pipeline.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusError:
		return true
	}
	return false
}

// Document is an uploaded PDF with its generated summary and narration.
type Document struct {
	ID          string
	UserID      string
	FileName    string
	FileURL     string
	Summary     string
	AudioURL    string
	Status      Status
	UploadedAt  time.Time
	ProcessedAt *time.Time
}
