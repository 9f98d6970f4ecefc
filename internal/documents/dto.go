package documents

import (
	"time"

	"docsum-backend/internal/textclean"
)

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	FileName    string     `json:"fileName"`
	FileURL     string     `json:"fileUrl"`
	Summary     string     `json:"summary"`
	Preview     string     `json:"preview"`
	AudioURL    string     `json:"audioUrl,omitempty"`
	Status      Status     `json:"status"`
	UploadedAt  time.Time  `json:"uploadedAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

// DocumentListItem is a document without its summary, used by listings.
type DocumentListItem struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	FileName    string     `json:"fileName"`
	FileURL     string     `json:"fileUrl"`
	AudioURL    string     `json:"audioUrl,omitempty"`
	Status      Status     `json:"status"`
	UploadedAt  time.Time  `json:"uploadedAt"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
}

type fileDescriptor struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type createRequest struct {
	File *fileDescriptor `json:"file"`
	Data string          `json:"data"`
}

type processRequest struct {
	File *fileDescriptor `json:"file"`
}

type updateAudioRequest struct {
	AudioURL string `json:"audioUrl"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:          doc.ID,
		UserID:      doc.UserID,
		FileName:    doc.FileName,
		FileURL:     doc.FileURL,
		Summary:     doc.Summary,
		Preview:     textclean.Preview(doc.Summary, textclean.PreviewChars),
		AudioURL:    doc.AudioURL,
		Status:      doc.Status,
		UploadedAt:  doc.UploadedAt,
		ProcessedAt: doc.ProcessedAt,
	}
}

func toListItem(doc Document) DocumentListItem {
	return DocumentListItem{
		ID:          doc.ID,
		UserID:      doc.UserID,
		FileName:    doc.FileName,
		FileURL:     doc.FileURL,
		AudioURL:    doc.AudioURL,
		Status:      doc.Status,
		UploadedAt:  doc.UploadedAt,
		ProcessedAt: doc.ProcessedAt,
	}
}
