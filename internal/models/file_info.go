package models

import "time"

// FileStatus tracks an uploaded file through its lifecycle.
type FileStatus string

const (
	FileStatusUploaded   FileStatus = "uploaded"
	FileStatusProcessing FileStatus = "processing"
	FileStatusCompleted  FileStatus = "completed"
	FileStatusError      FileStatus = "error"
)

// UploadedFile represents metadata about an uploaded document.
// StoragePath is relative to the configured uploads directory and, once set,
// refers to a readable file until the batch orchestrator deletes it.
type UploadedFile struct {
	ID          string     `json:"id"`
	Name        string     `json:"fileName"`
	Size        int64      `json:"size"`
	Type        string     `json:"type"` // declared MIME type
	StoragePath string     `json:"filePath,omitempty"`
	UploadedAt  time.Time  `json:"uploadedAt"`
	Status      FileStatus `json:"status"`
}

// UploadOutcome is the per-file result of an upload request. Partial success
// is expected: a rejected file carries Error while the rest succeed.
type UploadOutcome struct {
	ID           string     `json:"id,omitempty"`
	FileName     string     `json:"fileName"`
	OriginalName string     `json:"originalName,omitempty"`
	Size         int64      `json:"size,omitempty"`
	Type         string     `json:"type,omitempty"`
	FilePath     string     `json:"filePath,omitempty"`
	Success      bool       `json:"success"`
	Error        string     `json:"error,omitempty"`
	UploadedAt   *time.Time `json:"uploadedAt,omitempty"`
}
