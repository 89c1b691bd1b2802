package models

// ProcessingProgress is the transient per-file status emitted during a batch
// run. It exists only for UI feedback and is never persisted.
type ProcessingProgress struct {
	FileID   string  `json:"fileId"`
	Progress float64 `json:"progress"` // 0-100
	Status   string  `json:"status"`
	Message  string  `json:"message,omitempty"`
}
