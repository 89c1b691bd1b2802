package models

import "time"

// Sentiment labels are free-form strings from the model; these are the
// conventional values plus the synthesized error label.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
	SentimentMixed    = "Mixed"
	SentimentError    = "Error"
)

// DocumentAnalysis is the immutable per-document result record. The batch
// orchestrator creates exactly one per input file, either from a successful
// analysis or synthesized from a failure.
type DocumentAnalysis struct {
	ID           string    `json:"id"`
	FileName     string    `json:"fileName"`
	FileType     string    `json:"fileType"`
	ProcessingMs int64     `json:"processingTimeMs"`
	TextPreview  string    `json:"textPreview"` // truncated, not full content
	WordCount    int       `json:"wordCount"`
	PageCount    int       `json:"pageCount,omitempty"`
	Sentiment    string    `json:"sentiment"`
	Topics       []string  `json:"topics"`
	Summary      string    `json:"summary"`
	Entities     []string  `json:"entities"`
	KeyInsights  []string  `json:"keyInsights"`
	Confidence   float64   `json:"confidence"` // [0,1]
	AnalyzedAt   time.Time `json:"analyzedAt"`
}

// ErrorAnalysis synthesizes the error record for a failed file: confidence 0,
// sentiment "Error", summary holding the failure message.
func ErrorAnalysis(file UploadedFile, errMsg string, elapsed time.Duration) DocumentAnalysis {
	return DocumentAnalysis{
		ID:           file.ID,
		FileName:     file.Name,
		FileType:     file.Type,
		ProcessingMs: elapsed.Milliseconds(),
		Sentiment:    SentimentError,
		Topics:       []string{},
		Summary:      errMsg,
		Entities:     []string{},
		KeyInsights:  []string{},
		Confidence:   0,
		AnalyzedAt:   time.Now(),
	}
}
