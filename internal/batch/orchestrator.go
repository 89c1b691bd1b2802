// Package batch runs the per-file document pipeline sequentially and tracks
// asynchronous batch jobs.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docuscope/backend/internal/models"
)

// Progress checkpoints emitted per file. The sequence is fixed; checkpoints
// mark real stage boundaries, not measured progress.
const (
	checkpointInit      = 10
	checkpointExtract   = 25
	checkpointExtracted = 50
	checkpointAnalyze   = 75
	checkpointDone      = 100
)

// Extractor converts a stored file to plain text.
type Extractor interface {
	ExtractFile(path, mimeType string) (string, error)
}

// Analyzer produces a DocumentAnalysis from extracted text.
type Analyzer interface {
	Analyze(ctx context.Context, file models.UploadedFile, text string) (models.DocumentAnalysis, error)
}

// FileStore is the slice of the storage layer the orchestrator needs.
type FileStore interface {
	ResolvePath(relPath string) string
	Delete(id string) error
	SetStatus(id string, status models.FileStatus)
}

// ProgressFunc observes per-file progress updates during a run.
type ProgressFunc func(models.ProcessingProgress)

// Orchestrator processes batches strictly sequentially: one extraction and
// one model call at a time, keeping progress deterministic and the external
// API load bounded without an explicit rate limiter.
type Orchestrator struct {
	extractor Extractor
	analyzer  Analyzer
	store     FileStore
	logger    *slog.Logger

	// pacing delay between checkpoints, cosmetic only; 0 disables
	progressDelay time.Duration
}

// NewOrchestrator creates a batch orchestrator. progressDelay inserts a
// cosmetic pause between progress checkpoints for UI pacing; the pipeline
// itself never needs it.
func NewOrchestrator(extractor Extractor, analyzer Analyzer, store FileStore, progressDelay time.Duration, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		extractor:     extractor,
		analyzer:      analyzer,
		store:         store,
		logger:        logger.With("component", "batch"),
		progressDelay: progressDelay,
	}
}

// Run processes the files in input order and returns one DocumentAnalysis per
// input, in the same order. Per-file failures are contained: they become
// error records and never abort the rest of the batch. The only failing path
// is descriptor validation before the loop, which returns no results.
func (o *Orchestrator) Run(ctx context.Context, files []models.UploadedFile, onProgress ProgressFunc) ([]models.DocumentAnalysis, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("batch contains no files")
	}
	for i, f := range files {
		if f.ID == "" || f.StoragePath == "" {
			return nil, fmt.Errorf("file %d: missing id or storage path", i)
		}
	}
	if onProgress == nil {
		onProgress = func(models.ProcessingProgress) {}
	}

	results := make([]models.DocumentAnalysis, 0, len(files))
	for _, file := range files {
		results = append(results, o.processFile(ctx, file, onProgress))
	}

	return results, nil
}

// processFile runs one file through extract and analyze, converting any
// failure into an error record. The temp storage entry is deleted regardless
// of outcome.
func (o *Orchestrator) processFile(ctx context.Context, file models.UploadedFile, onProgress ProgressFunc) models.DocumentAnalysis {
	start := time.Now()

	defer func() {
		if err := o.store.Delete(file.ID); err != nil {
			o.logger.Warn("batch.cleanup_failed", "file_id", file.ID, "error", err)
		}
	}()

	emit := func(progress float64, status, message string) {
		onProgress(models.ProcessingProgress{
			FileID:   file.ID,
			Progress: progress,
			Status:   status,
			Message:  message,
		})
		o.pause(ctx)
	}

	emit(checkpointInit, "Initializing…", "")
	o.store.SetStatus(file.ID, models.FileStatusProcessing)
	emit(checkpointExtract, "Processing…", "Extracting text")

	text, err := o.extractor.ExtractFile(o.store.ResolvePath(file.StoragePath), file.Type)
	if err != nil {
		return o.failFile(file, err, start, onProgress)
	}
	emit(checkpointExtracted, "Processing…", "Text extracted")

	emit(checkpointAnalyze, "Processing…", "Analyzing content")
	result, err := o.analyzer.Analyze(ctx, file, text)
	if err != nil {
		return o.failFile(file, err, start, onProgress)
	}

	o.store.SetStatus(file.ID, models.FileStatusCompleted)
	onProgress(models.ProcessingProgress{
		FileID:   file.ID,
		Progress: checkpointDone,
		Status:   "Completed",
	})

	return result
}

// failFile converts a per-file failure into an error record with confidence 0
// and the failure message as the summary.
func (o *Orchestrator) failFile(file models.UploadedFile, err error, start time.Time, onProgress ProgressFunc) models.DocumentAnalysis {
	o.logger.Error("batch.file_failed", "file_id", file.ID, "file_name", file.Name, "error", err)

	o.store.SetStatus(file.ID, models.FileStatusError)
	onProgress(models.ProcessingProgress{
		FileID:   file.ID,
		Progress: checkpointDone,
		Status:   "Error",
		Message:  err.Error(),
	})

	return models.ErrorAnalysis(file, err.Error(), time.Since(start))
}

// pause sleeps the cosmetic pacing delay, cut short by context cancelation.
func (o *Orchestrator) pause(ctx context.Context) {
	if o.progressDelay <= 0 {
		return
	}
	select {
	case <-time.After(o.progressDelay):
	case <-ctx.Done():
	}
}
