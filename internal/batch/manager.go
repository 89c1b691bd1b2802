package batch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docuscope/backend/internal/models"
)

// Status represents the state of a batch job.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Job is the snapshot of an asynchronous batch run. FileProgress is keyed by
// file ID and holds the latest checkpoint for each file.
type Job struct {
	ID           string                               `json:"id"`
	Status       Status                               `json:"status"`
	FileCount    int                                  `json:"fileCount"`
	FileProgress map[string]models.ProcessingProgress `json:"fileProgress"`
	Results      []models.DocumentAnalysis            `json:"results,omitempty"`
	Error        string                               `json:"error,omitempty"`
	CreatedAt    time.Time                            `json:"createdAt"`
	CompletedAt  *time.Time                           `json:"completedAt,omitempty"`
}

// ResultSink receives completed analyses, e.g. the dashboard results store.
type ResultSink interface {
	Add(analysis models.DocumentAnalysis) error
}

// Manager runs batch jobs asynchronously and keeps their snapshots for the
// progress endpoints.
type Manager struct {
	mu           sync.RWMutex
	jobs         map[string]*Job
	orchestrator *Orchestrator
	sink         ResultSink
	logger       *slog.Logger
}

// NewManager creates a batch job manager. sink may be nil when results are
// not persisted anywhere.
func NewManager(orchestrator *Orchestrator, sink ResultSink, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		jobs:         make(map[string]*Job),
		orchestrator: orchestrator,
		sink:         sink,
		logger:       logger.With("component", "batch"),
	}
}

// StartJob begins asynchronous processing of a batch and returns its initial
// snapshot.
func (m *Manager) StartJob(files []models.UploadedFile) *Job {
	job := &Job{
		ID:           uuid.New().String(),
		Status:       StatusProcessing,
		FileCount:    len(files),
		FileProgress: make(map[string]models.ProcessingProgress, len(files)),
		CreatedAt:    time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	go m.runJob(job.ID, files)

	return m.snapshot(job.ID)
}

// GetJob retrieves a copy of a job snapshot by ID.
func (m *Manager) GetJob(id string) (*Job, bool) {
	job := m.snapshot(id)
	return job, job != nil
}

func (m *Manager) runJob(jobID string, files []models.UploadedFile) {
	m.logger.Info("batch.job.start", "job_id", jobID, "files", len(files))

	results, err := m.orchestrator.Run(context.Background(), files, func(p models.ProcessingProgress) {
		m.mu.Lock()
		if job, ok := m.jobs[jobID]; ok {
			job.FileProgress[p.FileID] = p
		}
		m.mu.Unlock()
	})

	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return
	}
	job.CompletedAt = &now

	if err != nil {
		job.Status = StatusError
		job.Error = err.Error()
		m.logger.Error("batch.job.failed", "job_id", jobID, "error", err)
		return
	}

	job.Status = StatusComplete
	job.Results = results
	m.logger.Info("batch.job.done", "job_id", jobID, "results", len(results))

	if m.sink != nil {
		for _, r := range results {
			if sinkErr := m.sink.Add(r); sinkErr != nil {
				m.logger.Warn("batch.job.sink_failed", "job_id", jobID, "result_id", r.ID, "error", sinkErr)
			}
		}
	}
}

// snapshot returns a deep copy safe to marshal while the job keeps updating.
func (m *Manager) snapshot(id string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil
	}

	dup := *job
	dup.FileProgress = make(map[string]models.ProcessingProgress, len(job.FileProgress))
	for k, v := range job.FileProgress {
		dup.FileProgress[k] = v
	}
	dup.Results = append([]models.DocumentAnalysis(nil), job.Results...)
	return &dup
}

// CleanupOldJobs removes finished jobs older than maxAge.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for id, job := range m.jobs {
		if job.Status == StatusProcessing {
			continue
		}
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
		}
	}
}
