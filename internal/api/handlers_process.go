// handlers_process.go - Analysis pipeline operation handlers
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/docuscope/backend/internal/batch"
	"github.com/docuscope/backend/internal/models"
)

// ProcessHandlerImpl implements the ProcessHandler interface
type ProcessHandlerImpl struct {
	orchestrator *batch.Orchestrator
	manager      *batch.Manager
	sink         batch.ResultSink
	logger       *slog.Logger
}

// NewProcessHandler creates a new processing handler instance
func NewProcessHandler(orchestrator *batch.Orchestrator, manager *batch.Manager, sink batch.ResultSink, logger *slog.Logger) ProcessHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessHandlerImpl{
		orchestrator: orchestrator,
		manager:      manager,
		sink:         sink,
		logger:       logger.With("component", "api"),
	}
}

// processRequest describes one file to analyze. The fields mirror the upload
// outcome so clients can pass upload responses straight back.
type processRequest struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
	Type     string `json:"type"`
	Size     int64  `json:"size"`
}

type batchRequest struct {
	Files []processRequest `json:"files"`
}

type batchStartResponse struct {
	JobID  string       `json:"jobId"`
	Status batch.Status `json:"status"`
}

func (r processRequest) toFile() models.UploadedFile {
	return models.UploadedFile{
		ID:          r.ID,
		Name:        r.FileName,
		Size:        r.Size,
		Type:        r.Type,
		StoragePath: r.FilePath,
	}
}

// HandleProcess analyzes a single uploaded file synchronously and returns the
// completed analysis record. Unlike the batch path, which contains per-file
// failures as error records inside a larger result list, a failure here is
// the whole request and surfaces as HTTP 500.
func (h *ProcessHandlerImpl) HandleProcess(c echo.Context) error {
	var req processRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.ID == "" || req.FilePath == "" {
		return NewValidationError("id, filePath")
	}

	results, err := h.orchestrator.Run(c.Request().Context(), []models.UploadedFile{req.toFile()}, nil)
	if err != nil {
		return NewInternalError("processing failed", err)
	}

	analysis := results[0]
	if analysis.Sentiment == models.SentimentError && analysis.Confidence == 0 {
		return NewInternalError("processing failed", errors.New(analysis.Summary))
	}
	if h.sink != nil {
		if err := h.sink.Add(analysis); err != nil {
			h.logger.Error("process.persist_failed", "file_id", req.ID, "error", err)
		}
	}

	return c.JSON(http.StatusOK, analysis)
}

// HandleStartBatch launches asynchronous processing of a batch of files and
// returns 202 with the job ID for polling or streaming.
func (h *ProcessHandlerImpl) HandleStartBatch(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if len(req.Files) == 0 {
		return NewBadRequestError("no files provided", nil)
	}

	files := make([]models.UploadedFile, 0, len(req.Files))
	for _, f := range req.Files {
		if f.ID == "" || f.FilePath == "" {
			return NewValidationError("files[].id, files[].filePath")
		}
		files = append(files, f.toFile())
	}

	job := h.manager.StartJob(files)

	return c.JSON(http.StatusAccepted, batchStartResponse{JobID: job.ID, Status: job.Status})
}

// HandleBatchStatus returns the current snapshot of a batch job
func (h *ProcessHandlerImpl) HandleBatchStatus(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	job, ok := h.manager.GetJob(id)
	if !ok {
		return NewNotFoundError("job", id)
	}
	return c.JSON(http.StatusOK, job)
}

// HandleBatchProgressStream streams batch job snapshots over SSE until the
// job reaches a terminal status.
func (h *ProcessHandlerImpl) HandleBatchProgressStream(c echo.Context) error {
	id := c.Param("jobId")
	if id == "" {
		return NewValidationError("jobId")
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	job, ok := h.manager.GetJob(id)
	if !ok {
		h.sendSSEError(c, "job not found")
		return nil
	}

	h.sendSSEData(c, job)
	if job.Status != batch.StatusProcessing {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	timeout := time.NewTimer(5 * time.Minute)
	defer timeout.Stop()

	for {
		select {
		case <-ticker.C:
			job, ok := h.manager.GetJob(id)
			if !ok {
				h.sendSSEError(c, "job not found")
				return nil
			}

			h.sendSSEData(c, job)

			if job.Status != batch.StatusProcessing {
				return nil
			}

		case <-timeout.C:
			h.sendSSEError(c, "stream timeout")
			return nil

		case <-c.Request().Context().Done():
			return nil
		}
	}
}

func (h *ProcessHandlerImpl) sendSSEData(c echo.Context, data interface{}) {
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(c.Response(), "data: %s\n\n", jsonData)
	c.Response().Flush()
}

func (h *ProcessHandlerImpl) sendSSEError(c echo.Context, message string) {
	h.sendSSEData(c, map[string]string{"error": message})
}
