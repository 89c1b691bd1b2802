// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/docuscope/backend/internal/batch"
	"github.com/docuscope/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store        storage.Store
	Orchestrator *batch.Orchestrator
	BatchMgr     *batch.Manager
	Results      ResultsStore
	Sink         batch.ResultSink
	TempMaxAge   time.Duration
	Version      string
	Logger       *slog.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Upload  UploadHandler
	Process ProcessHandler
	Results ResultsHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Version),
		Upload:  NewUploadHandler(deps.Store, deps.TempMaxAge, deps.Logger),
		Process: NewProcessHandler(deps.Orchestrator, deps.BatchMgr, deps.Sink, deps.Logger),
		Results: NewResultsHandler(deps.Results, deps.Logger),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	// File upload routes
	fileGroup := e.Group("/api/files")
	fileGroup.POST("/upload", handlers.Upload.HandleUpload)
	fileGroup.GET("/recent", handlers.Upload.HandleRecentFiles)
	fileGroup.GET("/:id", handlers.Upload.HandleGetFile)
	fileGroup.DELETE("/:id", handlers.Upload.HandleDeleteFile)

	// Analysis pipeline routes
	e.POST("/api/process", handlers.Process.HandleProcess)
	analyzeGroup := e.Group("/api/analyze")
	analyzeGroup.POST("", handlers.Process.HandleStartBatch)
	analyzeGroup.GET("/:jobId", handlers.Process.HandleBatchStatus)
	analyzeGroup.GET("/:jobId/progress", handlers.Process.HandleBatchProgressStream)

	// Dashboard result routes
	resultsGroup := e.Group("/api/results")
	resultsGroup.GET("", handlers.Results.HandleListResults)
	resultsGroup.GET("/msgpack", handlers.Results.HandleResultsMsgpack)
	resultsGroup.GET("/export/:format", handlers.Results.HandleExport)
	resultsGroup.GET("/:id", handlers.Results.HandleGetResult)
	resultsGroup.DELETE("/:id", handlers.Results.HandleDeleteResult)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}
