// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import "github.com/labstack/echo/v4"

// UploadHandler handles file upload and management operations
type UploadHandler interface {
	HandleUpload(c echo.Context) error
	HandleRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
}

// ProcessHandler handles document processing operations
type ProcessHandler interface {
	HandleProcess(c echo.Context) error
	HandleStartBatch(c echo.Context) error
	HandleBatchStatus(c echo.Context) error
	HandleBatchProgressStream(c echo.Context) error
}

// ResultsHandler handles dashboard result queries and exports
type ResultsHandler interface {
	HandleListResults(c echo.Context) error
	HandleResultsMsgpack(c echo.Context) error
	HandleGetResult(c echo.Context) error
	HandleDeleteResult(c echo.Context) error
	HandleExport(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
