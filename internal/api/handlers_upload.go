// handlers_upload.go - File upload operation handlers
package api

import (
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/docuscope/backend/internal/models"
	"github.com/docuscope/backend/internal/storage"
)

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	store      storage.Store
	tempMaxAge time.Duration
	logger     *slog.Logger
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(store storage.Store, tempMaxAge time.Duration, logger *slog.Logger) UploadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadHandlerImpl{
		store:      store,
		tempMaxAge: tempMaxAge,
		logger:     logger.With("component", "api"),
	}
}

// uploadResponse is the multipart upload envelope. Partial success is not an
// overall error: rejected files carry per-file error strings.
type uploadResponse struct {
	Success bool                   `json:"success"`
	Files   []models.UploadOutcome `json:"files"`
}

// HandleUpload accepts multipart form data with repeated "files" fields and
// persists each valid file to temp storage. Stale temp files are swept first.
func (h *UploadHandlerImpl) HandleUpload(c echo.Context) error {
	h.store.Sweep(h.tempMaxAge)

	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("failed to read multipart form", err)
	}

	files := form.File["files"]
	if len(files) == 0 {
		return NewBadRequestError("no files provided", nil)
	}

	outcomes := make([]models.UploadOutcome, 0, len(files))
	for _, fh := range files {
		outcomes = append(outcomes, h.saveOne(fh))
	}

	return c.JSON(http.StatusOK, uploadResponse{Success: true, Files: outcomes})
}

// saveOne validates and stores a single multipart file, converting any
// failure into a per-file outcome record.
func (h *UploadHandlerImpl) saveOne(fh *multipart.FileHeader) models.UploadOutcome {
	src, err := fh.Open()
	if err != nil {
		h.logger.Error("upload.open_failed", "file_name", fh.Filename, "error", err)
		return models.UploadOutcome{
			FileName: fh.Filename,
			Success:  false,
			Error:    "failed to read uploaded file",
		}
	}
	defer src.Close()

	info, err := h.store.SaveUpload(fh.Filename, fh.Header.Get("Content-Type"), fh.Size, src)
	if err != nil {
		h.logger.Warn("upload.rejected", "file_name", fh.Filename, "error", err)
		return models.UploadOutcome{
			FileName: fh.Filename,
			Success:  false,
			Error:    err.Error(),
		}
	}

	uploadedAt := info.UploadedAt
	return models.UploadOutcome{
		ID:           info.ID,
		FileName:     info.Name,
		OriginalName: fh.Filename,
		Size:         info.Size,
		Type:         info.Type,
		FilePath:     info.StoragePath,
		Success:      true,
		UploadedAt:   &uploadedAt,
	}
}

// HandleRecentFiles returns a list of recently uploaded documents
func (h *UploadHandlerImpl) HandleRecentFiles(c echo.Context) error {
	files, err := h.store.List(20)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}
	if files == nil {
		files = []*models.UploadedFile{}
	}
	return c.JSON(http.StatusOK, files)
}

// HandleGetFile returns metadata for a specific file
func (h *UploadHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	return c.JSON(http.StatusOK, info)
}

// HandleDeleteFile deletes a file from temp storage
func (h *UploadHandlerImpl) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("file", id)
	}
	return c.NoContent(http.StatusNoContent)
}
