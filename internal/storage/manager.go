package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docuscope/backend/internal/models"
)

// MIME types accepted at upload.
const (
	TypePDF  = "application/pdf"
	TypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypeDOC  = "application/msword"
	TypeTXT  = "text/plain"
)

var allowedTypes = map[string]struct{}{
	TypePDF:  {},
	TypeDOCX: {},
	TypeDOC:  {},
	TypeTXT:  {},
}

var extensionTypes = map[string]string{
	".pdf":  TypePDF,
	".docx": TypeDOCX,
	".doc":  TypeDOC,
	".txt":  TypeTXT,
}

// ValidationError describes a per-file upload rejection. It is never batch-fatal.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Store defines the interface for upload storage.
type Store interface {
	SaveUpload(name, declaredType string, size int64, r io.Reader) (*models.UploadedFile, error)
	Get(id string) (*models.UploadedFile, error)
	List(limit int) ([]*models.UploadedFile, error)
	Delete(id string) error
	SetStatus(id string, status models.FileStatus)
	ResolvePath(relPath string) string
	Sweep(maxAge time.Duration) int
}

// LocalStore implements Store using the local filesystem. Files are persisted
// under the uploads directory as "<uuid><original-extension>".
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
	maxSize   int64
	files     map[string]*models.UploadedFile
	logger    *slog.Logger
}

// NewLocalStore creates a LocalStore rooted at uploadDir. maxSize caps the
// accepted file size in bytes.
func NewLocalStore(uploadDir string, maxSize int64, logger *slog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalStore{
		uploadDir: uploadDir,
		maxSize:   maxSize,
		files:     make(map[string]*models.UploadedFile),
		logger:    logger.With("component", "storage"),
	}, nil
}

// NormalizeType resolves the effective MIME type for a file, falling back to
// the extension when the declared type is missing or generic.
func NormalizeType(name, declaredType string) string {
	t := strings.TrimSpace(declaredType)
	if t == "" || t == "application/octet-stream" {
		if byExt, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
			return byExt
		}
	}
	return t
}

// SaveUpload validates and persists one uploaded file. Validation failures
// return *ValidationError with a human-readable reason; they reject only this
// file, never the batch.
func (s *LocalStore) SaveUpload(name, declaredType string, size int64, r io.Reader) (*models.UploadedFile, error) {
	if size > s.maxSize {
		return nil, &ValidationError{Reason: fmt.Sprintf("file exceeds maximum size of %d bytes", s.maxSize)}
	}

	mimeType := NormalizeType(name, declaredType)
	if _, ok := allowedTypes[mimeType]; !ok {
		return nil, &ValidationError{Reason: fmt.Sprintf("unsupported file type: %s", declaredType)}
	}

	id := uuid.New().String()
	storageName := id + filepath.Ext(name)
	path := filepath.Join(s.uploadDir, storageName)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}
	if written > s.maxSize {
		os.Remove(path)
		return nil, &ValidationError{Reason: fmt.Sprintf("file exceeds maximum size of %d bytes", s.maxSize)}
	}

	info := &models.UploadedFile{
		ID:          id,
		Name:        name,
		Size:        written,
		Type:        mimeType,
		StoragePath: storageName,
		UploadedAt:  time.Now(),
		Status:      models.FileStatusUploaded,
	}

	s.mu.Lock()
	s.files[id] = info
	s.mu.Unlock()

	return info, nil
}

// Get retrieves file metadata by ID.
func (s *LocalStore) Get(id string) (*models.UploadedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}
	return info, nil
}

// List returns the most recently uploaded files.
func (s *LocalStore) List(limit int) ([]*models.UploadedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*models.UploadedFile
	for _, info := range s.files {
		list = append(list, info)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Delete removes a file's storage entry and metadata. After deletion the
// storage path is dangling and must not be reused.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, ok := s.files[id]
	if !ok {
		return fmt.Errorf("file not found: %s", id)
	}

	path := filepath.Join(s.uploadDir, info.StoragePath)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}

	delete(s.files, id)
	return nil
}

// SetStatus updates a file's lifecycle status.
func (s *LocalStore) SetStatus(id string, status models.FileStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if info, ok := s.files[id]; ok {
		info.Status = status
	}
}

// ResolvePath returns the absolute path for a storage-relative path.
func (s *LocalStore) ResolvePath(relPath string) string {
	return filepath.Join(s.uploadDir, relPath)
}

// Sweep deletes temp files whose modification time is older than maxAge.
// Failures are logged and swallowed; cleanup is best-effort. Returns the
// number of files removed.
func (s *LocalStore) Sweep(maxAge time.Duration) int {
	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		s.logger.Warn("storage.sweep.read_dir_failed", "error", err)
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			s.logger.Warn("storage.sweep.stat_failed", "name", entry.Name(), "error", err)
			continue
		}
		if !fi.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.uploadDir, entry.Name())); err != nil {
			s.logger.Warn("storage.sweep.remove_failed", "name", entry.Name(), "error", err)
			continue
		}
		removed++
		s.dropMetadataFor(entry.Name())
	}

	if removed > 0 {
		s.logger.Info("storage.sweep.done", "removed", removed)
	}
	return removed
}

// dropMetadataFor forgets the metadata entry whose storage name matches.
func (s *LocalStore) dropMetadataFor(storageName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, info := range s.files {
		if info.StoragePath == storageName {
			delete(s.files, id)
			return
		}
	}
}
