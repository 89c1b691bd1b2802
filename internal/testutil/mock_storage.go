// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/docuscope/backend/internal/models"
	"github.com/docuscope/backend/internal/storage"
)

// MockStorage implements storage.Store for testing
type MockStorage struct {
	mu       sync.RWMutex
	files    map[string]*models.UploadedFile
	fileData map[string][]byte
	nextID   int

	// SaveErr forces SaveUpload to fail when set
	SaveErr error
	// SweepCount records how many times Sweep was called
	SweepCount int
	// Deleted records the IDs passed to Delete
	Deleted []string
}

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		files:    make(map[string]*models.UploadedFile),
		fileData: make(map[string][]byte),
	}
}

func (m *MockStorage) SaveUpload(name, declaredType string, size int64, r io.Reader) (*models.UploadedFile, error) {
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := fmt.Sprintf("mock-%d", m.nextID)
	file := &models.UploadedFile{
		ID:          id,
		Name:        name,
		Size:        int64(len(data)),
		Type:        declaredType,
		StoragePath: "uploads/" + id,
		UploadedAt:  time.Now(),
		Status:      models.FileStatusUploaded,
	}

	m.files[id] = file
	m.fileData[id] = data
	return file, nil
}

func (m *MockStorage) Get(id string) (*models.UploadedFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, ok := m.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}
	cp := *file
	return &cp, nil
}

func (m *MockStorage) List(limit int) ([]*models.UploadedFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]*models.UploadedFile, 0, len(m.files))
	for _, f := range m.files {
		cp := *f
		files = append(files, &cp)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].UploadedAt.After(files[j].UploadedAt)
	})
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return fmt.Errorf("file not found: %s", id)
	}
	delete(m.files, id)
	delete(m.fileData, id)
	m.Deleted = append(m.Deleted, id)
	return nil
}

func (m *MockStorage) SetStatus(id string, status models.FileStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.files[id]; ok {
		f.Status = status
	}
}

func (m *MockStorage) ResolvePath(relPath string) string {
	return relPath
}

func (m *MockStorage) Sweep(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SweepCount++
	return 0
}

// Data returns the raw bytes stored for a file ID
func (m *MockStorage) Data(id string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fileData[id]
}

var _ storage.Store = (*MockStorage)(nil)
