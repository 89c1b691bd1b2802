// manager_test.go - Tests for asynchronous batch job tracking
package batch

import (
	"sync"
	"testing"
	"time"

	"github.com/docuscope/backend/internal/models"
)

// recordingSink implements ResultSink
type recordingSink struct {
	mu      sync.Mutex
	results []models.DocumentAnalysis
}

func (s *recordingSink) Add(a models.DocumentAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, a)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func waitForTerminal(t *testing.T, m *Manager, id string) *Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := m.GetJob(id)
		if !ok {
			t.Fatalf("job %s disappeared", id)
		}
		if job.Status != StatusProcessing {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never finished", id)
	return nil
}

func newTestManager(sink ResultSink) *Manager {
	o := NewOrchestrator(&fakeExtractor{}, &fakeAnalyzer{}, newFakeStore(), 0, nil)
	return NewManager(o, sink, nil)
}

func TestStartJob(t *testing.T) {
	sink := &recordingSink{}
	m := newTestManager(sink)

	job := m.StartJob(testFiles(2))
	if job.ID == "" {
		t.Fatal("expected job ID")
	}
	if job.FileCount != 2 {
		t.Errorf("expected file count 2, got %d", job.FileCount)
	}

	done := waitForTerminal(t, m, job.ID)
	if done.Status != StatusComplete {
		t.Fatalf("expected complete, got %q (error: %s)", done.Status, done.Error)
	}
	if len(done.Results) != 2 {
		t.Errorf("expected 2 results, got %d", len(done.Results))
	}
	if done.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
	if sink.count() != 2 {
		t.Errorf("expected 2 results in sink, got %d", sink.count())
	}

	for _, f := range []string{"id-0", "id-1"} {
		p, ok := done.FileProgress[f]
		if !ok {
			t.Errorf("missing progress for %s", f)
			continue
		}
		if p.Progress != 100 {
			t.Errorf("file %s: expected final progress 100, got %v", f, p.Progress)
		}
	}
}

func TestStartJobValidationFailure(t *testing.T) {
	m := newTestManager(nil)

	files := testFiles(1)
	files[0].StoragePath = ""

	job := m.StartJob(files)
	done := waitForTerminal(t, m, job.ID)

	if done.Status != StatusError {
		t.Fatalf("expected error status, got %q", done.Status)
	}
	if done.Error == "" {
		t.Error("expected error message on job")
	}
	if len(done.Results) != 0 {
		t.Errorf("expected no results, got %d", len(done.Results))
	}
}

func TestGetJobUnknown(t *testing.T) {
	m := newTestManager(nil)

	if _, ok := m.GetJob("nope"); ok {
		t.Error("expected GetJob to miss for unknown id")
	}
}

func TestGetJobReturnsCopy(t *testing.T) {
	m := newTestManager(nil)

	job := m.StartJob(testFiles(1))
	waitForTerminal(t, m, job.ID)

	a, _ := m.GetJob(job.ID)
	a.FileProgress["id-0"] = models.ProcessingProgress{Progress: 1}
	a.Status = StatusError

	b, _ := m.GetJob(job.ID)
	if b.Status == StatusError {
		t.Error("mutating a snapshot must not affect the stored job")
	}
	if p := b.FileProgress["id-0"]; p.Progress == 1 {
		t.Error("mutating a snapshot's progress map must not affect the stored job")
	}
}

func TestCleanupOldJobs(t *testing.T) {
	m := newTestManager(nil)

	job := m.StartJob(testFiles(1))
	waitForTerminal(t, m, job.ID)

	m.CleanupOldJobs(time.Hour)
	if _, ok := m.GetJob(job.ID); !ok {
		t.Error("recent job must survive cleanup")
	}

	m.CleanupOldJobs(0)
	if _, ok := m.GetJob(job.ID); ok {
		t.Error("expected finished job to be removed")
	}
}
