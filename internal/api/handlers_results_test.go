// handlers_results_test.go - Tests for dashboard result handlers
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/docuscope/backend/internal/models"
	"github.com/docuscope/backend/internal/results"
)

// mockResults implements ResultsStore
type mockResults struct {
	items     []models.DocumentAnalysis
	lastQuery results.Query
	listErr   error
}

func (m *mockResults) List(q results.Query) ([]models.DocumentAnalysis, int, error) {
	m.lastQuery = q
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.items, len(m.items), nil
}

func (m *mockResults) Get(id string) (*models.DocumentAnalysis, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			return &m.items[i], nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockResults) Delete(id string) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (m *mockResults) All() ([]models.DocumentAnalysis, error) {
	return m.items, nil
}

func sampleAnalyses() []models.DocumentAnalysis {
	return []models.DocumentAnalysis{
		{
			ID:         "r1",
			FileName:   "report.pdf",
			Sentiment:  models.SentimentPositive,
			Topics:     []string{"finance"},
			Summary:    "Good quarter",
			Confidence: 0.9,
			AnalyzedAt: time.Now(),
		},
		{
			ID:         "r2",
			FileName:   "memo.txt",
			Sentiment:  models.SentimentNeutral,
			Topics:     []string{},
			Summary:    "A memo",
			Confidence: 0.7,
			AnalyzedAt: time.Now(),
		},
	}
}

func getContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandleListResults(t *testing.T) {
	t.Run("returns results with pagination envelope", func(t *testing.T) {
		store := &mockResults{items: sampleAnalyses()}
		handler := NewResultsHandler(store, nil)

		c, rec := getContext(t, "/api/results?sentiment=Positive&search=quarter&sortBy=confidence&order=asc&limit=10&offset=5")

		if err := handler.HandleListResults(c); err != nil {
			t.Fatalf("HandleListResults failed: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp listResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
		if resp.Total != 2 || len(resp.Results) != 2 {
			t.Errorf("unexpected envelope: total=%d results=%d", resp.Total, len(resp.Results))
		}

		q := store.lastQuery
		if q.Sentiment != "Positive" || q.Search != "quarter" ||
			q.SortBy != "confidence" || q.Order != "asc" ||
			q.Limit != 10 || q.Offset != 5 {
			t.Errorf("query params not forwarded: %+v", q)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		handler := NewResultsHandler(&mockResults{listErr: errors.New("db down")}, nil)

		c, _ := getContext(t, "/api/results")

		err := handler.HandleListResults(c)
		apiErr, ok := err.(*APIError)
		if !ok || apiErr.Status != http.StatusInternalServerError {
			t.Fatalf("expected 500 APIError, got %v", err)
		}
	})
}

func TestHandleResultsMsgpack(t *testing.T) {
	handler := NewResultsHandler(&mockResults{items: sampleAnalyses()}, nil)

	c, rec := getContext(t, "/api/results/msgpack")

	if err := handler.HandleResultsMsgpack(c); err != nil {
		t.Fatalf("HandleResultsMsgpack failed: %v", err)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/msgpack" {
		t.Errorf("unexpected content type: %q", ct)
	}

	var payload map[string]any
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("body is not valid msgpack: %v", err)
	}
	if _, ok := payload["results"]; !ok {
		t.Error("expected results key in payload")
	}
}

func TestHandleGetResult(t *testing.T) {
	handler := NewResultsHandler(&mockResults{items: sampleAnalyses()}, nil)
	e := echo.New()

	t.Run("existing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("r1")

		if err := handler.HandleGetResult(c); err != nil {
			t.Fatalf("HandleGetResult failed: %v", err)
		}

		var a models.DocumentAnalysis
		json.Unmarshal(rec.Body.Bytes(), &a)
		if a.FileName != "report.pdf" {
			t.Errorf("unexpected record: %+v", a)
		}
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("nope")

		err := handler.HandleGetResult(c)
		apiErr, ok := err.(*APIError)
		if !ok || apiErr.Status != http.StatusNotFound {
			t.Fatalf("expected 404 APIError, got %v", err)
		}
	})
}

func TestHandleDeleteResult(t *testing.T) {
	store := &mockResults{items: sampleAnalyses()}
	handler := NewResultsHandler(store, nil)
	e := echo.New()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("r1")

	if err := handler.HandleDeleteResult(c); err != nil {
		t.Fatalf("HandleDeleteResult failed: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if len(store.items) != 1 {
		t.Errorf("expected 1 remaining record, got %d", len(store.items))
	}
}

func TestHandleExport(t *testing.T) {
	store := &mockResults{items: sampleAnalyses()}
	handler := NewResultsHandler(store, nil)
	e := echo.New()

	exportContext := func(format string) (echo.Context, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("format")
		c.SetParamValues(format)
		return c, rec
	}

	t.Run("json", func(t *testing.T) {
		c, rec := exportContext("json")
		if err := handler.HandleExport(c); err != nil {
			t.Fatalf("HandleExport failed: %v", err)
		}

		var decoded []models.DocumentAnalysis
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("body is not valid JSON: %v", err)
		}
		if len(decoded) != 2 {
			t.Errorf("expected 2 records, got %d", len(decoded))
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, ".json") {
			t.Errorf("unexpected disposition: %q", cd)
		}
	})

	t.Run("csv", func(t *testing.T) {
		c, rec := exportContext("csv")
		if err := handler.HandleExport(c); err != nil {
			t.Fatalf("HandleExport failed: %v", err)
		}
		if !strings.HasPrefix(rec.Body.String(), `"File Name"`) {
			t.Errorf("unexpected csv body: %q", rec.Body.String()[:40])
		}
		if ct := rec.Header().Get(echo.HeaderContentType); ct != "text/csv" {
			t.Errorf("unexpected content type: %q", ct)
		}
	})

	t.Run("xlsx", func(t *testing.T) {
		c, rec := exportContext("xlsx")
		if err := handler.HandleExport(c); err != nil {
			t.Fatalf("HandleExport failed: %v", err)
		}
		// XLSX files are ZIP archives
		if body := rec.Body.Bytes(); len(body) < 4 || body[0] != 'P' || body[1] != 'K' {
			t.Error("expected ZIP magic in xlsx export")
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		c, _ := exportContext("pdf")
		err := handler.HandleExport(c)
		apiErr, ok := err.(*APIError)
		if !ok || apiErr.Status != http.StatusBadRequest {
			t.Fatalf("expected 400 APIError, got %v", err)
		}
	})
}
