// handlers_results.go - Dashboard result query and export handlers
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/docuscope/backend/internal/export"
	"github.com/docuscope/backend/internal/models"
	"github.com/docuscope/backend/internal/results"
)

// ResultsStore is the persistence surface the dashboard handlers need
type ResultsStore interface {
	List(q results.Query) ([]models.DocumentAnalysis, int, error)
	Get(id string) (*models.DocumentAnalysis, error)
	Delete(id string) error
	All() ([]models.DocumentAnalysis, error)
}

// ResultsHandlerImpl implements the ResultsHandler interface
type ResultsHandlerImpl struct {
	store  ResultsStore
	logger *slog.Logger
}

// NewResultsHandler creates a new results handler instance
func NewResultsHandler(store ResultsStore, logger *slog.Logger) ResultsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultsHandlerImpl{
		store:  store,
		logger: logger.With("component", "api"),
	}
}

type listResponse struct {
	Results []models.DocumentAnalysis `json:"results"`
	Total   int                       `json:"total"`
	Limit   int                       `json:"limit"`
	Offset  int                       `json:"offset"`
}

func queryFromRequest(c echo.Context) results.Query {
	q := results.Query{
		Sentiment: c.QueryParam("sentiment"),
		Search:    c.QueryParam("search"),
		SortBy:    c.QueryParam("sortBy"),
		Order:     c.QueryParam("order"),
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		q.Limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
		q.Offset = v
	}
	return q
}

// HandleListResults returns filtered, sorted, paginated analysis results
func (h *ResultsHandlerImpl) HandleListResults(c echo.Context) error {
	q := queryFromRequest(c)

	items, total, err := h.store.List(q)
	if err != nil {
		return NewInternalError("failed to query results", err)
	}
	if items == nil {
		items = []models.DocumentAnalysis{}
	}

	return c.JSON(http.StatusOK, listResponse{
		Results: items,
		Total:   total,
		Limit:   q.Limit,
		Offset:  q.Offset,
	})
}

// HandleResultsMsgpack returns the filtered result set as a msgpack blob for
// the dashboard grid. Much smaller than JSON for large result sets.
func (h *ResultsHandlerImpl) HandleResultsMsgpack(c echo.Context) error {
	q := queryFromRequest(c)

	items, total, err := h.store.List(q)
	if err != nil {
		return NewInternalError("failed to query results", err)
	}

	payload := map[string]interface{}{
		"results": items,
		"total":   total,
	}

	data, err := msgpack.Marshal(payload)
	if err != nil {
		return NewInternalError("failed to encode results", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleGetResult returns a single analysis record by ID
func (h *ResultsHandlerImpl) HandleGetResult(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	a, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("result", id)
	}
	return c.JSON(http.StatusOK, a)
}

// HandleDeleteResult removes a single analysis record
func (h *ResultsHandlerImpl) HandleDeleteResult(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("result", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleExport downloads the full result set in the requested format.
// Supported formats are json, csv and xlsx.
func (h *ResultsHandlerImpl) HandleExport(c echo.Context) error {
	format := c.Param("format")

	items, err := h.store.All()
	if err != nil {
		return NewInternalError("failed to load results", err)
	}
	if items == nil {
		items = []models.DocumentAnalysis{}
	}

	stamp := time.Now().Format("2006-01-02")

	var (
		data        []byte
		contentType string
		ext         string
	)

	switch format {
	case "json":
		data, err = export.JSON(items)
		contentType = "application/json"
		ext = "json"
	case "csv":
		data = export.CSV(items)
		contentType = "text/csv"
		ext = "csv"
	case "xlsx":
		data, err = export.XLSX(items)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		ext = "xlsx"
	default:
		return NewBadRequestError(fmt.Sprintf("unsupported export format: %s", format), nil)
	}
	if err != nil {
		return NewInternalError("failed to build export", err)
	}

	filename := fmt.Sprintf("analysis-results-%s.%s", stamp, ext)
	c.Response().Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	return c.Blob(http.StatusOK, contentType, data)
}
