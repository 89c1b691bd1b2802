// Package results stores completed document analyses in DuckDB for the
// dashboard's sort/filter queries and exports.
package results

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/docuscope/backend/internal/models"
)

// Query selects and orders analyses for the dashboard.
type Query struct {
	Sentiment string // exact match filter, empty = all
	Search    string // case-insensitive substring on file name and summary
	SortBy    string // one of sortColumns keys, default analyzed_at
	Order     string // "asc" or "desc", default desc
	Limit     int
	Offset    int
}

// sortColumns whitelists sortable columns to keep user input out of SQL.
var sortColumns = map[string]string{
	"fileName":   "file_name",
	"wordCount":  "word_count",
	"sentiment":  "sentiment",
	"confidence": "confidence",
	"processing": "processing_ms",
	"analyzedAt": "analyzed_at",
}

// Store keeps DocumentAnalysis rows in a DuckDB database.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens (or creates) the DuckDB database at dbPath. An empty path
// uses an in-memory database.
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA memory_limit='512MB'",
			"PRAGMA threads=2",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS analyses (
			id            VARCHAR PRIMARY KEY,
			file_name     VARCHAR NOT NULL,
			file_type     VARCHAR NOT NULL,
			processing_ms BIGINT NOT NULL,
			text_preview  VARCHAR,
			word_count    INTEGER NOT NULL,
			page_count    INTEGER,
			sentiment     VARCHAR NOT NULL,
			topics        VARCHAR NOT NULL,
			summary       VARCHAR NOT NULL,
			entities      VARCHAR NOT NULL,
			key_insights  VARCHAR NOT NULL,
			confidence    DOUBLE NOT NULL,
			analyzed_at   TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create analyses table: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.With("component", "results"),
	}, nil
}

// Add inserts one analysis row. A record with an existing ID replaces the
// previous row (re-processing the same file keeps the latest analysis).
func (s *Store) Add(a models.DocumentAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.db.Exec(`DELETE FROM analyses WHERE id = ?`, a.ID)

	_, err := s.db.Exec(`
		INSERT INTO analyses (
			id, file_name, file_type, processing_ms, text_preview,
			word_count, page_count, sentiment, topics, summary,
			entities, key_insights, confidence, analyzed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.FileName, a.FileType, a.ProcessingMs, a.TextPreview,
		a.WordCount, a.PageCount, a.Sentiment, marshalList(a.Topics), a.Summary,
		marshalList(a.Entities), marshalList(a.KeyInsights), a.Confidence, a.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// Get returns one analysis by ID.
func (s *Store) Get(id string) (*models.DocumentAnalysis, error) {
	rows, err := s.db.Query(selectColumns+` FROM analyses WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("query analysis: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("analysis not found: %s", id)
	}
	a, err := scanAnalysis(rows)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete removes one analysis by ID.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("analysis not found: %s", id)
	}
	return nil
}

// List returns matching analyses and the total match count before paging.
func (s *Store) List(q Query) ([]models.DocumentAnalysis, int, error) {
	where, args := buildWhere(q)

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM analyses`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count analyses: %w", err)
	}

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "analyzed_at"
	}
	dir := "DESC"
	if strings.EqualFold(q.Order, "asc") {
		dir = "ASC"
	}

	query := selectColumns + ` FROM analyses` + where + fmt.Sprintf(` ORDER BY %s %s`, col, dir)
	if q.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, q.Limit, q.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []models.DocumentAnalysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// All returns every analysis ordered by analysis time, for exports.
func (s *Store) All() ([]models.DocumentAnalysis, error) {
	list, _, err := s.List(Query{SortBy: "analyzedAt", Order: "asc"})
	return list, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

const selectColumns = `SELECT id, file_name, file_type, processing_ms, text_preview,
	word_count, page_count, sentiment, topics, summary,
	entities, key_insights, confidence, analyzed_at`

func buildWhere(q Query) (string, []any) {
	var clauses []string
	var args []any

	if q.Sentiment != "" {
		clauses = append(clauses, "sentiment = ?")
		args = append(args, q.Sentiment)
	}
	if q.Search != "" {
		clauses = append(clauses, "(file_name ILIKE ? OR summary ILIKE ?)")
		pattern := "%" + q.Search + "%"
		args = append(args, pattern, pattern)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanAnalysis(rows *sql.Rows) (models.DocumentAnalysis, error) {
	var a models.DocumentAnalysis
	var topics, entities, insights string
	var analyzedAt time.Time

	err := rows.Scan(
		&a.ID, &a.FileName, &a.FileType, &a.ProcessingMs, &a.TextPreview,
		&a.WordCount, &a.PageCount, &a.Sentiment, &topics, &a.Summary,
		&entities, &insights, &a.Confidence, &analyzedAt,
	)
	if err != nil {
		return a, fmt.Errorf("scan analysis: %w", err)
	}

	a.Topics = unmarshalList(topics)
	a.Entities = unmarshalList(entities)
	a.KeyInsights = unmarshalList(insights)
	a.AnalyzedAt = analyzedAt
	return a, nil
}

func marshalList(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)
	return string(b)
}

func unmarshalList(s string) []string {
	var list []string
	if err := json.Unmarshal([]byte(s), &list); err != nil || list == nil {
		return []string{}
	}
	return list
}
