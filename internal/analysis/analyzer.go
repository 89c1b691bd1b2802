// Package analysis builds prompts from extracted text, invokes the language
// model, and parses its reply into DocumentAnalysis records.
package analysis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/docuscope/backend/internal/extract"
	"github.com/docuscope/backend/internal/models"
)

// ErrEmptyContent signals that no analyzable text was extracted.
var ErrEmptyContent = errors.New("no text content extracted from document")

// ChatProvider abstracts the language-model API for the analyzer.
type ChatProvider interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// Config tunes the analyzer.
type Config struct {
	ChunkSize     int
	ChunkOverlap  int
	PreviewLength int
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = extract.DefaultChunkSize
	}
	if c.ChunkOverlap <= 0 {
		c.ChunkOverlap = extract.DefaultChunkOverlap
	}
	if c.PreviewLength <= 0 {
		c.PreviewLength = 500
	}
	return c
}

// Analyzer produces one DocumentAnalysis per document in a single
// prompt-and-parse round trip. API failures propagate; unparseable replies do
// not (they degrade to the fixed fallback record).
type Analyzer struct {
	provider ChatProvider
	cfg      Config
	logger   *slog.Logger
}

// NewAnalyzer creates an analyzer backed by the given chat provider.
func NewAnalyzer(provider ChatProvider, cfg Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		provider: provider,
		cfg:      cfg.withDefaults(),
		logger:   logger.With("component", "analysis"),
	}
}

// Analyze runs the extraction text of one file through the model and returns
// the assembled record with measured wall-clock duration, word count, and an
// estimated page count (words / 250, rounded up).
func (a *Analyzer) Analyze(ctx context.Context, file models.UploadedFile, text string) (models.DocumentAnalysis, error) {
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		return models.DocumentAnalysis{}, ErrEmptyContent
	}

	chunks := extract.SplitChunks(text, a.cfg.ChunkSize, a.cfg.ChunkOverlap)
	payload := strings.Join(chunks, "\n\n")

	a.logger.Info("analysis.request.start",
		"file_id", file.ID,
		"text_len", len(text),
		"chunks", len(chunks),
	)

	reply, err := a.provider.Chat(ctx, systemPrompt, buildUserPrompt(payload))
	if err != nil {
		a.logger.Error("analysis.request.failed", "file_id", file.ID, "error", err)
		return models.DocumentAnalysis{}, err
	}

	fields := parseReply(reply, a.logger)

	wordCount := len(strings.Fields(text))
	pageCount := (wordCount + 249) / 250

	result := models.DocumentAnalysis{
		ID:           file.ID,
		FileName:     file.Name,
		FileType:     file.Type,
		ProcessingMs: time.Since(start).Milliseconds(),
		TextPreview:  truncate(text, a.cfg.PreviewLength),
		WordCount:    wordCount,
		PageCount:    pageCount,
		Sentiment:    fields.Sentiment,
		Topics:       fields.Topics,
		Summary:      fields.Summary,
		Entities:     fields.Entities,
		KeyInsights:  fields.KeyInsights,
		Confidence:   fields.Confidence,
		AnalyzedAt:   time.Now(),
	}

	a.logger.Info("analysis.request.done",
		"file_id", file.ID,
		"sentiment", result.Sentiment,
		"elapsed_ms", result.ProcessingMs,
	)

	return result, nil
}

// truncate cuts s to at most n bytes, backing up so the cut never lands in
// the middle of a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
