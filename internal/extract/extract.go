// Package extract converts stored documents to plain text, dispatching on the
// declared MIME type.
package extract

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode"

	"github.com/docuscope/backend/internal/storage"
)

// UnsupportedTypeError reports a declared MIME type outside the supported set.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported document type: %s", e.Type)
}

// ExtractionError wraps an underlying library failure behind a generic
// message. The original cause is logged, not surfaced to callers.
type ExtractionError struct{}

func (e *ExtractionError) Error() string {
	return "failed to extract document text"
}

// Options tune PDF extraction behavior.
type Options struct {
	// PageSeparator joins per-page text. Defaults to a newline.
	PageSeparator string
	// PreserveLayout re-orders PDF text runs by vertical-then-horizontal
	// position instead of document order.
	PreserveLayout bool
	// LayoutLineThreshold is the vertical jump, in PDF units, that forces a
	// line break in preserve-layout mode.
	LayoutLineThreshold float64
}

func (o Options) withDefaults() Options {
	if o.PageSeparator == "" {
		o.PageSeparator = "\n"
	}
	if o.LayoutLineThreshold <= 0 {
		o.LayoutLineThreshold = 2.0
	}
	return o
}

// Service extracts plain text from documents by format.
type Service struct {
	opts   Options
	logger *slog.Logger
}

// NewService creates an extraction service.
func NewService(opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		opts:   opts.withDefaults(),
		logger: logger.With("component", "extract"),
	}
}

// ExtractFile reads a stored file and extracts its text according to the
// declared MIME type.
func (s *Service) ExtractFile(path, mimeType string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("extract.read_failed", "path", path, "error", err)
		return "", &ExtractionError{}
	}
	return s.Extract(content, mimeType)
}

// Extract converts raw document bytes to plain text.
func (s *Service) Extract(content []byte, mimeType string) (string, error) {
	switch mimeType {
	case storage.TypePDF:
		text, err := s.extractPDF(content)
		if err != nil {
			s.logger.Error("extract.pdf_failed", "error", err)
			return "", &ExtractionError{}
		}
		return text, nil
	case storage.TypeDOCX, storage.TypeDOC:
		text, err := extractWordText(content)
		if err != nil {
			s.logger.Error("extract.word_failed", "error", err)
			return "", &ExtractionError{}
		}
		return text, nil
	case storage.TypeTXT:
		return string(content), nil
	default:
		return "", &UnsupportedTypeError{Type: mimeType}
	}
}

// collapseSpaces collapses runs of spaces and tabs within lines, preserving
// line structure.
func collapseSpaces(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastSpace := false
	for _, r := range text {
		if r == '\n' {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}

	return strings.TrimSpace(b.String())
}
