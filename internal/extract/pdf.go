package extract

import (
	"bytes"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDF concatenates the text runs of every page into a single string,
// joined by the configured page separator, without page-number annotations.
func (s *Service) extractPDF(content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty PDF content")
	}

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText := s.pageText(page)
		if pageText == "" {
			continue
		}
		pages = append(pages, pageText)
	}

	return strings.Join(pages, s.opts.PageSeparator), nil
}

// pageText assembles one page's text runs. In document order by default; in
// preserve-layout mode runs are re-ordered by vertical-then-horizontal
// position with a line break whenever the vertical position jumps past the
// configured threshold.
func (s *Service) pageText(page pdf.Page) string {
	runs := page.Content().Text
	if len(runs) == 0 {
		return ""
	}

	if s.opts.PreserveLayout {
		// Stable sort keeps document order for runs on the same line.
		sorted := make([]pdf.Text, len(runs))
		copy(sorted, runs)
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Y != sorted[j].Y {
				return sorted[i].Y > sorted[j].Y // PDF origin is bottom-left
			}
			return sorted[i].X < sorted[j].X
		})

		var b strings.Builder
		lastY := math.Inf(1)
		for _, run := range sorted {
			if b.Len() > 0 {
				if math.Abs(lastY-run.Y) > s.opts.LayoutLineThreshold {
					b.WriteByte('\n')
				} else {
					b.WriteByte(' ')
				}
			}
			b.WriteString(decodeRun(run.S))
			lastY = run.Y
		}
		return collapseSpaces(b.String())
	}

	var b strings.Builder
	for i, run := range runs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(decodeRun(run.S))
	}
	return collapseSpaces(b.String())
}

// decodeRun percent-decodes a text run, keeping the raw content when the run
// is not valid percent-encoding.
func decodeRun(s string) string {
	if !strings.ContainsRune(s, '%') {
		return s
	}
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
