package extract

import "strings"

// Default chunking parameters: ~4000 character windows with ~200 characters
// of overlap between consecutive chunks.
const (
	DefaultChunkSize    = 4000
	DefaultChunkOverlap = 200
)

// SplitChunks splits text into fixed-size overlapping windows. The split is
// deterministic: each chunk starts (size - overlap) characters after the
// previous one. Windows are measured in runes so multi-byte text never gets
// cut mid-character. Present for forward compatibility with longer documents;
// the analyzer currently sends the joined sequence as a single prompt payload.
func SplitChunks(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 10
		}
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
