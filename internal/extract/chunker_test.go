// chunker_test.go - Tests for text chunking
package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitChunks(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		if got := SplitChunks("", 100, 10); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
		if got := SplitChunks("   \n  ", 100, 10); got != nil {
			t.Errorf("expected nil for whitespace-only text, got %v", got)
		}
	})

	t.Run("short text returns single chunk", func(t *testing.T) {
		got := SplitChunks("short text", 100, 10)
		if len(got) != 1 || got[0] != "short text" {
			t.Errorf("unexpected chunks: %v", got)
		}
	})

	t.Run("text at exact size returns single chunk", func(t *testing.T) {
		text := strings.Repeat("a", 100)
		got := SplitChunks(text, 100, 10)
		if len(got) != 1 {
			t.Errorf("expected 1 chunk, got %d", len(got))
		}
	})

	t.Run("long text overlaps deterministically", func(t *testing.T) {
		text := strings.Repeat("x", 250)
		got := SplitChunks(text, 100, 20)

		// step is 80: chunks start at 0, 80, 160, then tail at 240
		if len(got) != 4 {
			t.Fatalf("expected 4 chunks, got %d", len(got))
		}
		for i, c := range got[:3] {
			if len(c) != 100 {
				t.Errorf("chunk %d: expected length 100, got %d", i, len(c))
			}
		}
		if len(got[3]) != 10 {
			t.Errorf("tail chunk: expected length 10, got %d", len(got[3]))
		}
	})

	t.Run("consecutive chunks share overlap", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 30; i++ {
			b.WriteString("abcdefghij")
		}
		got := SplitChunks(b.String(), 100, 20)

		for i := 1; i < len(got); i++ {
			prevTail := got[i-1][len(got[i-1])-20:]
			if !strings.HasPrefix(got[i], prevTail) {
				t.Errorf("chunk %d does not start with previous chunk's overlap", i)
			}
		}
	})

	t.Run("invalid parameters fall back to defaults", func(t *testing.T) {
		text := strings.Repeat("y", DefaultChunkSize+500)
		got := SplitChunks(text, 0, -1)
		if len(got) != 2 {
			t.Errorf("expected 2 chunks with default size, got %d", len(got))
		}
		if len(got[0]) != DefaultChunkSize {
			t.Errorf("expected first chunk of %d, got %d", DefaultChunkSize, len(got[0]))
		}
	})

	t.Run("multi-byte text splits on rune boundaries", func(t *testing.T) {
		text := strings.Repeat("é", 250)
		got := SplitChunks(text, 100, 20)

		if len(got) != 4 {
			t.Fatalf("expected 4 chunks, got %d", len(got))
		}
		for i, c := range got {
			if !utf8.ValidString(c) {
				t.Errorf("chunk %d is not valid UTF-8", i)
			}
		}
		for i, c := range got[:3] {
			if n := utf8.RuneCountInString(c); n != 100 {
				t.Errorf("chunk %d: expected 100 runes, got %d", i, n)
			}
		}
	})

	t.Run("overlap larger than size falls back", func(t *testing.T) {
		text := strings.Repeat("z", 500)
		got := SplitChunks(text, 100, 100)
		if len(got) < 2 {
			t.Fatalf("expected multiple chunks, got %d", len(got))
		}
	})
}
