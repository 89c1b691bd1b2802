// extract_test.go - Tests for text extraction dispatch
package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/docuscope/backend/internal/storage"
)

func TestExtractPlainText(t *testing.T) {
	svc := NewService(Options{}, nil)

	text, err := svc.Extract([]byte("hello\nworld"), storage.TypeTXT)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if text != "hello\nworld" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestExtractUnsupportedType(t *testing.T) {
	svc := NewService(Options{}, nil)

	_, err := svc.Extract([]byte("data"), "image/png")
	var uErr *UnsupportedTypeError
	if !errors.As(err, &uErr) {
		t.Fatalf("expected UnsupportedTypeError, got %v", err)
	}
	if uErr.Type != "image/png" {
		t.Errorf("unexpected type in error: %q", uErr.Type)
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	svc := NewService(Options{}, nil)

	_, err := svc.Extract([]byte("not a pdf"), storage.TypePDF)
	var eErr *ExtractionError
	if !errors.As(err, &eErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if eErr.Error() != "failed to extract document text" {
		t.Errorf("unexpected message: %q", eErr.Error())
	}
}

func TestExtractLegacyDocFails(t *testing.T) {
	svc := NewService(Options{}, nil)

	// OLE compound files are not ZIP containers
	oleHeader := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	_, err := svc.Extract(oleHeader, storage.TypeDOC)
	var eErr *ExtractionError
	if !errors.As(err, &eErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}

func TestExtractFile(t *testing.T) {
	svc := NewService(Options{}, nil)

	t.Run("reads file from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "note.txt")
		if err := os.WriteFile(path, []byte("from disk"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		text, err := svc.ExtractFile(path, storage.TypeTXT)
		if err != nil {
			t.Fatalf("ExtractFile failed: %v", err)
		}
		if text != "from disk" {
			t.Errorf("unexpected text: %q", text)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := svc.ExtractFile(filepath.Join(t.TempDir(), "missing.txt"), storage.TypeTXT)
		var eErr *ExtractionError
		if !errors.As(err, &eErr) {
			t.Fatalf("expected ExtractionError, got %v", err)
		}
	})
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractWordText(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{
			name: "single paragraph",
			xml:  `<w:document xmlns:w="x"><w:body><w:p><w:r><w:t>Hello World</w:t></w:r></w:p></w:body></w:document>`,
			want: "Hello World",
		},
		{
			name: "paragraphs become lines",
			xml:  `<w:document xmlns:w="x"><w:body><w:p><w:r><w:t>First</w:t></w:r></w:p><w:p><w:r><w:t>Second</w:t></w:r></w:p></w:body></w:document>`,
			want: "First\nSecond",
		},
		{
			name: "runs concatenate within paragraph",
			xml:  `<w:document xmlns:w="x"><w:body><w:p><w:r><w:t>Hel</w:t></w:r><w:r><w:t>lo</w:t></w:r></w:p></w:body></w:document>`,
			want: "Hello",
		},
		{
			name: "tab becomes space",
			xml:  `<w:document xmlns:w="x"><w:body><w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t></w:r></w:p></w:body></w:document>`,
			want: "a b",
		},
		{
			name: "empty paragraphs skipped",
			xml:  `<w:document xmlns:w="x"><w:body><w:p></w:p><w:p><w:r><w:t>only</w:t></w:r></w:p><w:p></w:p></w:body></w:document>`,
			want: "only",
		},
		{
			name: "text outside runs ignored",
			xml:  `<w:document xmlns:w="x"><w:body><w:p>stray<w:r><w:t>kept</w:t></w:r></w:p></w:body></w:document>`,
			want: "kept",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractWordText(buildDocx(t, tt.xml))
			if err != nil {
				t.Fatalf("extractWordText failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("missing document.xml", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, _ := zw.Create("other.xml")
		w.Write([]byte("<x/>"))
		zw.Close()

		_, err := extractWordText(buf.Bytes())
		if err == nil {
			t.Error("expected error for archive without word/document.xml")
		}
	})

	t.Run("empty content", func(t *testing.T) {
		if _, err := extractWordText(nil); err == nil {
			t.Error("expected error for empty content")
		}
	})
}

func TestCollapseSpaces(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses runs", "a   b\t\tc", "a b c"},
		{"preserves newlines", "a  b\nc  d", "a b\nc d"},
		{"trims ends", "  padded  ", "padded"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := collapseSpaces(tt.in); got != tt.want {
				t.Errorf("collapseSpaces(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
