package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractWordText extracts plain text from a Word document by streaming the
// OOXML tokens of word/document.xml. Legacy .doc files that are not ZIP
// containers fail here and surface as a generic extraction error upstream.
func extractWordText(content []byte) (string, error) {
	if len(content) == 0 {
		return "", fmt.Errorf("empty document content")
	}

	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open zip: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("missing word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("read document.xml: %w", err)
	}
	defer rc.Close()

	return parseWordDocument(rc)
}

// parseWordDocument walks the OOXML token stream collecting run text,
// emitting one line per paragraph and spaces for tab elements.
func parseWordDocument(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var text strings.Builder
	var paragraph strings.Builder
	inRun := false

	flushParagraph := func() {
		p := strings.TrimSpace(paragraph.String())
		paragraph.Reset()
		if p == "" {
			return
		}
		if text.Len() > 0 {
			text.WriteByte('\n')
		}
		text.WriteString(p)
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				inRun = true
			case "tab":
				paragraph.WriteByte(' ')
			case "br":
				paragraph.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				inRun = false
			case "p":
				flushParagraph()
			}
		case xml.CharData:
			if inRun {
				paragraph.Write(t)
			}
		}
	}

	flushParagraph()
	return text.String(), nil
}
