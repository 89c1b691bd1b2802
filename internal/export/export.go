// Package export renders analysis results as JSON, CSV, and XLSX downloads.
package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/docuscope/backend/internal/models"
)

// Column order is fixed across CSV and XLSX exports.
var headers = []string{
	"File Name",
	"File Type",
	"Word Count",
	"Sentiment",
	"Topics",
	"Summary",
	"Entities",
	"Key Insights",
	"Confidence",
	"Processing Time (ms)",
	"Analyzed At",
}

const listSeparator = "; "

// JSON returns the full result array pretty-printed.
func JSON(results []models.DocumentAnalysis) ([]byte, error) {
	if results == nil {
		results = []models.DocumentAnalysis{}
	}
	return json.MarshalIndent(results, "", "  ")
}

// CSV renders the fixed-column table. Every cell is quoted, embedded quotes
// are doubled, and list fields are joined with "; ". The format quotes
// unconditionally, which rules out encoding/csv.
func CSV(results []models.DocumentAnalysis) []byte {
	var b strings.Builder

	writeRow(&b, headers)
	for _, r := range results {
		writeRow(&b, rowValues(r))
	}

	return []byte(b.String())
}

func writeRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// XLSX renders the same table as a single-sheet workbook.
func XLSX(results []models.DocumentAnalysis) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Analyses"

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, r := range results {
		for col, v := range rowValues(r) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func rowValues(r models.DocumentAnalysis) []string {
	return []string{
		r.FileName,
		r.FileType,
		strconv.Itoa(r.WordCount),
		r.Sentiment,
		strings.Join(r.Topics, listSeparator),
		r.Summary,
		strings.Join(r.Entities, listSeparator),
		strings.Join(r.KeyInsights, listSeparator),
		strconv.FormatFloat(r.Confidence, 'f', 2, 64),
		strconv.FormatInt(r.ProcessingMs, 10),
		r.AnalyzedAt.Format(time.RFC3339),
	}
}
