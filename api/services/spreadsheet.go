package services

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractSpreadsheet serializes tabular data as a header line followed by one
// pipe-joined "column: value" line per row, plus a trailing summary. A
// structured copy of the rows is kept on the document for callers that want
// the records rather than the serialization.
func extractSpreadsheet(path string, format string) (*ExtractedDocument, error) {
	var rows [][]string
	var err error

	if format == "csv" {
		rows, err = readCSV(path)
	} else {
		rows, err = readXLSX(path)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty: %s", path)
	}

	headers := rows[0]
	dataRows := rows[1:]

	textParts := []string{"HEADERS: " + strings.Join(headers, ", ")}
	records := make([]map[string]string, 0, len(dataRows))

	for _, row := range dataRows {
		record := make(map[string]string, len(headers))
		cells := make([]string, 0, len(headers))
		for i, col := range headers {
			val := ""
			if i < len(row) {
				val = row[i]
			}
			record[col] = val
			cells = append(cells, fmt.Sprintf("%s: %s", col, val))
		}
		records = append(records, record)
		textParts = append(textParts, strings.Join(cells, " | "))
	}

	fullText := strings.Join(textParts, "\n")
	summary := fmt.Sprintf("\nSUMMARY:\nRows: %d\nColumns: %d\nColumns: %s",
		len(dataRows), len(headers), strings.Join(headers, ", "))

	return &ExtractedDocument{
		Text:      fullText + summary,
		Pages:     []Page{{PageNumber: 1, Text: fullText, Bullets: []string{}}},
		PageCount: 1,
		Records:   records,
	}, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read XLSX rows: %w", err)
	}
	return rows, nil
}
