// Package extract turns uploaded file bytes into plain text for chunking.
package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// maxCSVRows caps how many data rows are rendered from a spreadsheet so one
// oversized upload cannot dominate the corpus.
const maxCSVRows = 1000

// SupportedTypes lists the file extensions the extractor accepts.
var SupportedTypes = []string{"pdf", "txt", "md", "json", "csv"}

// Supported reports whether fileType (a lowercase extension without dot) can
// be extracted.
func Supported(fileType string) bool {
	for _, t := range SupportedTypes {
		if t == fileType {
			return true
		}
	}
	return false
}

// Text extracts plain text from raw file bytes according to fileType.
func Text(data []byte, fileType string) (string, error) {
	switch fileType {
	case "pdf":
		return fromPDF(data)
	case "txt", "md", "json":
		return fromPlainText(data)
	case "csv":
		return fromCSV(data)
	default:
		return "", fmt.Errorf("unsupported file type %q (supported: %s)", fileType, strings.Join(SupportedTypes, ", "))
	}
}

func fromPDF(data []byte) (string, error) {
	rdr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := rdr.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	text := buf.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content could be extracted from pdf")
	}
	return text, nil
}

func fromPlainText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	// Fall back to a byte-to-rune decode so legacy single-byte encodings
	// still produce usable text.
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes), nil
}

// fromCSV renders rows as "column: value; column: value" lines, headed by the
// column list, so tabular data stays searchable as prose.
func fromCSV(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return "", fmt.Errorf("read csv header: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Columns: " + strings.Join(header, ", ") + "\n\n")

	rows := 0
	truncated := false
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read csv row: %w", err)
		}
		if rows >= maxCSVRows {
			truncated = true
			continue
		}

		var parts []string
		for i, value := range record {
			if value == "" {
				continue
			}
			col := fmt.Sprintf("column_%d", i+1)
			if i < len(header) {
				col = header[i]
			}
			parts = append(parts, col+": "+value)
		}
		if len(parts) > 0 {
			sb.WriteString(strings.Join(parts, "; ") + "\n")
		}
		rows++
	}

	if truncated {
		sb.WriteString(fmt.Sprintf("\n[Note: only first %d rows shown]\n", maxCSVRows))
	}
	return sb.String(), nil
}
