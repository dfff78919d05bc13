// Package pdftext turns a receipt PDF into the single text blob the parser
// consumes. Size and format checks live here so callers can reject bad
// documents before extraction; the parser itself never does I/O.
package pdftext

import (
	"bytes"
	"errors"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dslipak/pdf"
)

// MaxDocumentSize is the largest receipt document callers should accept.
const MaxDocumentSize = 10 << 20

var pdfMagic = []byte("%PDF")

var (
	ErrNotPDF   = errors.New("document is not a PDF")
	ErrTooLarge = errors.New("document exceeds size limit")
)

// ValidateDocument checks the magic bytes and size of a candidate document
// before any extraction work is spent on it.
func ValidateDocument(data []byte) error {
	if len(data) > MaxDocumentSize {
		return ErrTooLarge
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return ErrNotPDF
	}
	return nil
}

// ExtractText reads a PDF and returns its text rows joined by newlines.
// Receipts are small, so the whole document is buffered in memory.
func ExtractText(r io.Reader) (string, error) {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(io.LimitReader(r, MaxDocumentSize+1)); err != nil {
		return "", err
	}
	data := buf.Bytes()
	if err := ValidateDocument(data); err != nil {
		return "", err
	}
	return extractRows(bytes.NewReader(data), int64(len(data)))
}

// ExtractTextFromFile reads a PDF from disk and returns its text.
func ExtractTextFromFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ExtractText(f)
}

func extractRows(rAt io.ReaderAt, size int64) (string, error) {
	r, err := pdf.NewReader(rAt, size)
	if err != nil {
		return "", err
	}

	var rows []string
	for no := 1; no <= r.NumPage(); no++ {
		page := r.Page(no)
		pageRows, err := page.GetTextByRow()
		if err != nil {
			log.Printf("Warning: error getting text from page %d: %v", no, err)
			continue
		}

		for _, row := range pageRows {
			var builder strings.Builder
			for i, text := range row.Content {
				builder.WriteString(text.S)
				if i < len(row.Content)-1 {
					builder.WriteByte(' ')
				}
			}
			if builder.Len() > 0 {
				rows = append(rows, builder.String())
			}
		}
	}

	return strings.Join(rows, "\n"), nil
}
