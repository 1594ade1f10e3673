// Package pdf provides PDF text extraction for uploaded medical reports.
//
// We use the ledongthuc/pdf library for text extraction.
// It's a pure Go implementation, so deployment stays a single binary.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractionResult holds the output from a PDF text extraction.
type ExtractionResult struct {
	Text        string // Extracted text content, pages separated by a blank line
	PageCount   int    // Number of pages
	WordCount   int    // Word count
	FailedPages int    // Pages whose text could not be read (image-only, broken streams)
}

// Extractor extracts text from in-memory PDF bytes.
type Extractor struct{}

// Extract implements text extraction with the package-level Extract.
func (Extractor) Extract(data []byte) (*ExtractionResult, error) {
	return Extract(data)
}

// Extract reads a PDF held in memory and extracts all text content.
//
// The pdf library requires an io.ReaderAt for random access to the PDF
// structure, so the whole upload is read first.
func Extract(data []byte) (*ExtractionResult, error) {
	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	pageCount := pdfReader.NumPage()
	result := &ExtractionResult{PageCount: pageCount}

	var pages []string
	for i := 1; i <= pageCount; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Image-only pages land here; they must not add text, otherwise
			// a scanned report would look like it had content.
			result.FailedPages++
			continue
		}

		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	result.Text = strings.Join(pages, "\n\n")
	result.WordCount = countWords(result.Text)
	return result, nil
}

// countWords counts the number of words in a text string.
func countWords(text string) int {
	return len(strings.Fields(text))
}

// ValidatePDF checks if the data looks like a PDF by checking the magic bytes.
func ValidatePDF(data []byte) bool {
	// PDF files start with "%PDF-"
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}
