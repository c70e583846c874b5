package extraction

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageSource supplies the first-page view of a report. The workflow depends
// on this interface so tests can feed synthetic pages without PDF bytes.
type PageSource interface {
	FirstPage(data []byte) (Page, error)
}

// PDFPageSource reads report PDFs with ledongthuc/pdf. Text is rebuilt from
// row-grouped fragments so the three-line KPI block keeps its line structure.
// The library has no native table extraction, so Page.Tables stays empty and
// the positional text parser carries the KPI pass; a richer PDF facility can
// populate Tables through the same Page type.
type PDFPageSource struct{}

// NewPDFPageSource returns the library-backed page source.
func NewPDFPageSource() *PDFPageSource {
	return &PDFPageSource{}
}

// FirstPage extracts text from page one of the PDF. The error path is for
// unopenable files only; pages with no text return an empty Page and the
// extractor records that as a malformed-source entry.
func (s *PDFPageSource) FirstPage(data []byte) (page Page, err error) {
	defer func() {
		// The PDF library can panic on corrupt cross-reference tables.
		if r := recover(); r != nil {
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	if len(data) == 0 {
		return Page{}, fmt.Errorf("empty pdf content")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Page{}, fmt.Errorf("open pdf: %w", err)
	}
	if reader.NumPage() < 1 {
		return Page{}, fmt.Errorf("pdf has no pages")
	}

	first := reader.Page(1)
	if first.V.IsNull() {
		return Page{}, fmt.Errorf("first page is empty")
	}

	rows, err := first.GetTextByRow()
	if err != nil || len(rows) == 0 {
		// Fall back to the flat extraction path; line structure is lost but
		// name and date patterns still work on it.
		text, textErr := first.GetPlainText(nil)
		if textErr != nil {
			return Page{}, fmt.Errorf("extract page text: %w", textErr)
		}
		return Page{Text: strings.TrimSpace(text)}, nil
	}

	var lines []string
	for _, row := range rows {
		var parts []string
		for _, word := range row.Content {
			if s := strings.TrimSpace(word.S); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			continue
		}
		lines = append(lines, strings.Join(parts, " "))
	}

	return Page{Text: strings.Join(lines, "\n")}, nil
}
