// Package export writes recognized page text to the CSV artifact. Each page's
// fragments are chunked into rows of at most four, joined by two spaces, one
// column per row, appended in page order.
package export

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/wudi/pagescan/scan"
)

// DefaultRowWidth is the number of fragments packed into one CSV row.
const DefaultRowWidth = 4

const fragmentSeparator = "  "

// Option configures a Writer.
type Option func(*Writer)

// WithRowWidth overrides how many fragments share a row.
func WithRowWidth(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.rowWidth = n
		}
	}
}

// Writer emits the single-column CSV rows.
type Writer struct {
	cw       *csv.Writer
	rowWidth int
}

// NewWriter wraps w with the default row width of four.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	out := &Writer{cw: csv.NewWriter(w), rowWidth: DefaultRowWidth}
	for _, opt := range opts {
		opt(out)
	}
	return out
}

// WritePage appends the rows for one page. Fragment groups never carry over
// between pages; a trailing group of fewer than rowWidth fragments still forms
// its own row.
func (w *Writer) WritePage(fragments []string) error {
	for i := 0; i < len(fragments); i += w.rowWidth {
		end := i + w.rowWidth
		if end > len(fragments) {
			end = len(fragments)
		}
		row := strings.Join(fragments[i:end], fragmentSeparator)
		if err := w.cw.Write([]string{row}); err != nil {
			return err
		}
	}
	return nil
}

// WriteReport appends every page of the report in page order. Failed pages
// have no fragments and therefore produce no rows.
func (w *Writer) WriteReport(report *scan.Report) error {
	for _, page := range report.Pages {
		if err := w.WritePage(page.Fragments); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes buffered rows to the underlying writer and reports any error
// that occurred during writing.
func (w *Writer) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}
