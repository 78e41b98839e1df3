// Package pdfsource adapts parsed PDF statements into the extractor's page
// source. PDF layout comes back as positioned text fragments, so structure is
// reconstructed heuristically: fragments cluster into cells at wide horizontal
// gaps, and runs of equal-width rows become grids. A page that cannot be
// decoded contributes nothing rather than failing the document.
package pdfsource

import (
	"errors"
	"fmt"
	"io"

	"github.com/dslipak/pdf"

	"github.com/finhelm/statement-api/internal/domain/extraction"
)

// ErrUnreadable reports a document that could not be opened at all. Trouble
// past that point is confined to the page it occurs on.
var ErrUnreadable = errors.New("unreadable document")

// Document is a parsed statement PDF implementing extraction.Source.
type Document struct {
	reader *pdf.Reader
}

var _ extraction.Source = (*Document)(nil)

// Open parses the PDF at path.
func Open(path string) (doc *Document, err error) {
	defer catchUnreadable(&err)
	r, openErr := pdf.Open(path)
	if openErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, openErr)
	}
	return &Document{reader: r}, nil
}

// NewReader parses a PDF held in memory or another random-access source.
func NewReader(r io.ReaderAt, size int64) (doc *Document, err error) {
	defer catchUnreadable(&err)
	rd, openErr := pdf.NewReader(r, size)
	if openErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, openErr)
	}
	return &Document{reader: rd}, nil
}

// The underlying library panics on malformed cross-reference tables and
// content streams, so every call into it runs behind a recover.
func catchUnreadable(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrUnreadable, r)
	}
}

func (d *Document) PageCount() (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return d.reader.NumPage()
}

// Page reads page i (1-based). A page whose content cannot be decoded comes
// back empty, not as an error.
func (d *Document) Page(i int) (extraction.Page, error) {
	if i < 1 || i > d.PageCount() {
		return nil, fmt.Errorf("page %d out of range", i)
	}
	return buildPage(d.readRows(i)), nil
}

func (d *Document) readRows(i int) (rows pdf.Rows) {
	defer func() {
		if recover() != nil {
			rows = nil
		}
	}()
	rows, err := d.reader.Page(i).GetTextByRow()
	if err != nil {
		return nil
	}
	return rows
}
