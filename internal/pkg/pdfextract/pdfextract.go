package pdfextract

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrUnreadable = errors.New("pdf is unreadable")

// document is the slice of the pdf reader the extractor depends on.
type document interface {
	NumPage() int
	PageText(num int) (string, error)
}

type pdfDocument struct {
	reader *pdf.Reader
}

func (d pdfDocument) NumPage() int {
	return d.reader.NumPage()
}

func (d pdfDocument) PageText(num int) (text string, err error) {
	// The reader panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("page %d: %v", num, r)
		}
	}()
	page := d.reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}

// ExtractTextFile opens the PDF at path and returns the text of every page
// concatenated in page order. Pages without extractable text (scanned pages,
// per-page decode failures) contribute nothing.
func ExtractTextFile(path string) (string, error) {
	f, reader, err := openFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return joinPages(pdfDocument{reader: reader}), nil
}

func openFile(path string) (f io.Closer, reader *pdf.Reader, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, reader, err = nil, nil, fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()
	file, reader, err := pdf.Open(path)
	if err != nil {
		if file != nil {
			_ = file.Close()
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return file, reader, nil
}

func joinPages(doc document) string {
	var b strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		text, err := doc.PageText(i)
		if err != nil {
			continue
		}
		b.WriteString(text)
	}
	return b.String()
}
