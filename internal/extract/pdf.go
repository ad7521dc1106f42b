// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"os"

	"github.com/ledongthuc/pdf"
)

// PDFOpener opens documents with github.com/ledongthuc/pdf.
type PDFOpener struct{}

// Open implements Opener.
func (PDFOpener) Open(path string) (Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	return &pdfDocument{file: f, reader: r}, nil
}

type pdfDocument struct {
	file   *os.File
	reader *pdf.Reader
}

func (d *pdfDocument) NumPage() int { return d.reader.NumPage() }

func (d *pdfDocument) Page(n int) Page { return pdfPage{page: d.reader.Page(n)} }

func (d *pdfDocument) Close() error { return d.file.Close() }

type pdfPage struct {
	page pdf.Page
}

// PlainText returns "" for missing page objects.
func (p pdfPage) PlainText() (string, error) {
	if p.page.V.IsNull() {
		return "", nil
	}
	return p.page.GetPlainText(nil)
}
