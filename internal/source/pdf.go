package source

import (
	"image"

	"github.com/gen2brain/go-fitz"
)

// PDFSource treats each page of a comic PDF as one panel.
type PDFSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

func NewPDFSource(path string, dpi int) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &PDFSource{doc: doc, path: path, dpi: dpi}, nil
}

func (s *PDFSource) Count() int {
	return s.doc.NumPage()
}

func (s *PDFSource) Panel(i int) (image.Image, error) {
	// fitz documents are not safe for concurrent rendering; workers open
	// their own handle instead of sharing s.doc.
	workerDoc, err := fitz.New(s.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(i, float64(s.dpi))
}

func (s *PDFSource) Close() error {
	return s.doc.Close()
}
