package source

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Source enumerates receipt frames: standalone image files or the pages of a
// scanned PDF.
type Source interface {
	Count() int
	Dimensions(index int) (width, height float64, err error)
	Load(index int) (image.Image, error)
	Name(index int) string
	Close() error
}

// FitzPDFSource renders scanned PDF receipts via go-fitz.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

func NewFitzPDFSource(path string, dpi int) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &FitzPDFSource{doc: doc, path: path, dpi: dpi}, nil
}

func (f *FitzPDFSource) Count() int {
	return f.doc.NumPage()
}

func (f *FitzPDFSource) Dimensions(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

func (f *FitzPDFSource) Load(index int) (image.Image, error) {
	// go-fitz документ не потокобезопасен: каждый воркер открывает свой
	// экземпляр, чтобы страницы рендерились параллельно.
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(f.dpi))
}

func (f *FitzPDFSource) Name(index int) string {
	base := strings.TrimSuffix(filepath.Base(f.path), filepath.Ext(f.path))
	return fmt.Sprintf("%s_page%d", base, index+1)
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
