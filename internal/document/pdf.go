package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFReader extracts page text in-process. When extraction fails or finds
// no text at all, Fallback (if set) gets a try; NewLoader wires pdftotext
// there, which copes with some encodings the Go reader does not.
type PDFReader struct {
	Fallback Loader
}

func (l *PDFReader) Load(ctx context.Context, path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &LoadError{Path: path, Err: errors.New("path required")}
	}
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	pages, err := readPDFPages(path)
	if err == nil && hasText(pages) {
		return pages, nil
	}
	if l.Fallback == nil {
		if err != nil {
			return nil, &LoadError{Path: path, Err: err}
		}
		return pages, nil
	}

	fallback, fbErr := l.Fallback.Load(ctx, path)
	switch {
	case fbErr == nil:
		return fallback, nil
	case err == nil:
		// The reader worked and found nothing; an unusable fallback does
		// not change that.
		return pages, nil
	default:
		return nil, &LoadError{Path: path, Err: errors.Join(err, fbErr)}
	}
}

// readPDFPages returns one string per page. Font resource names are scoped
// to a page, so each page resolves its own. The reader panics on some
// malformed files, which is reported as an error.
func readPDFPages(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf reader: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdf reader: %w", err)
	}
	defer f.Close()

	n := r.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("pdf page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
