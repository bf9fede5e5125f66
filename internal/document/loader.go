// Package document turns uploaded files into page-level text.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Loader produces the ordered page texts of a document.
type Loader interface {
	Load(ctx context.Context, path string) ([]string, error)
}

// PDFToText loads PDFs through the poppler pdftotext binary. Pages are
// separated by form feeds in its output. It backs PDFReader up.
type PDFToText struct {
	// Binary defaults to "pdftotext" on PATH.
	Binary  string
	Timeout time.Duration
}

const defaultPDFTimeout = 2 * time.Minute

func (l *PDFToText) Load(ctx context.Context, path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &LoadError{Path: path, Err: errors.New("path required")}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	bin := l.Binary
	if bin == "" {
		bin = "pdftotext"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("%s not found in PATH: %w", bin, err)}
	}

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = defaultPDFTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(callCtx, bin, "-enc", "UTF-8", "-q", path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if s := strings.TrimSpace(stderr.String()); s != "" {
			err = fmt.Errorf("%w: %s", err, s)
		}
		return nil, &LoadError{Path: path, Err: err}
	}

	return SplitPages(stdout.String()), nil
}

// TextLoader reads plain text files. Form feeds separate pages; a file
// without any is one page.
type TextLoader struct{}

func (TextLoader) Load(_ context.Context, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return SplitPages(string(data)), nil
}

// ByExtension dispatches on the file extension: .pdf goes to PDF, anything
// else to Text.
type ByExtension struct {
	PDF  Loader
	Text Loader
}

// NewLoader returns the default extension-dispatching loader.
func NewLoader() *ByExtension {
	return &ByExtension{
		PDF:  &PDFReader{Fallback: &PDFToText{}},
		Text: TextLoader{},
	}
}

func (l *ByExtension) Load(ctx context.Context, path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return l.PDF.Load(ctx, path)
	}
	return l.Text.Load(ctx, path)
}

// SplitPages splits extracted text on form feeds. pdftotext terminates the
// last page with one too, so a trailing empty page is dropped.
func SplitPages(text string) []string {
	pages := strings.Split(text, "\f")
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages
}
