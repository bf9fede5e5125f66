package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestPDF writes a PDF with one Helvetica text line per page.
func writeTestPDF(t *testing.T, pages ...string) string {
	t.Helper()

	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects,
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "lecture.pdf")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

type stubLoader struct {
	pages []string
	err   error
	calls int
}

func (s *stubLoader) Load(context.Context, string) ([]string, error) {
	s.calls++
	return s.pages, s.err
}

func TestPDFReader_OnePagePerPage(t *testing.T) {
	path := writeTestPDF(t, "Cells are the basic unit of life", "Mitochondria make ATP")
	fallback := &stubLoader{pages: []string{"from fallback"}}

	pages, err := (&PDFReader{Fallback: fallback}).Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Contains(t, pages[0], "Cells are the basic unit of life")
	assert.Contains(t, pages[1], "Mitochondria make ATP")
	assert.Zero(t, fallback.calls)
}

func TestPDFReader_FallsBackOnUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf at all"), 0o644))

	fallback := &stubLoader{pages: []string{"rescued text"}}
	pages, err := (&PDFReader{Fallback: fallback}).Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"rescued text"}, pages)
	assert.Equal(t, 1, fallback.calls)
}

func TestPDFReader_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf at all"), 0o644))
	fbErr := errors.New("pdftotext exploded")

	tests := []struct {
		name     string
		fallback Loader
		wantFB   bool
	}{
		{"no fallback", nil, false},
		{"fallback fails too", &stubLoader{err: fbErr}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&PDFReader{Fallback: tt.fallback}).Load(context.Background(), path)
			var le *LoadError
			require.True(t, errors.As(err, &le), "got %T (%v)", err, err)
			assert.Equal(t, path, le.Path)
			assert.Equal(t, tt.wantFB, errors.Is(err, fbErr))
		})
	}
}

func TestPDFReader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&PDFReader{}).Load(ctx, writeTestPDF(t, "never read"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewLoader_ReadsPDFWithoutPdftotext(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	path := writeTestPDF(t, "Photosynthesis converts light")

	pages, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0], "Photosynthesis converts light")
}
