package document

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPages(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "hello", []string{"hello"}},
		{"trailing form feed", "p1\fp2\f", []string{"p1", "p2"}},
		{"empty middle page kept", "p1\f\fp3", []string{"p1", "", "p3"}},
		{"empty", "", []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitPages(tt.in))
		})
	}
}

func TestFilterPages(t *testing.T) {
	long := strings.Repeat("x", 101)
	exact := strings.Repeat("y", 100)
	padded := "   " + strings.Repeat("z", 100) + "\n\n"

	got := FilterPages([]string{long, exact, padded, ""}, DefaultMinPageChars)
	assert.Equal(t, []string{long}, got)
	assert.Empty(t, FilterPages(nil, DefaultMinPageChars))
	assert.Len(t, FilterPages([]string{"ab", "c"}, 0), 2)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c d", Normalize("  a\r\nb\n\n c\t d  "))
	assert.Equal(t, "", Normalize("\n\r\n "))
}

func TestTextLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lec1.txt")
	require.NoError(t, os.WriteFile(path, []byte("page one\fpage two\f"), 0o644))

	pages, err := TextLoader{}.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"page one", "page two"}, pages)
}

func TestTextLoader_MissingFile(t *testing.T) {
	_, err := TextLoader{}.Load(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPDFToText_MissingBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lec.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	l := &PDFToText{Binary: "quizforge-no-such-pdftotext"}
	_, err := l.Load(context.Background(), path)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, path, le.Path)
	assert.Contains(t, err.Error(), "not found in PATH")
}

func TestPDFToText_CorruptInput(t *testing.T) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		t.Skip("pdftotext not installed")
	}
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf at all"), 0o644))

	_, err := (&PDFToText{}).Load(context.Background(), path)
	var le *LoadError
	require.True(t, errors.As(err, &le))
}

type recordingLoader struct{ calls []string }

func (r *recordingLoader) Load(_ context.Context, path string) ([]string, error) {
	r.calls = append(r.calls, path)
	return []string{path}, nil
}

func TestByExtension(t *testing.T) {
	pdf, text := &recordingLoader{}, &recordingLoader{}
	l := &ByExtension{PDF: pdf, Text: text}

	_, _ = l.Load(context.Background(), "a/Lecture1.PDF")
	_, _ = l.Load(context.Background(), "notes.txt")

	assert.Equal(t, []string{"a/Lecture1.PDF"}, pdf.calls)
	assert.Equal(t, []string{"notes.txt"}, text.calls)
}
