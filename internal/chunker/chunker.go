// Package chunker splits document text into overlapping windows.
package chunker

import (
	"strings"
	"unicode"
)

// Chunk is one window of document text. Start is the rune offset of the
// chunk's first character in the input.
type Chunk struct {
	Text  string
	Start int
}

// Config controls window sizing.
type Config struct {
	// Size is the window length in characters when Adaptive is off.
	Size int

	// Overlap is the number of characters shared by consecutive windows.
	Overlap int

	// Adaptive derives the window length from the document length,
	// see AdaptiveSize.
	Adaptive bool

	// MaxChunks caps how many leading chunks feed a prompt. Zero means all.
	MaxChunks int
}

const (
	DefaultSize      = 1000
	DefaultOverlap   = 200
	DefaultMaxChunks = 5

	minAdaptiveSize = 500
	maxAdaptiveSize = 2000
)

// DefaultConfig returns adaptive sizing with a 200 character overlap and a
// five chunk prompt limit.
func DefaultConfig() Config {
	return Config{
		Size:      DefaultSize,
		Overlap:   DefaultOverlap,
		Adaptive:  true,
		MaxChunks: DefaultMaxChunks,
	}
}

// AdaptiveSize returns total/20 clamped to [500, 2000].
func AdaptiveSize(total int) int {
	return min(maxAdaptiveSize, max(minAdaptiveSize, total/20))
}

// SizeFor returns the window length used for a text of total characters.
func (c Config) SizeFor(total int) int {
	if c.Adaptive {
		return AdaptiveSize(total)
	}
	if c.Size <= 0 {
		return DefaultSize
	}
	return c.Size
}

// Split cuts text into windows of at most SizeFor(len) characters. A window
// that would end mid-word is pulled back to the last paragraph, line or word
// break in its second half. Whitespace-only windows are skipped, so no
// returned chunk is empty.
func Split(text string, cfg Config) []Chunk {
	r := []rune(text)
	n := len(r)
	size := cfg.SizeFor(n)
	overlap := cfg.Overlap
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 5
	}

	var chunks []Chunk
	start := 0
	for start < n {
		end := min(start+size, n)
		if end < n {
			if cut := lastBreak(r[start:end]); cut > size/2 {
				end = start + cut
			}
		}

		if c, ok := trimmed(r, start, end); ok {
			chunks = append(chunks, c)
		}
		if end == n {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		// Begin the overlap on a word boundary when one is available.
		for i := next; i < end; i++ {
			if unicode.IsSpace(r[i]) {
				next = i + 1
				break
			}
		}
		start = next
	}
	return chunks
}

// Head returns the first MaxChunks chunks.
func (c Config) Head(chunks []Chunk) []Chunk {
	if c.MaxChunks > 0 && len(chunks) > c.MaxChunks {
		return chunks[:c.MaxChunks]
	}
	return chunks
}

// Join concatenates chunk texts separated by blank lines.
func Join(chunks []Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, "\n\n")
}

// lastBreak returns the offset just past the last separator in w, trying
// paragraph, line and word breaks in that order. Zero means none found.
func lastBreak(w []rune) int {
	s := string(w)
	for _, sep := range []string{"\n\n", "\n", " "} {
		if i := strings.LastIndex(s, sep); i >= 0 {
			return len([]rune(s[:i+len(sep)]))
		}
	}
	return 0
}

func trimmed(r []rune, start, end int) (Chunk, bool) {
	for start < end && unicode.IsSpace(r[start]) {
		start++
	}
	for end > start && unicode.IsSpace(r[end-1]) {
		end--
	}
	if start == end {
		return Chunk{}, false
	}
	return Chunk{Text: string(r[start:end]), Start: start}, true
}
