package document

import "strings"

// DefaultMinPageChars is the page length at or below which a page is
// considered boilerplate (title slides, blank pages) and dropped.
const DefaultMinPageChars = 100

// FilterPages keeps pages whose trimmed text is longer than minChars.
func FilterPages(pages []string, minChars int) []string {
	var out []string
	for _, p := range pages {
		if len([]rune(strings.TrimSpace(p))) > minChars {
			out = append(out, p)
		}
	}
	return out
}

// Normalize flattens line breaks and collapses whitespace runs to single
// spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Join concatenates pages into one document text, one newline between
// pages.
func Join(pages []string) string {
	return strings.Join(pages, "\n")
}
