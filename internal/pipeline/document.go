package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Document is one input file and the source name its questions go under.
type Document struct {
	Source string
	Path   string
}

// ParseDocuments turns command-line arguments into documents. An argument
// of the form "name=path" names its source; others are named Lec1..LecN by
// position, so sources line up with positional scores.
func ParseDocuments(args []string) ([]Document, error) {
	docs := make([]Document, 0, len(args))
	seen := make(map[string]bool, len(args))
	for i, arg := range args {
		doc := Document{Source: fmt.Sprintf("Lec%d", i+1), Path: arg}
		if name, path, ok := strings.Cut(arg, "="); ok && name != "" && !strings.ContainsRune(name, filepath.Separator) {
			doc = Document{Source: strings.TrimSpace(name), Path: path}
		}
		if doc.Path == "" {
			return nil, fmt.Errorf("argument %q has no path", arg)
		}
		if seen[doc.Source] {
			return nil, fmt.Errorf("source %q given twice", doc.Source)
		}
		seen[doc.Source] = true
		docs = append(docs, doc)
	}
	return docs, nil
}
