package mcq

import "fmt"

// ParseResult is the outcome of parsing one completion.
//
// Parsing is lenient: malformed entries are kept with whatever fields could
// be read and counted in Malformed. Candidates that could not be read at
// all are skipped and counted in Dropped.
type ParseResult struct {
	Questions Pool
	Malformed int
	Dropped   int
}

// Parser extracts questions from raw completion text. Parse never fails;
// the worst case is an empty pool.
type Parser interface {
	Format() Format
	Parse(text string) ParseResult
}

// NewParser returns the parser for format f.
func NewParser(f Format) (Parser, error) {
	switch f {
	case FormatJSON:
		return &JSONStreamParser{Validators: DefaultValidators()}, nil
	case FormatLabeled:
		return &LabeledBlockParser{Validators: DefaultValidators()}, nil
	default:
		return nil, fmt.Errorf("no parser for format %q", f)
	}
}
