package mcq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/quizforge/internal/chunker"
	"github.com/abhisek/quizforge/internal/document"
	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/logger"
)

// MergePolicy decides how each completion's questions join the pool.
type MergePolicy string

const (
	// MergeAppend gives every new question the next free key.
	MergeAppend MergePolicy = "append"

	// MergeOverwrite keys questions by their parsed index, so a later
	// completion replaces earlier questions with the same index.
	MergeOverwrite MergePolicy = "overwrite"
)

// Config controls the generation loop.
type Config struct {
	Format Format

	// MinCount is the pool size at which generation stops.
	MinCount int

	// MaxAttempts caps completion calls per source, failed calls included.
	MaxAttempts int

	// AttemptWait is the base backoff after a failed call. It doubles per
	// consecutive failure up to MaxAttemptWait.
	AttemptWait    time.Duration
	MaxAttemptWait time.Duration

	// MaxChunks is how many leading chunks make up the prompt context.
	MaxChunks int

	Merge MergePolicy

	// Dedup drops questions whose text is already in the pool. Only
	// applies to MergeAppend.
	Dedup bool

	// Structured asks backends that support it to constrain replies to
	// BatchSchema. Only valid with FormatJSON.
	Structured bool

	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the standard generation settings.
func DefaultConfig() Config {
	return Config{
		Format:         FormatJSON,
		MinCount:       10,
		MaxAttempts:    8,
		AttemptWait:    2 * time.Second,
		MaxAttemptWait: 30 * time.Second,
		MaxChunks:      chunker.DefaultMaxChunks,
		Merge:          MergeAppend,
		MaxTokens:      4096,
		Temperature:    0.7,
	}
}

// Result is the outcome of generating one source's pool.
type Result struct {
	Source string

	// Pool is renumbered 1..len(Pool).
	Pool Pool

	// Attempts counts completion calls made, failed ones included.
	Attempts int

	// Malformed and Dropped total the parser's leniency counts.
	Malformed int
	Dropped   int

	// ServiceErrors counts failed completion calls.
	ServiceErrors int

	// Duplicates counts questions skipped by Dedup.
	Duplicates int
}

// Generator runs the capped generation loop against a completion service.
type Generator struct {
	provider llm.Provider
	parser   Parser
	config   Config
	log      *logger.Logger
}

// New creates a Generator. A nil log discards output.
func New(provider llm.Provider, cfg Config, log *logger.Logger) (*Generator, error) {
	if cfg.MinCount < 1 {
		return nil, fmt.Errorf("min count must be positive, got %d", cfg.MinCount)
	}
	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("max attempts must be positive, got %d", cfg.MaxAttempts)
	}
	switch cfg.Merge {
	case "":
		cfg.Merge = MergeAppend
	case MergeAppend, MergeOverwrite:
	default:
		return nil, fmt.Errorf("unknown merge policy %q", cfg.Merge)
	}
	if cfg.Structured && cfg.Format != FormatJSON {
		return nil, fmt.Errorf("structured output needs the %q format, got %q", FormatJSON, cfg.Format)
	}
	parser, err := NewParser(cfg.Format)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{provider: provider, parser: parser, config: cfg, log: log}, nil
}

// Config returns the generator's settings.
func (g *Generator) Config() Config {
	return g.config
}

// Generate builds a prompt from the first MaxChunks chunks and calls the
// completion service until the pool holds MinCount questions or
// MaxAttempts calls have been made.
//
// The returned Result is never nil. When the cap is hit the error is an
// *ExhaustedError and Result carries the partial pool; on cancellation the
// error is the context's and Result again carries what was collected.
func (g *Generator) Generate(ctx context.Context, source string, chunks []chunker.Chunk) (*Result, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)
	ctx = llm.WithSource(ctx, source)
	log := g.log.With("source", source)

	head := chunker.Config{MaxChunks: g.config.MaxChunks}.Head(chunks)
	prompt := BuildPrompt(g.config.Format, document.Normalize(chunker.Join(head)))

	res := &Result{Source: source}
	acc := Pool{}
	var lastErr error
	failures := 0

	for attempt := 1; attempt <= g.config.MaxAttempts; attempt++ {
		if failures > 0 && g.config.AttemptWait > 0 {
			wait := llm.Backoff(g.config.AttemptWait, g.config.MaxAttemptWait, 2, failures-1)
			if err := llm.Sleep(ctx, wait); err != nil {
				res.Pool = Renumber(acc)
				return res, err
			}
		}

		res.Attempts = attempt
		text, err := g.complete(ctx, prompt)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				res.Pool = Renumber(acc)
				return res, ctxErr
			}
			failures++
			res.ServiceErrors++
			lastErr = &ServiceError{Attempt: attempt, Err: err}
			log.Warn("completion failed", "attempt", attempt, "error", err)
			continue
		}
		failures = 0

		parsed := g.parser.Parse(text)
		res.Malformed += parsed.Malformed
		res.Dropped += parsed.Dropped
		switch g.config.Merge {
		case MergeOverwrite:
			acc.Merge(parsed.Questions)
		case MergeAppend:
			if g.config.Dedup {
				res.Duplicates += acc.AppendUnique(parsed.Questions)
			} else {
				acc.Append(parsed.Questions)
			}
		}

		log.Debug("parsed completion",
			"attempt", attempt,
			"parsed", len(parsed.Questions),
			"malformed", parsed.Malformed,
			"dropped", parsed.Dropped,
			"duplicates", res.Duplicates,
			"pool", len(acc),
		)

		if len(acc) >= g.config.MinCount {
			res.Pool = Renumber(acc)
			return res, nil
		}
	}

	res.Pool = Renumber(acc)
	return res, &ExhaustedError{
		Attempts: res.Attempts,
		Want:     g.config.MinCount,
		Pool:     res.Pool,
		LastErr:  lastErr,
	}
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	if g.config.Structured {
		return llm.CompleteJSON(ctx, g.provider, prompt, BatchSchema, g.config.MaxTokens, g.config.Temperature)
	}
	return llm.Complete(ctx, g.provider, prompt, g.config.MaxTokens, g.config.Temperature)
}

// IsExhausted reports whether err is a retry-cap exhaustion and returns it.
func IsExhausted(err error) (*ExhaustedError, bool) {
	var ee *ExhaustedError
	ok := errors.As(err, &ee)
	return ee, ok
}
