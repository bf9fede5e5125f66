// Package pipeline runs question generation over a batch of documents,
// one worker per document, each with its own pool and error.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizforge/internal/cache"
	"github.com/abhisek/quizforge/internal/chunker"
	"github.com/abhisek/quizforge/internal/document"
	"github.com/abhisek/quizforge/internal/logger"
	"github.com/abhisek/quizforge/internal/mcq"
	"github.com/abhisek/quizforge/internal/store"
)

// ErrNoText is returned for a document with no page long enough to keep.
var ErrNoText = errors.New("no usable text")

// Config controls document preparation and batch concurrency.
type Config struct {
	Chunk        chunker.Config
	MinPageChars int

	// Concurrency bounds how many documents are processed at once. Zero
	// means one per CPU.
	Concurrency int
}

// DefaultConfig returns the standard pipeline settings.
func DefaultConfig() Config {
	return Config{
		Chunk:        chunker.DefaultConfig(),
		MinPageChars: document.DefaultMinPageChars,
		Concurrency:  4,
	}
}

// Outcome is the result for one document. Err is nil only when a full
// pool was produced; an exhausted generator still leaves its partial pool
// in Result.
type Outcome struct {
	Document
	ContentHash string
	Pages       int
	Chunks      int
	Cached      bool
	Result      *mcq.Result
	Err         error
}

// Pool returns the outcome's pool, or nil if nothing was generated.
func (o Outcome) Pool() mcq.Pool {
	if o.Result == nil {
		return nil
	}
	return o.Result.Pool
}

// Batch is the result of one Run, outcomes in input order.
type Batch struct {
	ID       string
	Outcomes []Outcome
}

// Pools returns the non-empty pools in input order. Partial pools from
// failed documents are included only when partial is set.
func (b *Batch) Pools(partial bool) mcq.Pools {
	var out mcq.Pools
	for _, o := range b.Outcomes {
		if len(o.Pool()) == 0 || (o.Err != nil && !partial) {
			continue
		}
		out = append(out, mcq.SourcePool{Source: o.Source, Pool: o.Pool()})
	}
	return out
}

// Failed returns the outcomes that carry an error.
func (b *Batch) Failed() []Outcome {
	var out []Outcome
	for _, o := range b.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Pipeline loads, chunks and generates questions for documents.
type Pipeline struct {
	loader document.Loader
	gen    *mcq.Generator
	cfg    Config
	log    *logger.Logger

	cache cache.PoolCache
	pools store.PoolRepo
}

// Option configures optional collaborators.
type Option func(*Pipeline)

// WithCache reuses and fills a pool cache keyed by content hash.
func WithCache(c cache.PoolCache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithPoolRepo persists every generated pool and reuses complete pools
// already stored for the same content.
func WithPoolRepo(r store.PoolRepo) Option {
	return func(p *Pipeline) { p.pools = r }
}

// New creates a Pipeline. A nil log discards output.
func New(loader document.Loader, gen *mcq.Generator, cfg Config, log *logger.Logger, opts ...Option) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	p := &Pipeline{loader: loader, gen: gen, cfg: cfg, log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes docs concurrently. A failing document never stops the
// others; its error is recorded in its Outcome. Run itself only fails when
// ctx is cancelled, and then still returns what finished.
func (p *Pipeline) Run(ctx context.Context, docs []Document) (*Batch, error) {
	batch := &Batch{ID: uuid.NewString(), Outcomes: make([]Outcome, len(docs))}

	limit := p.cfg.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				batch.Outcomes[i] = Outcome{Document: doc, Err: err}
				return err
			}
			batch.Outcomes[i] = p.process(gctx, batch.ID, doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return batch, err
	}
	return batch, ctx.Err()
}

func (p *Pipeline) process(ctx context.Context, batchID string, doc Document) Outcome {
	out := Outcome{Document: doc}
	log := p.log.With("source", doc.Source, "path", doc.Path)

	pages, err := p.loader.Load(ctx, doc.Path)
	if err != nil {
		out.Err = err
		log.Warn("load failed", "error", err)
		return out
	}
	pages = document.FilterPages(pages, p.cfg.MinPageChars)
	out.Pages = len(pages)
	if len(pages) == 0 {
		out.Err = &document.LoadError{Path: doc.Path, Err: ErrNoText}
		log.Warn("no usable pages")
		return out
	}

	text := document.Join(pages)
	out.ContentHash = ContentHash(text)
	format := p.gen.Config().Format

	if pool := p.lookup(ctx, out.ContentHash, format, log); pool != nil {
		out.Cached = true
		out.Result = &mcq.Result{Source: doc.Source, Pool: pool}
		log.Info("reusing pool", "questions", len(pool))
	} else {
		chunks := chunker.Split(text, p.cfg.Chunk)
		out.Chunks = len(chunks)
		out.Result, out.Err = p.gen.Generate(ctx, doc.Source, chunks)
		if out.Err == nil {
			p.remember(ctx, out.ContentHash, format, out.Result.Pool, log)
		}
		log.Info("generated pool",
			"questions", len(out.Result.Pool),
			"attempts", out.Result.Attempts,
			"malformed", out.Result.Malformed,
			"dropped", out.Result.Dropped,
		)
	}

	if p.pools != nil && out.Result != nil {
		if err := p.persist(ctx, batchID, format, out); err != nil {
			out.Err = errors.Join(out.Err, err)
		}
	}
	return out
}

// lookup checks the cache, then the store, for a complete pool generated
// from the same text. Lookup failures are logged and treated as misses.
func (p *Pipeline) lookup(ctx context.Context, hash string, format mcq.Format, log *logger.Logger) mcq.Pool {
	minCount := p.gen.Config().MinCount
	if p.cache != nil {
		pool, err := p.cache.GetPool(ctx, hash, format)
		if err != nil {
			log.Warn("pool cache read failed", "error", err)
		} else if len(pool) >= minCount {
			return mcq.Renumber(pool)
		}
	}
	if p.pools != nil {
		rec, err := p.pools.FindByHash(ctx, hash, string(format))
		if err != nil {
			log.Warn("pool lookup failed", "error", err)
			return nil
		}
		if rec == nil {
			return nil
		}
		var pool mcq.Pool
		if err := json.Unmarshal(rec.Questions, &pool); err != nil {
			log.Warn("stored pool unreadable", "pool_id", rec.ID, "error", err)
			return nil
		}
		if len(pool) < minCount {
			return nil
		}
		pool = mcq.Renumber(pool)
		p.remember(ctx, hash, format, pool, log)
		return pool
	}
	return nil
}

func (p *Pipeline) remember(ctx context.Context, hash string, format mcq.Format, pool mcq.Pool, log *logger.Logger) {
	if p.cache == nil {
		return
	}
	if err := p.cache.SetPool(ctx, hash, format, pool); err != nil {
		log.Warn("pool cache write failed", "error", err)
	}
}

func (p *Pipeline) persist(ctx context.Context, batchID string, format mcq.Format, out Outcome) error {
	questions, err := json.Marshal(out.Result.Pool)
	if err != nil {
		return fmt.Errorf("encode pool %s: %w", out.Source, err)
	}
	rec := &store.PoolRecord{
		BatchID:     batchID,
		Source:      out.Source,
		ContentHash: out.ContentHash,
		Format:      string(format),
		Count:       len(out.Result.Pool),
		Attempts:    out.Result.Attempts,
		Complete:    out.Err == nil,
		Malformed:   out.Result.Malformed,
		Dropped:     out.Result.Dropped,
		Questions:   questions,
	}
	if err := p.pools.Save(ctx, rec); err != nil {
		return fmt.Errorf("persist pool %s: %w", out.Source, err)
	}
	return nil
}

// ContentHash returns the hex sha256 of a document's kept text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
