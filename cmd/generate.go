package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizforge/internal/cache"
	"github.com/abhisek/quizforge/internal/chunker"
	"github.com/abhisek/quizforge/internal/document"
	"github.com/abhisek/quizforge/internal/mcq"
	"github.com/abhisek/quizforge/internal/pipeline"
	"github.com/abhisek/quizforge/internal/session"
	"github.com/abhisek/quizforge/internal/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>...",
	Short: "Generate question pools from lecture documents",
	Long: `Generate a pool of multiple-choice questions for each document.

Documents are named Lec1..LecN in argument order unless given as name=path,
e.g. "quizforge generate intro.pdf cells.pdf Final=review.pdf". Each document
is processed independently; a failing document does not stop the others.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.String("format", string(mcq.FormatJSON), "Response format to request and parse (json, labeled)")
	f.Int("min-count", 10, "Questions to collect per document")
	f.Int("max-attempts", 8, "Completion calls per document before giving up")
	f.Duration("attempt-wait", 2*time.Second, "Base wait after a failed completion call")
	f.String("merge", string(mcq.MergeAppend), "How completions join the pool (append, overwrite)")
	f.Bool("dedup", false, "Skip questions already in the pool (append merge only)")
	f.Bool("structured", false, "Ask the provider for schema-constrained JSON (json format only)")
	f.Int("chunk-size", chunker.DefaultSize, "Chunk size in characters when adaptive sizing is off")
	f.Int("chunk-overlap", chunker.DefaultOverlap, "Characters shared by consecutive chunks")
	f.Bool("adaptive-chunks", true, "Size chunks from the document length")
	f.Int("max-chunks", chunker.DefaultMaxChunks, "Leading chunks used as prompt context")
	f.Int("min-page-chars", document.DefaultMinPageChars, "Drop pages with this many characters or fewer")
	f.Int("concurrency", 4, "Documents processed at once")
	f.String("redis-url", "", "Redis URL for the pool cache (disabled when empty)")
	f.Duration("cache-ttl", cache.DefaultTTL, "Lifetime of cached pools")
	f.Bool("partial", false, "Include pools of documents that fell short of --min-count in the output")
	f.StringP("output", "o", "-", "Output file for the pools JSON (- for stdout)")
	f.Bool("no-session", false, "Do not add the sources to the current session")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	v, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()
	ctx := cmd.Context()

	docs, err := pipeline.ParseDocuments(args)
	if err != nil {
		return err
	}

	format, err := mcq.ParseFormat(v.GetString("format"))
	if err != nil {
		return err
	}
	genCfg := mcq.DefaultConfig()
	genCfg.Format = format
	genCfg.MinCount = v.GetInt("min-count")
	genCfg.MaxAttempts = v.GetInt("max-attempts")
	genCfg.AttemptWait = v.GetDuration("attempt-wait")
	genCfg.MaxChunks = v.GetInt("max-chunks")
	genCfg.Merge = mcq.MergePolicy(v.GetString("merge"))
	genCfg.Dedup = v.GetBool("dedup")
	genCfg.Structured = v.GetBool("structured")

	pipeCfg := pipeline.DefaultConfig()
	pipeCfg.Chunk = chunker.Config{
		Size:      v.GetInt("chunk-size"),
		Overlap:   v.GetInt("chunk-overlap"),
		Adaptive:  v.GetBool("adaptive-chunks"),
		MaxChunks: genCfg.MaxChunks,
	}
	pipeCfg.MinPageChars = v.GetInt("min-page-chars")
	pipeCfg.Concurrency = v.GetInt("concurrency")

	st, err := openStore(v)
	if err != nil {
		return err
	}
	defer st.Close()

	provider, err := newProvider(ctx, st, log)
	if err != nil {
		return err
	}
	gen, err := mcq.New(provider, genCfg, log)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{pipeline.WithPoolRepo(st.PoolRepo())}
	if url := v.GetString("redis-url"); url != "" {
		client, err := cache.Connect(ctx, url)
		if err != nil {
			log.Warn("pool cache disabled", "error", err)
		} else {
			defer client.Close()
			opts = append(opts, pipeline.WithCache(cache.NewPoolCache(client, v.GetDuration("cache-ttl"))))
		}
	}

	batch, err := pipeline.New(document.NewLoader(), gen, pipeCfg, log, opts...).Run(ctx, docs)
	if err != nil {
		return err
	}

	for _, o := range batch.Outcomes {
		status := "ok"
		switch {
		case o.Err != nil:
			status = "FAILED: " + o.Err.Error()
		case o.Cached:
			status = "ok (reused)"
		}
		fmt.Fprintf(os.Stderr, "%-8s %-40s %3d questions  %s\n", o.Source, o.Path, len(o.Pool()), status)
	}

	if !v.GetBool("no-session") {
		if err := addSources(cmd, st.SessionRepo(), batch); err != nil {
			log.Warn("session not updated", "error", err)
		}
	}

	if err := writeJSON(v.GetString("output"), batch.Pools(v.GetBool("partial"))); err != nil {
		return err
	}

	if failed := batch.Failed(); len(failed) == len(batch.Outcomes) {
		return errors.New("no document produced a complete pool")
	}
	return nil
}

// addSources records every successful source except the final review as a
// subject of the current session, keeping existing subjects and scores.
func addSources(cmd *cobra.Command, repo store.SessionRepo, batch *pipeline.Batch) error {
	ctx := cmd.Context()
	m := session.NewManager(repo)
	sess, err := m.Current(ctx, "")
	if err != nil {
		return err
	}
	existing := make(map[string]bool, len(sess.Subjects))
	for _, n := range sess.Names() {
		existing[n] = true
	}
	for _, sp := range batch.Pools(false) {
		if existing[sp.Source] || sp.Source == mcq.DefaultFinalSource {
			continue
		}
		if err := sess.Add(sp.Source); err != nil {
			return err
		}
	}
	return m.Save(ctx, sess)
}
