package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizforge/internal/document"
	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/mcq"
	"github.com/abhisek/quizforge/internal/store"
)

func questionPool(n int) mcq.Pool {
	p := mcq.Pool{}
	for i := 1; i <= n; i++ {
		p[i] = mcq.Question{
			Question: fmt.Sprintf("Question %d?", i),
			Options: map[string]string{
				"A": "one", "B": "two", "C": "three", "D": "four",
			},
			CorrectAnswer: "C) three",
		}
	}
	return p
}

func poolResponse(n int) llm.MockResponse {
	return llm.TextResponse(mcq.Render(questionPool(n), mcq.FormatJSON))
}

func writeDoc(t *testing.T, name, sentence string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat(sentence+" ", 10)), 0o644))
	return path
}

func newPipeline(t *testing.T, mock *llm.MockProvider, opts ...Option) *Pipeline {
	t.Helper()
	cfg := mcq.DefaultConfig()
	cfg.AttemptWait = 0
	cfg.MaxAttempts = 3
	gen, err := mcq.New(mock, cfg, nil)
	require.NoError(t, err)
	return New(document.TextLoader{}, gen, DefaultConfig(), nil, opts...)
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestRun_IsolatesFailures(t *testing.T) {
	mock := llm.NewMockProvider(poolResponse(12))
	mock.Repeat = true
	p := newPipeline(t, mock)

	docs := []Document{
		{Source: "Lec1", Path: writeDoc(t, "a.txt", "Cells are the basic unit of life.")},
		{Source: "Lec2", Path: filepath.Join(t.TempDir(), "missing.txt")},
		{Source: "Lec3", Path: writeDoc(t, "c.txt", "Enzymes speed up chemical reactions.")},
	}
	batch, err := p.Run(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, batch.Outcomes, 3)
	assert.NotEmpty(t, batch.ID)

	for i, want := range []string{"Lec1", "Lec2", "Lec3"} {
		assert.Equal(t, want, batch.Outcomes[i].Source)
	}

	var le *document.LoadError
	assert.True(t, errors.As(batch.Outcomes[1].Err, &le))
	assert.NoError(t, batch.Outcomes[0].Err)
	assert.NoError(t, batch.Outcomes[2].Err)
	assert.Len(t, batch.Outcomes[0].Pool(), 12)
	assert.NotEmpty(t, batch.Outcomes[0].ContentHash)
	assert.Equal(t, 1, batch.Outcomes[0].Pages)
	assert.Positive(t, batch.Outcomes[0].Chunks)

	pools := batch.Pools(false)
	require.Len(t, pools, 2)
	assert.Equal(t, "Lec1", pools[0].Source)
	assert.Equal(t, "Lec3", pools[1].Source)
	assert.Len(t, batch.Failed(), 1)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRun_ShortDocumentHasNoText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "title.txt")
	require.NoError(t, os.WriteFile(path, []byte("Lecture 1\n\fIntroduction"), 0o644))

	mock := llm.NewMockProvider()
	batch, err := newPipeline(t, mock).Run(context.Background(), []Document{{Source: "Lec1", Path: path}})
	require.NoError(t, err)

	assert.ErrorIs(t, batch.Outcomes[0].Err, ErrNoText)
	assert.Zero(t, mock.CallCount())
}

func TestRun_ExhaustedKeepsPartialPool(t *testing.T) {
	mock := llm.NewMockProvider(poolResponse(2))
	mock.Repeat = true
	st := openStore(t)
	p := newPipeline(t, mock, WithPoolRepo(st.PoolRepo()))

	batch, err := p.Run(context.Background(), []Document{
		{Source: "Lec1", Path: writeDoc(t, "a.txt", "Osmosis moves water across membranes.")},
	})
	require.NoError(t, err)

	out := batch.Outcomes[0]
	_, exhausted := mcq.IsExhausted(out.Err)
	assert.True(t, exhausted)
	assert.Len(t, out.Pool(), 6)
	assert.Empty(t, batch.Pools(false))
	assert.Len(t, batch.Pools(true), 1)

	rec, err := st.PoolRepo().Latest(context.Background(), "Lec1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.Complete)
	assert.Equal(t, 6, rec.Count)
	assert.Equal(t, 3, rec.Attempts)
	assert.Equal(t, batch.ID, rec.BatchID)
}

func TestRun_ReusesStoredPool(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockProvider(poolResponse(12))
	st := openStore(t)
	p := newPipeline(t, mock, WithPoolRepo(st.PoolRepo()))
	p.cfg.Concurrency = 1

	path := writeDoc(t, "a.txt", "Mitosis produces two identical cells.")
	first, err := p.Run(ctx, []Document{{Source: "Lec1", Path: path}})
	require.NoError(t, err)
	require.NoError(t, first.Outcomes[0].Err)
	assert.False(t, first.Outcomes[0].Cached)

	second, err := p.Run(ctx, []Document{{Source: "Lec1", Path: path}})
	require.NoError(t, err)
	require.NoError(t, second.Outcomes[0].Err)
	assert.True(t, second.Outcomes[0].Cached)
	assert.Len(t, second.Outcomes[0].Pool(), 12)
	assert.Equal(t, 1, mock.CallCount())

	recs, err := st.PoolRepo().LatestBatch(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, second.ID, recs[0].BatchID)
	assert.True(t, recs[0].Complete)
}

type memoryCache struct {
	mu    sync.Mutex
	pools map[string]mcq.Pool
	sets  int
}

func (c *memoryCache) key(hash string, f mcq.Format) string { return string(f) + ":" + hash }

func (c *memoryCache) GetPool(_ context.Context, hash string, f mcq.Format) (mcq.Pool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pools[c.key(hash, f)], nil
}

func (c *memoryCache) SetPool(_ context.Context, hash string, f mcq.Format, p mcq.Pool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pools == nil {
		c.pools = map[string]mcq.Pool{}
	}
	c.pools[c.key(hash, f)] = p
	c.sets++
	return nil
}

func (c *memoryCache) DeletePool(_ context.Context, hash string, f mcq.Format) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pools, c.key(hash, f))
	return nil
}

func TestRun_UsesCache(t *testing.T) {
	ctx := context.Background()
	mock := llm.NewMockProvider(poolResponse(12))
	c := &memoryCache{}
	p := newPipeline(t, mock, WithCache(c))

	path := writeDoc(t, "a.txt", "Proteins fold into shapes that set their function.")
	_, err := p.Run(ctx, []Document{{Source: "Lec1", Path: path}})
	require.NoError(t, err)
	assert.Equal(t, 1, c.sets)

	batch, err := p.Run(ctx, []Document{{Source: "Lec7", Path: path}})
	require.NoError(t, err)
	assert.True(t, batch.Outcomes[0].Cached)
	assert.Equal(t, "Lec7", batch.Outcomes[0].Result.Source)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := llm.NewMockProvider()
	batch, err := newPipeline(t, mock).Run(ctx, []Document{
		{Source: "Lec1", Path: writeDoc(t, "a.txt", "Anything at all goes here for the test.")},
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, batch.Outcomes, 1)
	assert.Error(t, batch.Outcomes[0].Err)
	assert.Zero(t, mock.CallCount())
}

func TestContentHash(t *testing.T) {
	assert.Equal(t, ContentHash("abc"), ContentHash("abc"))
	assert.NotEqual(t, ContentHash("abc"), ContentHash("abd"))
	assert.Len(t, ContentHash(""), 64)
}

func TestParseDocuments(t *testing.T) {
	docs, err := ParseDocuments([]string{"a.pdf", "Final=review.pdf", "c.txt"})
	require.NoError(t, err)
	assert.Equal(t, []Document{
		{Source: "Lec1", Path: "a.pdf"},
		{Source: "Final", Path: "review.pdf"},
		{Source: "Lec3", Path: "c.txt"},
	}, docs)

	_, err = ParseDocuments([]string{"Lec1=a.pdf", "b.pdf", "Lec1=c.pdf"})
	assert.Error(t, err)

	_, err = ParseDocuments([]string{"Lec1="})
	assert.Error(t, err)
}
