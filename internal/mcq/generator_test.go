package mcq

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/quizforge/internal/chunker"
	"github.com/abhisek/quizforge/internal/llm"
)

func testChunks() []chunker.Chunk {
	var chunks []chunker.Chunk
	for i, text := range []string{
		"Cells are\nthe basic unit.", "Mitochondria make ATP.", "Plants photosynthesize.",
		"DNA stores information.", "Ribosomes build proteins.", "SIXTH CHUNK NOT USED",
	} {
		chunks = append(chunks, chunker.Chunk{Text: text, Start: i * 100})
	}
	return chunks
}

func threeQuestionResponse() llm.MockResponse {
	return llm.TextResponse("Here you go:\n" + Render(samplePool(3), FormatJSON) + "\nEnjoy.")
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.AttemptWait = 0
	return cfg
}

func TestGenerate_StopsOnceMinCountReached(t *testing.T) {
	mock := llm.NewMockProvider(threeQuestionResponse())
	mock.Repeat = true

	gen, err := New(mock, testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := gen.Generate(context.Background(), "Lec1", testChunks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 4 {
		t.Errorf("calls = %d, want 4", mock.CallCount())
	}
	if res.Attempts != 4 {
		t.Errorf("attempts = %d, want 4", res.Attempts)
	}

	want := make([]int, 12)
	for i := range want {
		want[i] = i + 1
	}
	if got := res.Pool.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want 1..12", got)
	}
	if res.Pool[4].Question != sampleQuestion(1).Question {
		t.Errorf("key 4 should hold the first question of the second call, got %q", res.Pool[4].Question)
	}
}

func TestGenerate_PromptUsesFirstChunksNormalized(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse(Render(samplePool(10), FormatJSON)))
	gen, err := New(mock, testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := gen.Generate(context.Background(), "Lec1", testChunks()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := mock.Calls[0].Messages[0].Content
	if !strings.Contains(prompt, "Cells are the basic unit. Mitochondria make ATP.") {
		t.Errorf("prompt missing normalized context:\n%s", prompt)
	}
	if strings.Contains(prompt, "SIXTH CHUNK") {
		t.Error("prompt includes a chunk beyond the cap")
	}
	if strings.Contains(prompt, ContextPlaceholder) {
		t.Error("placeholder not substituted")
	}
	if mock.Calls[0].Schema != nil {
		t.Error("plain completion should not send a schema")
	}
}

func TestGenerate_OverwriteMergeExhausts(t *testing.T) {
	mock := llm.NewMockProvider(threeQuestionResponse())
	mock.Repeat = true

	cfg := testConfig()
	cfg.Merge = MergeOverwrite
	cfg.MaxAttempts = 5
	gen, err := New(mock, cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := gen.Generate(context.Background(), "Lec1", testChunks())
	ee, ok := IsExhausted(err)
	if !ok {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if ee.Attempts != 5 || ee.Want != 10 || len(ee.Pool) != 3 {
		t.Errorf("exhausted = %+v", ee)
	}
	if mock.CallCount() != 5 {
		t.Errorf("calls = %d, want 5", mock.CallCount())
	}
	if len(res.Pool) != 3 {
		t.Errorf("partial pool has %d questions, want 3", len(res.Pool))
	}
}

func TestGenerate_ServiceErrorsAreRetried(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("connection refused")}},
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("connection refused")}},
		llm.TextResponse(Render(samplePool(10), FormatJSON)),
	)

	cfg := testConfig()
	cfg.AttemptWait = time.Millisecond
	cfg.MaxAttemptWait = 5 * time.Millisecond
	gen, err := New(mock, cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := gen.Generate(context.Background(), "Lec1", testChunks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ServiceErrors != 2 || res.Attempts != 3 {
		t.Errorf("service errors = %d attempts = %d, want 2/3", res.ServiceErrors, res.Attempts)
	}
	if len(res.Pool) != 10 {
		t.Errorf("pool = %d, want 10", len(res.Pool))
	}
}

func TestGenerate_ExhaustionCarriesPartialPoolAndLastError(t *testing.T) {
	mock := llm.NewMockProvider(
		threeQuestionResponse(),
		llm.MockResponse{Err: errors.New("boom")},
	)
	mock.Repeat = true

	cfg := testConfig()
	cfg.MaxAttempts = 3
	gen, err := New(mock, cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := gen.Generate(context.Background(), "Lec1", testChunks())
	ee, ok := IsExhausted(err)
	if !ok {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if len(ee.Pool) != 3 || len(res.Pool) != 3 {
		t.Errorf("partial pool lost: exhausted=%d result=%d", len(ee.Pool), len(res.Pool))
	}

	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected wrapped ServiceError, got %v", err)
	}
	if se.Attempt != 3 {
		t.Errorf("last failing attempt = %d, want 3", se.Attempt)
	}
	if !strings.Contains(err.Error(), "collected 3 of 10") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestGenerate_CancelDuringWait(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: errors.New("rate limited")})
	mock.Repeat = true

	cfg := testConfig()
	cfg.AttemptWait = time.Hour
	cfg.MaxAttemptWait = time.Hour
	gen, err := New(mock, cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	res, err := gen.Generate(ctx, "Lec1", testChunks())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("wait was not cancelled")
	}
	if res == nil || res.Attempts != 1 {
		t.Errorf("result = %+v, want 1 attempt", res)
	}
}

func TestGenerate_LabeledFormat(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse(Render(samplePool(12), FormatLabeled)))

	cfg := testConfig()
	cfg.Format = FormatLabeled
	gen, err := New(mock, cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := gen.Generate(context.Background(), "Lec2", testChunks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Pool) != 12 || mock.CallCount() != 1 {
		t.Errorf("pool = %d calls = %d", len(res.Pool), mock.CallCount())
	}
	if !strings.Contains(mock.Calls[0].Messages[0].Content, "Correct Answer:") {
		t.Error("labeled prompt template not used")
	}
}

func TestGenerate_CountsLeniency(t *testing.T) {
	text := Render(samplePool(10), FormatJSON) +
		`{"question": "short", "options": ["A) a"], "correct_answer": "A) a"}` +
		`{"question": "bad" "x"}`
	mock := llm.NewMockProvider(llm.TextResponse(text))

	gen, err := New(mock, testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := gen.Generate(context.Background(), "Lec1", testChunks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Malformed != 1 || res.Dropped != 1 {
		t.Errorf("malformed=%d dropped=%d, want 1/1", res.Malformed, res.Dropped)
	}
	if len(res.Pool) != 11 {
		t.Errorf("pool = %d, want 11", len(res.Pool))
	}
}

func TestNew_ValidatesConfig(t *testing.T) {
	mock := llm.NewMockProvider()
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"zero min count", func(c *Config) { c.MinCount = 0 }},
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }},
		{"unknown format", func(c *Config) { c.Format = "csv" }},
		{"unknown merge", func(c *Config) { c.Merge = "union" }},
		{"structured labeled", func(c *Config) { c.Format, c.Structured = FormatLabeled, true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			if _, err := New(mock, cfg, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGenerate_StructuredRequestsBatchSchema(t *testing.T) {
	reply := `{"questions": ` + Render(samplePool(3), FormatJSON) + `}`
	if err := llm.Validate(BatchSchema, json.RawMessage(reply)); err != nil {
		t.Fatalf("reply does not fit BatchSchema: %v", err)
	}

	mock := llm.NewMockProvider(llm.TextResponse(reply))
	mock.Repeat = true
	cfg := testConfig()
	cfg.Structured = true
	cfg.MinCount = 3
	gen, err := New(mock, cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := gen.Generate(context.Background(), "Lec1", testChunks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mock.Calls[0].Schema; got != BatchSchema {
		t.Fatalf("request schema = %v, want BatchSchema", got)
	}
	if !reflect.DeepEqual(res.Pool, samplePool(3)) {
		t.Errorf("pool = %+v", res.Pool)
	}
	if res.Malformed != 0 || res.Dropped != 0 {
		t.Errorf("malformed=%d dropped=%d", res.Malformed, res.Dropped)
	}
}

func TestGenerate_PlainRequestHasNoSchema(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse(Render(samplePool(10), FormatJSON)))
	gen, err := New(mock, testConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := gen.Generate(context.Background(), "Lec1", testChunks()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.Calls[0].Schema != nil {
		t.Error("schema sent without Structured")
	}
}

func TestRenumber(t *testing.T) {
	p := Pool{3: sampleQuestion(3), 7: sampleQuestion(7), 10: sampleQuestion(10)}
	got := Renumber(p)
	want := Pool{1: sampleQuestion(3), 2: sampleQuestion(7), 3: sampleQuestion(10)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Renumber = %+v", got)
	}
	if len(Renumber(Pool{})) != 0 {
		t.Error("empty pool should stay empty")
	}
}

func TestPoolMergeAndAppend(t *testing.T) {
	p := Pool{1: sampleQuestion(1), 2: sampleQuestion(2)}
	p.Merge(Pool{2: sampleQuestion(20), 3: sampleQuestion(3)})
	if len(p) != 3 || p[2].Question != sampleQuestion(20).Question {
		t.Errorf("merge = %+v", p)
	}

	p.Append(Pool{1: sampleQuestion(4), 5: sampleQuestion(5)})
	if !reflect.DeepEqual(p.Keys(), []int{1, 2, 3, 4, 5}) || p[4].Question != sampleQuestion(4).Question {
		t.Errorf("append = %v", p.Keys())
	}
}

func TestGenerate_DedupSkipsRepeatedQuestions(t *testing.T) {
	fresh := Pool{}
	for i := 4; i <= 10; i++ {
		fresh[i-3] = sampleQuestion(i)
	}
	mock := llm.NewMockProvider(
		threeQuestionResponse(),
		threeQuestionResponse(),
		llm.TextResponse(Render(fresh, FormatJSON)),
	)

	cfg := testConfig()
	cfg.Dedup = true
	gen, err := New(mock, cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := gen.Generate(context.Background(), "Lec1", testChunks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Attempts != 3 || res.Duplicates != 3 {
		t.Errorf("attempts=%d duplicates=%d, want 3/3", res.Attempts, res.Duplicates)
	}
	if len(res.Pool) != 10 || res.Pool[10].Question != sampleQuestion(10).Question {
		t.Errorf("pool = %v", res.Pool.Keys())
	}
}

func TestPoolAppendUnique(t *testing.T) {
	p := Pool{1: sampleQuestion(1)}
	dup := sampleQuestion(1)
	dup.Question = "  what IS fact 1? "
	skipped := p.AppendUnique(Pool{1: dup, 2: sampleQuestion(2), 3: sampleQuestion(2)})
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(p) != 2 || p[2].Question != sampleQuestion(2).Question {
		t.Errorf("pool = %+v", p)
	}
}
