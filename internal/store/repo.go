package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	Source       string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a persisted LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one request purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// EventQueryRepo adds read access to recorded LLM events.
type EventQueryRepo interface {
	EventRepo

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns the event with the given ID, or nil if absent.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// PoolRecord is one source's generated question pool as persisted.
// Questions holds the exported JSON form of the pool.
type PoolRecord struct {
	ID          int
	Sequence    int64
	Timestamp   time.Time
	BatchID     string
	Source      string
	ContentHash string
	Format      string
	Count       int
	Attempts    int
	Complete    bool
	Malformed   int
	Dropped     int
	Questions   json.RawMessage
}

// PoolRepo manages generated question pools.
type PoolRepo interface {
	// Save stores a pool and fills in its ID, Sequence and Timestamp.
	Save(ctx context.Context, rec *PoolRecord) error

	// Latest returns the newest pool for source, or nil if none exist.
	Latest(ctx context.Context, source string) (*PoolRecord, error)

	// LatestBatch returns every pool saved by the most recent batch, in
	// the order they were saved.
	LatestBatch(ctx context.Context) ([]PoolRecord, error)

	// FindByHash returns the newest complete pool generated from content
	// with the given hash and format, or nil.
	FindByHash(ctx context.Context, hash, format string) (*PoolRecord, error)

	// List returns pool summaries newest first. Questions is left empty.
	List(ctx context.Context, opts QueryOpts) ([]PoolRecord, error)
}

// ExamRecord is an assembled exam as persisted.
type ExamRecord struct {
	ID         int
	ExamID     string
	Sequence   int64
	Timestamp  time.Time
	SessionID  string
	Total      int
	Allocation json.RawMessage
	Questions  json.RawMessage
}

// ExamRepo manages assembled exams.
type ExamRepo interface {
	Save(ctx context.Context, rec *ExamRecord) error

	// Get returns the exam with the given exam ID, or nil.
	Get(ctx context.Context, examID string) (*ExamRecord, error)

	// Latest returns the most recent exam, or nil if none exist.
	Latest(ctx context.Context) (*ExamRecord, error)
}

// SessionRecord is a persisted session. Subjects holds the ordered
// subject/score list as JSON.
type SessionRecord struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Subjects  json.RawMessage
}

// SessionRepo manages sessions.
type SessionRepo interface {
	// Save inserts the session or replaces its subjects.
	Save(ctx context.Context, rec *SessionRecord) error

	// Get returns the session with the given ID, or nil.
	Get(ctx context.Context, id string) (*SessionRecord, error)

	// Latest returns the most recently updated session, or nil.
	Latest(ctx context.Context) (*SessionRecord, error)
}
