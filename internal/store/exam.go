package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var examColumns = []string{
	"id", "exam_id", "sequence", "created_at", "session_id", "total",
	"allocation", "questions",
}

type examRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *examRepo) Save(ctx context.Context, rec *ExamRecord) error {
	if rec.ExamID == "" {
		return errors.New("save exam: empty exam id")
	}
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(ExamsTable.Name).
		Columns(examColumns[1:]...).
		Values(
			rec.ExamID,
			seqNum,
			rec.Timestamp.UnixMilli(),
			rec.SessionID,
			rec.Total,
			string(orEmptyObject(rec.Allocation)),
			string(orEmptyObject(rec.Questions)),
		).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save exam: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("exam id: %w", err)
	}
	rec.ID = int(id)
	rec.Sequence = seqNum
	return nil
}

func (r *examRepo) Get(ctx context.Context, examID string) (*ExamRecord, error) {
	return r.first(ctx, entsql.Dialect(dialect.SQLite).
		Select(examColumns...).
		From(entsql.Table(ExamsTable.Name)).
		Where(entsql.EQ("exam_id", examID)))
}

func (r *examRepo) Latest(ctx context.Context) (*ExamRecord, error) {
	return r.first(ctx, entsql.Dialect(dialect.SQLite).
		Select(examColumns...).
		From(entsql.Table(ExamsTable.Name)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1))
}

func (r *examRepo) first(ctx context.Context, sel *entsql.Selector) (*ExamRecord, error) {
	query, args := sel.Query()

	var (
		rec        ExamRecord
		ms         int64
		allocation string
		questions  string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&rec.ID, &rec.ExamID, &rec.Sequence, &ms, &rec.SessionID, &rec.Total,
		&allocation, &questions,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query exam: %w", err)
	}
	rec.Timestamp = time.UnixMilli(ms).UTC()
	rec.Allocation = []byte(allocation)
	rec.Questions = []byte(questions)
	return &rec, nil
}

func orEmptyObject(b []byte) []byte {
	if len(b) == 0 {
		return []byte("{}")
	}
	return b
}
