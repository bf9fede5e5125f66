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

var poolColumns = []string{
	"id", "sequence", "created_at", "batch_id", "source", "content_hash",
	"format", "count", "attempts", "complete", "malformed", "dropped", "questions",
}

type poolRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *poolRepo) Save(ctx context.Context, rec *PoolRecord) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	questions := rec.Questions
	if len(questions) == 0 {
		questions = []byte("{}")
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(QuestionPoolsTable.Name).
		Columns(poolColumns[1:]...).
		Values(
			seqNum,
			rec.Timestamp.UnixMilli(),
			rec.BatchID,
			rec.Source,
			rec.ContentHash,
			rec.Format,
			rec.Count,
			rec.Attempts,
			rec.Complete,
			rec.Malformed,
			rec.Dropped,
			string(questions),
		).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save pool %q: %w", rec.Source, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("pool id: %w", err)
	}
	rec.ID = int(id)
	rec.Sequence = seqNum
	return nil
}

func (r *poolRepo) Latest(ctx context.Context, source string) (*PoolRecord, error) {
	return r.first(ctx, entsql.EQ("source", source))
}

func (r *poolRepo) FindByHash(ctx context.Context, hash, format string) (*PoolRecord, error) {
	return r.first(ctx, entsql.And(
		entsql.EQ("content_hash", hash),
		entsql.EQ("format", format),
		entsql.EQ("complete", true),
	))
}

func (r *poolRepo) first(ctx context.Context, where *entsql.Predicate) (*PoolRecord, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(poolColumns...).
		From(entsql.Table(QuestionPoolsTable.Name)).
		Where(where).
		OrderBy(entsql.Desc("sequence")).
		Limit(1).
		Query()

	rec, err := scanPool(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (r *poolRepo) LatestBatch(ctx context.Context) ([]PoolRecord, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("batch_id").
		From(entsql.Table(QuestionPoolsTable.Name)).
		OrderBy(entsql.Desc("sequence")).
		Limit(1).
		Query()

	var batchID string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&batchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest batch: %w", err)
	}

	query, args = entsql.Dialect(dialect.SQLite).
		Select(poolColumns...).
		From(entsql.Table(QuestionPoolsTable.Name)).
		Where(entsql.EQ("batch_id", batchID)).
		OrderBy("sequence").
		Query()
	return r.query(ctx, query, args)
}

func (r *poolRepo) List(ctx context.Context, opts QueryOpts) ([]PoolRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(poolColumns...).
		From(entsql.Table(QuestionPoolsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	if p := opts.predicate(); p != nil {
		sel = sel.Where(p)
	}
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	recs, err := r.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].Questions = nil
	}
	return recs, nil
}

func (r *poolRepo) query(ctx context.Context, query string, args []any) ([]PoolRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pools: %w", err)
	}
	defer rows.Close()

	var out []PoolRecord
	for rows.Next() {
		rec, err := scanPool(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanPool(row rowScanner) (*PoolRecord, error) {
	var (
		rec       PoolRecord
		ms        int64
		questions string
	)
	err := row.Scan(
		&rec.ID, &rec.Sequence, &ms, &rec.BatchID, &rec.Source, &rec.ContentHash,
		&rec.Format, &rec.Count, &rec.Attempts, &rec.Complete, &rec.Malformed,
		&rec.Dropped, &questions,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan pool: %w", err)
	}
	rec.Timestamp = time.UnixMilli(ms).UTC()
	rec.Questions = []byte(questions)
	return &rec, nil
}
