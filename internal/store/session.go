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

var sessionColumns = []string{"id", "created_at", "updated_at", "subjects"}

type sessionRepo struct {
	db *sql.DB
}

func (r *sessionRepo) Save(ctx context.Context, rec *SessionRecord) error {
	if rec.ID == "" {
		return errors.New("save session: empty id")
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	subjects := rec.Subjects
	if len(subjects) == 0 {
		subjects = []byte("[]")
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(SessionsTable.Name).
		Columns(sessionColumns...).
		Values(rec.ID, rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli(), string(subjects)).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("updated_at")
				u.SetExcluded("subjects")
			}),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session %s: %w", rec.ID, err)
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*SessionRecord, error) {
	return r.first(ctx, entsql.Dialect(dialect.SQLite).
		Select(sessionColumns...).
		From(entsql.Table(SessionsTable.Name)).
		Where(entsql.EQ("id", id)))
}

func (r *sessionRepo) Latest(ctx context.Context) (*SessionRecord, error) {
	return r.first(ctx, entsql.Dialect(dialect.SQLite).
		Select(sessionColumns...).
		From(entsql.Table(SessionsTable.Name)).
		OrderBy(entsql.Desc("updated_at"), entsql.Desc("rowid")).
		Limit(1))
}

func (r *sessionRepo) first(ctx context.Context, sel *entsql.Selector) (*SessionRecord, error) {
	query, args := sel.Query()

	var (
		rec              SessionRecord
		created, updated int64
		subjects         string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&rec.ID, &created, &updated, &subjects)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	rec.CreatedAt = time.UnixMilli(created).UTC()
	rec.UpdatedAt = time.UnixMilli(updated).UTC()
	rec.Subjects = []byte(subjects)
	return &rec, nil
}
