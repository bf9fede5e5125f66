package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/quizforge/internal/store"
)

// Manager loads and saves sessions.
type Manager struct {
	repo store.SessionRepo
}

// NewManager creates a Manager backed by repo.
func NewManager(repo store.SessionRepo) *Manager {
	return &Manager{repo: repo}
}

// Save persists s, updating its timestamps.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	subjects, err := s.subjectsJSON()
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	rec := &store.SessionRecord{ID: s.ID, CreatedAt: s.CreatedAt, Subjects: subjects}
	if err := m.repo.Save(ctx, rec); err != nil {
		return err
	}
	s.CreatedAt, s.UpdatedAt = rec.CreatedAt, rec.UpdatedAt
	return nil
}

// Load returns the session with the given ID, or nil if none exists.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	rec, err := m.repo.Get(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	return fromRecord(rec)
}

// Latest returns the most recently saved session, or nil.
func (m *Manager) Latest(ctx context.Context) (*Session, error) {
	rec, err := m.repo.Latest(ctx)
	if err != nil || rec == nil {
		return nil, err
	}
	return fromRecord(rec)
}

// Current returns the session named by id, or the latest one when id is
// empty, or a new unsaved session when none exists yet.
func (m *Manager) Current(ctx context.Context, id string) (*Session, error) {
	if id != "" {
		s, err := m.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, fmt.Errorf("session %s not found", id)
		}
		return s, nil
	}
	s, err := m.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = New()
	}
	return s, nil
}

func fromRecord(rec *store.SessionRecord) (*Session, error) {
	s := &Session{ID: rec.ID, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt}
	if len(rec.Subjects) > 0 {
		if err := json.Unmarshal(rec.Subjects, &s.Subjects); err != nil {
			return nil, fmt.Errorf("decode session %s: %w", rec.ID, err)
		}
	}
	return s, nil
}
