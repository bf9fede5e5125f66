// Package session keeps the ordered list of subjects a learner is preparing
// for, with the prior exam score of each, across command invocations.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizforge/internal/mcq"
)

// ErrUnknownSubject is returned when a subject is not in the session.
var ErrUnknownSubject = errors.New("unknown subject")

// Subject is one source the learner is examined on.
type Subject struct {
	Name string `json:"name"`

	// Score is the prior exam score in [0, 100], nil until recorded.
	Score *float64 `json:"score,omitempty"`
}

// Session is an ordered set of subjects. Subject order is the order they
// were added and drives allocation order and positional naming.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Subjects  []Subject
}

// New returns an empty session with a fresh ID.
func New() *Session {
	return &Session{ID: uuid.NewString()}
}

// Add appends subjects. Names are trimmed; empty and duplicate names are
// rejected and nothing is added.
func (s *Session) Add(names ...string) error {
	var added []Subject
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			return errors.New("empty subject name")
		}
		if s.index(name) >= 0 || slices.ContainsFunc(added, func(sub Subject) bool { return sub.Name == name }) {
			return fmt.Errorf("subject %q already in session", name)
		}
		added = append(added, Subject{Name: name})
	}
	s.Subjects = append(s.Subjects, added...)
	return nil
}

// Remove drops a subject.
func (s *Session) Remove(name string) error {
	i := s.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSubject, name)
	}
	s.Subjects = slices.Delete(s.Subjects, i, i+1)
	return nil
}

// SetScore records a subject's score.
func (s *Session) SetScore(name string, score float64) error {
	i := s.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSubject, name)
	}
	if math.IsNaN(score) || score < 0 || score > 100 {
		return fmt.Errorf("score for %q is %v, want 0 to 100", name, score)
	}
	s.Subjects[i].Score = &score
	return nil
}

// Names returns subject names in order.
func (s *Session) Names() []string {
	out := make([]string, len(s.Subjects))
	for i, sub := range s.Subjects {
		out[i] = sub.Name
	}
	return out
}

// Scores returns the scores in subject order. Every subject must be scored.
func (s *Session) Scores() ([]mcq.Score, error) {
	out := make([]mcq.Score, 0, len(s.Subjects))
	var missing []string
	for _, sub := range s.Subjects {
		if sub.Score == nil {
			missing = append(missing, sub.Name)
			continue
		}
		out = append(out, mcq.Score{Source: sub.Name, Value: *sub.Score})
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("no score recorded for %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func (s *Session) index(name string) int {
	name = strings.TrimSpace(name)
	return slices.IndexFunc(s.Subjects, func(sub Subject) bool { return sub.Name == name })
}

func (s *Session) subjectsJSON() (json.RawMessage, error) {
	subjects := s.Subjects
	if subjects == nil {
		subjects = []Subject{}
	}
	return json.Marshal(subjects)
}
