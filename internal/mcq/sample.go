package mcq

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// RangeMode selects which pool indices the sampler may draw.
type RangeMode string

const (
	// RangeInclusive draws from 1..len(pool).
	RangeInclusive RangeMode = "inclusive"

	// RangeExcludeLast draws from 1..len(pool)-1, never the last question.
	RangeExcludeLast RangeMode = "exclude-last"
)

// ParseRangeMode validates a range mode name.
func ParseRangeMode(s string) (RangeMode, error) {
	switch m := RangeMode(strings.ToLower(strings.TrimSpace(s))); m {
	case RangeInclusive, RangeExcludeLast:
		return m, nil
	case "":
		return RangeInclusive, nil
	default:
		return "", fmt.Errorf("unknown sample range %q (want %q or %q)", s, RangeInclusive, RangeExcludeLast)
	}
}

// Sampler draws questions without replacement. It is safe for concurrent
// use.
type Sampler struct {
	mu    sync.Mutex
	rng   *rand.Rand
	Range RangeMode
}

// NewSampler returns a sampler seeded with seed, or randomly when seed is 0.
func NewSampler(seed uint64, mode RangeMode) *Sampler {
	if seed == 0 {
		seed = rand.Uint64()
	}
	if mode == "" {
		mode = RangeInclusive
	}
	return &Sampler{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Range: mode,
	}
}

// Sample draws count distinct questions from pool and returns them in
// random order. Index 0 is never drawn. Asking for more than the range
// holds fails with *InsufficientPoolError rather than returning fewer.
func (s *Sampler) Sample(pool Pool, count int) ([]Question, error) {
	if count < 0 {
		return nil, fmt.Errorf("negative sample count %d", count)
	}

	hi := len(pool)
	if s.Range == RangeExcludeLast {
		hi--
	}
	var candidates []int
	for _, k := range pool.Keys() {
		if k >= 1 && k <= hi {
			candidates = append(candidates, k)
		}
	}
	if count > len(candidates) {
		return nil, &InsufficientPoolError{Requested: count, Available: len(candidates)}
	}

	s.mu.Lock()
	s.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	s.mu.Unlock()

	out := make([]Question, count)
	for i, k := range candidates[:count] {
		out[i] = pool[k]
	}
	return out, nil
}

// Section is one source's part of an exam.
type Section struct {
	Source    string
	Questions []Question
}

// Exam is an assembled exam. It exports as
// {source: {position: question}} with sources in allocation order.
type Exam struct {
	ID       string
	Sections []Section
}

// Len returns the number of questions in the exam.
func (e Exam) Len() int {
	n := 0
	for _, s := range e.Sections {
		n += len(s.Questions)
	}
	return n
}

func (e Exam) MarshalJSON() ([]byte, error) {
	keys := make([]string, len(e.Sections))
	vals := make([]any, len(e.Sections))
	for i, s := range e.Sections {
		p := make(Pool, len(s.Questions))
		for j, q := range s.Questions {
			p[j+1] = q
		}
		keys[i], vals[i] = s.Source, p
	}
	return orderedObject(keys, vals)
}

func (e *Exam) UnmarshalJSON(data []byte) error {
	var sections []Section
	err := decodeOrderedObject(data, func(key string, dec *json.Decoder) error {
		var p Pool
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("source %q: %w", key, err)
		}
		sec := Section{Source: key}
		for _, k := range p.Keys() {
			sec.Questions = append(sec.Questions, p[k])
		}
		sections = append(sections, sec)
		return nil
	})
	if err != nil {
		return err
	}
	e.Sections = sections
	return nil
}

// Collection samples each source's allocated count from its pool. Sources
// that cannot be filled are left out of the exam and their errors joined;
// the exam holds every section that could be filled.
func (s *Sampler) Collection(alloc Allocation, pools map[string]Pool) (Exam, error) {
	exam := Exam{ID: uuid.NewString()}
	var errs []error
	for _, share := range alloc {
		pool, ok := pools[share.Source]
		if !ok {
			errs = append(errs, &InsufficientPoolError{Source: share.Source, Requested: share.Count})
			continue
		}
		qs, err := s.Sample(pool, share.Count)
		if err != nil {
			var ipe *InsufficientPoolError
			if errors.As(err, &ipe) {
				ipe.Source = share.Source
			}
			errs = append(errs, err)
			continue
		}
		exam.Sections = append(exam.Sections, Section{Source: share.Source, Questions: qs})
	}
	return exam, errors.Join(errs...)
}

// Shuffle returns the exam's questions flattened in random order, each
// tagged with its source. Used for presenting a mixed exam.
func (s *Sampler) Shuffle(e Exam) []SourcedQuestion {
	var out []SourcedQuestion
	for _, sec := range e.Sections {
		for _, q := range sec.Questions {
			out = append(out, SourcedQuestion{Source: sec.Source, Question: q})
		}
	}
	s.mu.Lock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	s.mu.Unlock()
	return out
}

// SourcedQuestion is a question tagged with the source it came from.
type SourcedQuestion struct {
	Source string `json:"source"`
	Question
}
