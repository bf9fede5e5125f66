package mcq

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

const (
	// MinPerSource and MaxPerSource bound every weighted allocation.
	MinPerSource = 2
	MaxPerSource = 9

	DefaultTotal       = 11
	DefaultFinalSource = "Final"
	DefaultFinalCount  = 9

	maxScore = 100
)

// Score is a prior exam score in [0, 100] for one source.
type Score struct {
	Source string  `json:"source"`
	Value  float64 `json:"score"`
}

// PositionalScores names scores Lec1..LecN in the order given.
func PositionalScores(values ...float64) []Score {
	out := make([]Score, len(values))
	for i, v := range values {
		out[i] = Score{Source: fmt.Sprintf("Lec%d", i+1), Value: v}
	}
	return out
}

// Weight is a source's share of the exam. Higher means more questions.
type Weight struct {
	Source string
	Value  float64
}

// WeightFromScore maps a score to |score/2 - 9.5|.
func WeightFromScore(score float64) float64 {
	return math.Abs(score/2 - 9.5)
}

// WeightsFromScores converts scores to weights, keeping their order.
func WeightsFromScores(scores []Score) ([]Weight, error) {
	out := make([]Weight, len(scores))
	seen := make(map[string]bool, len(scores))
	for i, s := range scores {
		if math.IsNaN(s.Value) || s.Value < 0 || s.Value > maxScore {
			return nil, fmt.Errorf("score for %q is %v, want 0 to %d", s.Source, s.Value, maxScore)
		}
		if seen[s.Source] {
			return nil, fmt.Errorf("duplicate score for %q", s.Source)
		}
		seen[s.Source] = true
		out[i] = Weight{Source: s.Source, Value: WeightFromScore(s.Value)}
	}
	return out, nil
}

// Share is the number of questions drawn from one source.
type Share struct {
	Source string
	Count  int
}

// Allocation is an ordered list of shares. It exports as a JSON object
// with sources in order.
type Allocation []Share

// Sum returns the total question count.
func (a Allocation) Sum() int {
	n := 0
	for _, s := range a {
		n += s.Count
	}
	return n
}

// Count returns the share for source, or 0.
func (a Allocation) Count(source string) int {
	for _, s := range a {
		if s.Source == source {
			return s.Count
		}
	}
	return 0
}

// Map returns the allocation keyed by source.
func (a Allocation) Map() map[string]int {
	out := make(map[string]int, len(a))
	for _, s := range a {
		out[s.Source] = s.Count
	}
	return out
}

func (a Allocation) MarshalJSON() ([]byte, error) {
	keys := make([]string, len(a))
	vals := make([]any, len(a))
	for i, s := range a {
		keys[i], vals[i] = s.Source, s.Count
	}
	return orderedObject(keys, vals)
}

func (a *Allocation) UnmarshalJSON(data []byte) error {
	out := Allocation{}
	err := decodeOrderedObject(data, func(key string, dec *json.Decoder) error {
		var n int
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("source %q: %w", key, err)
		}
		out = append(out, Share{Source: key, Count: n})
		return nil
	})
	if err != nil {
		return err
	}
	*a = out
	return nil
}

// Distribute splits total across the weighted sources in proportion to
// weight, with every count in [MinPerSource, MaxPerSource].
//
// Each source first gets round(weight/sum*total) clamped to the bounds
// (round half to even; a zero weight sum counts as 1). The remaining
// difference is then handed out one unit per source per pass, visiting
// sources by descending weight (ties keep input order) and skipping any
// already at the relevant bound. The result keeps the input order.
//
// total must satisfy MinPerSource*n <= total <= MaxPerSource*n, otherwise
// an *AllocationInfeasibleError is returned.
func Distribute(weights []Weight, total int) (Allocation, error) {
	n := len(weights)
	if total < MinPerSource*n || total > MaxPerSource*n || (n == 0 && total != 0) {
		return nil, &AllocationInfeasibleError{Sources: n, Total: total}
	}

	totalWeight := 0.0
	for _, w := range weights {
		if math.IsNaN(w.Value) || math.IsInf(w.Value, 0) || w.Value < 0 {
			return nil, fmt.Errorf("invalid weight %v for %q", w.Value, w.Source)
		}
		totalWeight += w.Value
	}
	if totalWeight == 0 {
		totalWeight = 1
	}

	alloc := make(Allocation, n)
	sum := 0
	for i, w := range weights {
		c := int(math.RoundToEven(w.Value / totalWeight * float64(total)))
		c = min(MaxPerSource, max(MinPerSource, c))
		alloc[i] = Share{Source: w.Source, Count: c}
		sum += c
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return weights[order[a]].Value > weights[order[b]].Value
	})

	// Feasibility guarantees every pass moves diff by at least one.
	diff := total - sum
	for diff != 0 {
		for _, i := range order {
			switch {
			case diff > 0 && alloc[i].Count < MaxPerSource:
				alloc[i].Count++
				diff--
			case diff < 0 && alloc[i].Count > MinPerSource:
				alloc[i].Count--
				diff++
			}
			if diff == 0 {
				break
			}
		}
	}
	return alloc, nil
}

// FinalDistribution weights scores, distributes total across them and
// appends the fixed final-review share. A final share with Count 0 is
// omitted.
func FinalDistribution(scores []Score, total int, final Share) (Allocation, error) {
	weights, err := WeightsFromScores(scores)
	if err != nil {
		return nil, err
	}
	alloc, err := Distribute(weights, total)
	if err != nil {
		return nil, err
	}
	if final.Count <= 0 {
		return alloc, nil
	}
	for _, s := range alloc {
		if s.Source == final.Source {
			return nil, fmt.Errorf("final source %q also has a score", final.Source)
		}
	}
	return append(alloc, final), nil
}
