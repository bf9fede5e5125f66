package mcq

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Labels are the choice labels of a well-formed question, in order.
var Labels = []string{"A", "B", "C", "D"}

// Question is one parsed multiple-choice question.
type Question struct {
	// Question is the prompt text.
	Question string `json:"question"`

	// Options maps a choice label (A-D) to its answer text.
	Options map[string]string `json:"options"`

	// CorrectAnswer is the answer as the model wrote it, e.g. "B) Paris"
	// or "B". Empty when the model omitted it.
	CorrectAnswer string `json:"correct_answer"`

	// Degree is the optional trailing difficulty/confidence number some
	// labeled-block responses carry. Zero when absent.
	Degree int `json:"degree,omitempty"`
}

var answerLabelRe = regexp.MustCompile(`^\s*\(?([A-D])(?:[).:\]]|$)`)

// AnswerLabel returns the choice label CorrectAnswer refers to, or "" if it
// names none. A bare answer text that equals one option's text also
// resolves to that option's label.
func (q Question) AnswerLabel() string {
	label, _ := q.splitAnswer()
	return label
}

// AnswerMatchesOption reports whether CorrectAnswer names an option and any
// text written after its label is that option's text. "B" and "B) Paris"
// match option B "Paris"; "B) Rome" does not.
func (q Question) AnswerMatchesOption() bool {
	label, text := q.splitAnswer()
	if label == "" {
		return false
	}
	return text == "" || strings.EqualFold(text, strings.TrimSpace(q.Options[label]))
}

// splitAnswer returns the label CorrectAnswer refers to and the text it
// gives for that option, both possibly empty.
func (q Question) splitAnswer() (label, text string) {
	if m := answerLabelRe.FindStringSubmatchIndex(q.CorrectAnswer); m != nil {
		return q.CorrectAnswer[m[2]:m[3]], strings.TrimSpace(q.CorrectAnswer[m[1]:])
	}
	want := strings.TrimSpace(q.CorrectAnswer)
	if want == "" {
		return "", ""
	}
	for _, l := range Labels {
		if strings.EqualFold(strings.TrimSpace(q.Options[l]), want) {
			return l, want
		}
	}
	return "", ""
}

// Pool holds one source's questions keyed by index.
type Pool map[int]Question

// Keys returns the pool's indices in ascending order.
func (p Pool) Keys() []int {
	keys := make([]int, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Merge copies src into p. Colliding keys take src's question.
func (p Pool) Merge(src Pool) {
	for k, q := range src {
		p[k] = q
	}
}

// Append adds src's questions after p's highest key, in src key order.
func (p Pool) Append(src Pool) {
	next := 0
	for k := range p {
		next = max(next, k)
	}
	for _, k := range src.Keys() {
		next++
		p[next] = src[k]
	}
}

// AppendUnique appends like Append but skips questions whose text already
// appears in p, ignoring case and spacing. It returns how many were skipped.
func (p Pool) AppendUnique(src Pool) int {
	seen := make(map[string]bool, len(p))
	for _, q := range p {
		seen[questionKey(q)] = true
	}
	fresh := Pool{}
	skipped := 0
	for _, k := range src.Keys() {
		key := questionKey(src[k])
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true
		fresh[k] = src[k]
	}
	p.Append(fresh)
	return skipped
}

func questionKey(q Question) string {
	return strings.ToLower(strings.Join(strings.Fields(q.Question), " "))
}

// Renumber returns a copy of p with keys closed up to 1..len(p), keeping
// the original key order.
func Renumber(p Pool) Pool {
	out := make(Pool, len(p))
	for i, k := range p.Keys() {
		out[i+1] = p[k]
	}
	return out
}

// Format selects the response grammar the completion service is asked for
// and parsed with.
type Format string

const (
	// FormatJSON is a stream of {"question", "options", "correct_answer"}
	// objects, possibly interleaved with commentary.
	FormatJSON Format = "json"

	// FormatLabeled is repeated "**Question N:** ... A) ... D) ...
	// Correct Answer: ..." blocks.
	FormatLabeled Format = "labeled"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatLabeled:
		return f, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown question format %q (want %q or %q)", s, FormatJSON, FormatLabeled)
	}
}
