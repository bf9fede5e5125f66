package mcq

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/abhisek/quizforge/internal/llm"
)

// JSONStreamParser extracts {"question": ...} objects from free text.
// Keys follow match order starting at 1; a candidate that fails to decode
// still consumes its key, leaving a gap that Renumber closes.
type JSONStreamParser struct {
	Validators []Validator
}

var questionObjectStart = regexp.MustCompile(`\{\s*"question"\s*:`)

func (p *JSONStreamParser) Format() Format { return FormatJSON }

func (p *JSONStreamParser) Parse(text string) ParseResult {
	res := ParseResult{Questions: Pool{}}

	pos, key := 0, 0
	for pos < len(text) {
		loc := questionObjectStart.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		key++

		var (
			candidate string
			q         Question
			ok        bool
		)
		if end := closingBrace(text, start); end >= 0 {
			candidate = text[start:end]
			q, ok = decodeQuestion(candidate)
			pos = end
		}
		if !ok {
			// Resume just inside the candidate so an intact object swallowed
			// by an unbalanced one is still found.
			res.Dropped++
			pos = start + 1
			continue
		}

		if llm.Validate(QuestionSchema, json.RawMessage(candidate)) != nil || validate(&q, p.Validators) != nil {
			res.Malformed++
		}
		res.Questions[key] = q
	}
	return res
}

// closingBrace returns the offset just past the brace closing the object
// opened at text[start], honoring JSON string quoting, or -1.
func closingBrace(text string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// decodeQuestion reads whatever fields it can. Only undecodable JSON is
// rejected; wrong types become empty fields.
func decodeQuestion(candidate string) (Question, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return Question{}, false
	}

	q := Question{
		Question:      asString(raw["question"]),
		CorrectAnswer: asString(raw["correct_answer"]),
		Options:       map[string]string{},
	}
	if d, ok := raw["degree"].(float64); ok {
		q.Degree = int(d)
	}

	switch opts := raw["options"].(type) {
	case []any:
		q.Options = optionsFromList(opts)
	case map[string]any:
		for _, l := range Labels {
			if v, ok := opts[l]; ok {
				q.Options[l] = asString(v)
			}
		}
	}
	return q, true
}

// optionsFromList labels list entries. An entry that starts with an unused
// label ("B) ...") keeps that label; others take the next label by
// position. Entries beyond D are ignored.
func optionsFromList(list []any) map[string]string {
	out := make(map[string]string, len(Labels))
	for i, v := range list {
		if i >= len(Labels) {
			break
		}
		text := strings.TrimSpace(asString(v))
		label := Labels[i]
		if l, rest, ok := splitLabel(text); ok {
			if _, used := out[l]; !used {
				label, text = l, rest
			}
		}
		if _, used := out[label]; used {
			continue
		}
		out[label] = text
	}
	return out
}

var optionLabelPrefix = regexp.MustCompile(`^\(?([A-Da-d])[).:]\s*`)

// splitLabel splits "B) Paris" into "B" and "Paris".
func splitLabel(s string) (label, rest string, ok bool) {
	m := optionLabelPrefix.FindStringSubmatchIndex(s)
	if m == nil {
		return "", s, false
	}
	return strings.ToUpper(s[m[2]:m[3]]), s[m[1]:], true
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64, bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}
