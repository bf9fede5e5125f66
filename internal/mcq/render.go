package mcq

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Render serializes a pool in format f, in key order. Parsing the output
// with the matching parser yields the same pool, provided keys are
// contiguous from 1 in the JSON format.
func Render(p Pool, f Format) string {
	switch f {
	case FormatLabeled:
		return renderLabeled(p)
	default:
		return renderJSON(p)
	}
}

type jsonQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Degree        int      `json:"degree,omitempty"`
}

func renderJSON(p Pool) string {
	var b strings.Builder
	b.WriteString("[\n")
	for i, k := range p.Keys() {
		q := p[k]
		jq := jsonQuestion{
			Question:      q.Question,
			CorrectAnswer: q.CorrectAnswer,
			Degree:        q.Degree,
			Options:       []string{},
		}
		for _, l := range Labels {
			if text, ok := q.Options[l]; ok {
				jq.Options = append(jq.Options, l+") "+text)
			}
		}
		data, err := json.Marshal(jq)
		if err != nil {
			// Only strings and ints; cannot fail.
			panic(err)
		}
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("  ")
		b.Write(data)
	}
	b.WriteString("\n]\n")
	return b.String()
}

func renderLabeled(p Pool) string {
	var b strings.Builder
	for _, k := range p.Keys() {
		q := p[k]
		fmt.Fprintf(&b, "**Question %d:** %s\n", k, q.Question)
		for _, l := range Labels {
			fmt.Fprintf(&b, "%s) %s\n", l, q.Options[l])
		}
		fmt.Fprintf(&b, "Correct Answer: %s", q.CorrectAnswer)
		if q.Degree > 0 {
			fmt.Fprintf(&b, " (%d)", q.Degree)
		}
		b.WriteString("\n\n")
	}
	return b.String()
}
