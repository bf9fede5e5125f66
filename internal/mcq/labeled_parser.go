package mcq

import (
	"regexp"
	"strconv"
	"strings"
)

// LabeledBlockParser extracts blocks of the form
//
//	**Question N:** <text>
//	A) <text>
//	B) <text>
//	C) <text>
//	D) <text>
//	Correct Answer: <text> (degree)
//
// Keys are the declared question numbers. A block whose fields are missing
// or out of order is dropped.
//
// Each marker is looked for at the start of a line first, so "A)" inside the
// question or an option does not split the block. Markers that never start a
// line are matched inline, which covers "A) x B) y C) z D) w" on one line.
type LabeledBlockParser struct {
	Validators []Validator
}

var (
	blockHeader = regexp.MustCompile(`\*{0,2}Question\s+(\d+)\s*[:.]\s*\*{0,2}`)

	answerAtLine   = regexp.MustCompile(`(?m)^[ \t]*\**Correct Answer\s*:\**[ \t]*`)
	answerInline   = regexp.MustCompile(`\**Correct Answer\s*:\**[ \t]*`)
	trailingDegree = regexp.MustCompile(`[ \t]*\((\d+)\)$`)

	optionAtLine = labelPatterns(`(?m)^[ \t]*%s\)[ \t]*`)
	optionInline = labelPatterns(`\b%s\)[ \t]*`)
)

func labelPatterns(format string) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(Labels))
	for _, l := range Labels {
		out[l] = regexp.MustCompile(strings.Replace(format, "%s", l, 1))
	}
	return out
}

func (p *LabeledBlockParser) Format() Format { return FormatLabeled }

func (p *LabeledBlockParser) Parse(text string) ParseResult {
	res := ParseResult{Questions: Pool{}}

	headers := blockHeader.FindAllStringSubmatchIndex(text, -1)
	for i, h := range headers {
		bodyEnd := len(text)
		if i+1 < len(headers) {
			bodyEnd = headers[i+1][0]
		}

		n, err := strconv.Atoi(text[h[2]:h[3]])
		q, ok := parseBlockBody(text[h[1]:bodyEnd])
		if err != nil || n < 1 || !ok {
			res.Dropped++
			continue
		}

		if validate(&q, p.Validators) != nil {
			res.Malformed++
		}
		res.Questions[n] = q
	}
	return res
}

// parseBlockBody reads the question, options A-D and answer line that follow
// a block header. Markers must appear in that order.
func parseBlockBody(body string) (Question, bool) {
	q := Question{Options: make(map[string]string, len(Labels))}

	// prevLabel owns the text between the previous marker and the next;
	// "" is the question itself.
	prevEnd, prevLabel := 0, ""
	assign := func(start int) {
		s := strings.TrimSpace(body[prevEnd:start])
		if prevLabel == "" {
			q.Question = s
		} else {
			q.Options[prevLabel] = s
		}
	}

	for _, l := range Labels {
		start, end, ok := findMarker(body, prevEnd, optionAtLine[l], optionInline[l])
		if !ok {
			return Question{}, false
		}
		assign(start)
		prevEnd, prevLabel = end, l
	}

	start, end, ok := findMarker(body, prevEnd, answerAtLine, answerInline)
	if !ok {
		return Question{}, false
	}
	assign(start)

	answer := body[end:]
	if nl := strings.IndexByte(answer, '\n'); nl >= 0 {
		answer = answer[:nl]
	}
	q.CorrectAnswer, q.Degree = splitDegree(strings.TrimSpace(answer), q.Options)
	return q, true
}

// findMarker returns the bounds of the first line-start match of atLine in
// body[from:], falling back to the first match of inline.
func findMarker(body string, from int, atLine, inline *regexp.Regexp) (start, end int, ok bool) {
	loc := atLine.FindStringIndex(body[from:])
	if loc == nil {
		loc = inline.FindStringIndex(body[from:])
	}
	if loc == nil {
		return 0, 0, false
	}
	return from + loc[0], from + loc[1], true
}

// splitDegree separates a trailing "(n)" degree from the answer. The suffix
// stays part of the answer when the answer as written already matches its
// option, as in "D) (4)" for an option whose text is "(4)".
func splitDegree(answer string, options map[string]string) (string, int) {
	m := trailingDegree.FindStringSubmatchIndex(answer)
	if m == nil {
		return answer, 0
	}
	if (Question{CorrectAnswer: answer, Options: options}).AnswerMatchesOption() {
		return answer, 0
	}
	degree, err := strconv.Atoi(answer[m[2]:m[3]])
	if err != nil {
		return answer, 0
	}
	return strings.TrimSpace(answer[:m[0]]), degree
}
