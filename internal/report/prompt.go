package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/quizforge/internal/mcq"
)

// ScoresPlaceholder is the substitution point in the report prompt.
const ScoresPlaceholder = "{scores}"

const promptTemplate = `You are an expert educational assistant. Write a detailed performance report for a student from their exam scores.

Instructions:
- Analyze the student's performance in each exam.
- Identify strengths and weaknesses from the scores.
- Point out the areas that need improvement.
- Suggest study strategies for future exams.
- Keep the report structured, clear and professional.

Student exam scores:
{scores}

Expected report:
1. **Overall Performance Summary**: name the strongest and weakest subjects and compare performance across subjects.
2. **Subject-Wise Analysis**: evaluate each subject briefly. Above 85, praise the strong understanding. From 60 to 85, suggest how to improve. Below 60, highlight urgent areas to work on.
3. **Actionable Recommendations**: learning techniques such as practice tests and revision plans, specific resources, and time management for exam preparation.

Now write the personalized performance report for these scores.
`

// Band is the coarse performance level the report prompt asks the model to
// address for each subject.
type Band string

const (
	BandStrong  Band = "strong"
	BandImprove Band = "needs improvement"
	BandUrgent  Band = "urgent"
)

// BandFor classifies a score: above 85 is strong, below 60 urgent.
func BandFor(score float64) Band {
	switch {
	case score > 85:
		return BandStrong
	case score >= 60:
		return BandImprove
	default:
		return BandUrgent
	}
}

// FormatScores renders one "- Lec1: 40 (urgent)" line per score.
func FormatScores(scores []mcq.Score) string {
	var b strings.Builder
	for _, s := range scores {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", s.Source, strconv.FormatFloat(s.Value, 'f', -1, 64), BandFor(s.Value))
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildPrompt fills the report template with scores.
func BuildPrompt(scores []mcq.Score) string {
	return strings.Replace(promptTemplate, ScoresPlaceholder, FormatScores(scores), 1)
}
