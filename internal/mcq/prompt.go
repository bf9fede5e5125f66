package mcq

import "strings"

// ContextPlaceholder is the substitution point in question prompts.
const ContextPlaceholder = "{context_text}"

// The field order in these templates is what the parsers expect; changing
// the wording changes what parses.
const jsonPromptTemplate = `You are an expert assistant specializing in educational question generation.
Generate at least **20 multiple-choice questions (MCQs)** based on the provided content.
Strict guidelines:
- Questions must come directly from the document content.
- Each question must have **4 distinct answer choices (A, B, C, D)**.
- Label the correct answer as **"correct_answer"** and always provide it.
- **Return only valid JSON output**.

Context (Document Content):
{context_text}

Expected Output (Valid JSON Format Only):

` + "```json" + `
[
  {
    "question": "Example question?",
    "options": ["A) Option 1", "B) Option 2", "C) Option 3", "D) Option 4"],
    "correct_answer": "B) Option 2"
  }
]
` + "```\n"

const labeledPromptTemplate = `You are an expert assistant specializing in educational question generation.
Generate at least **20 multiple-choice questions (MCQs)** based on the provided content.
Strict guidelines:
- Questions must come directly from the document content.
- Each question must have exactly 4 answer choices labeled A), B), C), D).
- Follow each question with its correct answer and, in parentheses, a difficulty from 1 (easy) to 5 (hard).
- Use exactly the layout below for every question and nothing else.

Context (Document Content):
{context_text}

Layout:

**Question 1:** Example question?
A) Option 1
B) Option 2
C) Option 3
D) Option 4
Correct Answer: B) Option 2 (3)
`

// PromptTemplate returns the question-generation template for f.
func PromptTemplate(f Format) string {
	if f == FormatLabeled {
		return labeledPromptTemplate
	}
	return jsonPromptTemplate
}

// BuildPrompt substitutes contextText into the template for f.
func BuildPrompt(f Format, contextText string) string {
	return strings.Replace(PromptTemplate(f), ContextPlaceholder, contextText, 1)
}
