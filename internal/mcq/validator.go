package mcq

import "fmt"

// Validator checks a parsed question for well-formedness.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for this validator, e.g. "structural".
	Name() string

	// Validate returns nil if the question passes.
	Validate(q *Question) *ValidationError
}

// ValidationError describes why a question is malformed.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// StructuralValidator checks that a question has text, exactly the four
// options A-D, and a correct answer naming one of them. An answer that
// repeats option text after its label must repeat it correctly.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question) *ValidationError {
	if q.Question == "" {
		return &ValidationError{Validator: v.Name(), Message: "question is empty"}
	}
	if len(q.Options) != len(Labels) {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected %d options, got %d", len(Labels), len(q.Options)),
		}
	}
	for _, l := range Labels {
		if q.Options[l] == "" {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("option %s is missing or empty", l)}
		}
	}
	if q.CorrectAnswer == "" {
		return &ValidationError{Validator: v.Name(), Message: "correct_answer is empty"}
	}
	label := q.AnswerLabel()
	if label == "" {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("correct_answer %q does not name an option", q.CorrectAnswer),
		}
	}
	if !q.AnswerMatchesOption() {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("correct_answer %q does not match option %s %q", q.CorrectAnswer, label, q.Options[label]),
		}
	}
	return nil
}

// DefaultValidators is the chain parsers use to count malformed entries.
func DefaultValidators() []Validator {
	return []Validator{&StructuralValidator{}}
}

func validate(q *Question, validators []Validator) *ValidationError {
	for _, v := range validators {
		if err := v.Validate(q); err != nil {
			return err
		}
	}
	return nil
}
