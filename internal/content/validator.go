package content

import "fmt"

// ValidationError describes why generated content failed validation.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// Validator checks a generated question for shape correctness.
// Implementations must be stateless and safe for concurrent use.
type Validator interface {
	Name() string
	Validate(q *Question) *ValidationError
}

// StructuralValidator enforces the question shape contract: non-empty
// bounded text, exactly OptionCount distinct options, exactly one of which
// is the correct answer, and a present explanation.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *Question) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg}
	}

	if q.Text == "" {
		return fail("question text is empty")
	}
	if len(q.Text) > 500 {
		return fail("question text exceeds 500 characters")
	}
	if len(q.Options) != OptionCount {
		return fail(fmt.Sprintf("expected %d options, got %d", OptionCount, len(q.Options)))
	}
	seen := make(map[string]bool, OptionCount)
	for i, opt := range q.Options {
		if opt == "" {
			return fail(fmt.Sprintf("option %d is empty", i))
		}
		if seen[opt] {
			return fail(fmt.Sprintf("duplicate option %q", opt))
		}
		seen[opt] = true
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return fail(fmt.Sprintf("correct index %d out of range", q.CorrectIndex))
	}
	if q.Explanation == "" {
		return fail("explanation is empty")
	}
	if q.Difficulty < 1 || q.Difficulty > 5 {
		return fail("difficulty must be between 1 and 5")
	}
	return nil
}

// ValidateExplanation checks a teaching explanation's shape.
func ValidateExplanation(e *Explanation) *ValidationError {
	if e.Summary == "" {
		return &ValidationError{Validator: "structural", Message: "explanation summary is empty"}
	}
	if len(e.Steps) == 0 {
		return &ValidationError{Validator: "structural", Message: "explanation has no steps"}
	}
	return nil
}
