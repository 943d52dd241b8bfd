package content

import (
	"context"
	"sync/atomic"

	"github.com/pathwise/tutorengine/internal/knowledge"
	"github.com/pathwise/tutorengine/internal/logger"
)

// SafeGenerator wraps a Generator so that a generation or validation
// failure yields a built-in question instead of an error. A practice
// session must always have something to present.
type SafeGenerator struct {
	inner Generator
	log   *logger.Logger

	// seq rotates the fallback bank so consecutive failures don't repeat
	// the same question.
	seq atomic.Uint64
}

func NewSafeGenerator(inner Generator, log *logger.Logger) *SafeGenerator {
	if log == nil {
		log = logger.Nop()
	}
	return &SafeGenerator{inner: inner, log: log.With("component", "content")}
}

func (s *SafeGenerator) Question(ctx context.Context, input QuestionInput) (*Question, error) {
	q, err := s.inner.Question(ctx, input)
	if err == nil {
		return q, nil
	}
	s.log.Warn("question generation failed, using fallback",
		"node", input.Node.Code, "error", err)
	return FallbackQuestion(input.Node, s.seq.Add(1)), nil
}

func (s *SafeGenerator) Explanation(ctx context.Context, input ExplanationInput) (*Explanation, error) {
	e, err := s.inner.Explanation(ctx, input)
	if err == nil {
		return e, nil
	}
	s.log.Warn("explanation generation failed, using fallback",
		"node", input.Node.Code, "error", err)
	return FallbackExplanation(input.Node), nil
}

// FallbackQuestion returns a built-in question for the node's subject.
// seq selects among the bank entries round-robin.
func FallbackQuestion(node knowledge.Node, seq uint64) *Question {
	bank, ok := fallbackBank[node.Subject]
	if !ok || len(bank) == 0 {
		bank = fallbackBank[knowledge.SubjectArithmetic]
	}
	q := bank[seq%uint64(len(bank))]
	q.NodeCode = node.Code
	return &q
}

// FallbackExplanation returns a generic teaching walkthrough for the node.
func FallbackExplanation(node knowledge.Node) *Explanation {
	return &Explanation{
		NodeCode: node.Code,
		Summary:  "Let's work on " + node.Title + ". " + node.Description,
		Steps: []string{
			"Read the problem slowly and find what it is asking for.",
			"Write down the numbers you are given and pick the operation that fits.",
			"Work one small step at a time and check each step before moving on.",
			"Check your answer by asking: does this number make sense for the question?",
		},
	}
}

// fallbackBank holds hand-checked questions per subject. Every entry must
// pass StructuralValidator; the correctness of these is load-bearing, not
// cosmetic.
var fallbackBank = map[knowledge.Subject][]Question{
	knowledge.SubjectNumberSense: {
		{
			Text:         "Which number has a 7 in the tens place?",
			Options:      []string{"374", "743", "437", "347"},
			CorrectIndex: 0,
			Hint:         "The tens place is the second digit from the right.",
			Explanation:  "In 374 the digits are 3 hundreds, 7 tens, 4 ones. The tens digit is 7.",
			Difficulty:   2,
		},
		{
			Text:         "Which number is the largest?",
			Options:      []string{"989", "998", "899", "900"},
			CorrectIndex: 1,
			Hint:         "Compare the hundreds first, then the tens.",
			Explanation:  "All start with 9 hundreds except 899 and 900. Between 989 and 998, compare tens: 9 tens beats 8 tens, so 998 is largest.",
			Difficulty:   2,
		},
	},
	knowledge.SubjectArithmetic: {
		{
			Text:         "What is 345 + 278?",
			Options:      []string{"623", "613", "523", "633"},
			CorrectIndex: 0,
			Hint:         "Add the ones first, then the tens, then the hundreds. Watch for carrying.",
			Explanation:  "5 + 8 = 13, write 3 carry 1. 4 + 7 + 1 = 12, write 2 carry 1. 3 + 2 + 1 = 6. The sum is 623.",
			Difficulty:   2,
		},
		{
			Text:         "What is 7 * 8?",
			Options:      []string{"54", "56", "48", "64"},
			CorrectIndex: 1,
			Hint:         "Think of 7 * 8 as 7 * 4 doubled.",
			Explanation:  "7 * 4 = 28, and doubling gives 56. So 7 * 8 = 56.",
			Difficulty:   2,
		},
		{
			Text:         "What is 72 / 9?",
			Options:      []string{"9", "7", "8", "6"},
			CorrectIndex: 2,
			Hint:         "What number times 9 makes 72?",
			Explanation:  "8 * 9 = 72, so 72 / 9 = 8.",
			Difficulty:   2,
		},
	},
	knowledge.SubjectFractions: {
		{
			Text:         "Which fraction is equal to 1/2?",
			Options:      []string{"2/4", "1/3", "3/4", "2/5"},
			CorrectIndex: 0,
			Hint:         "Multiply the top and bottom of 1/2 by the same number.",
			Explanation:  "Multiplying the numerator and denominator of 1/2 by 2 gives 2/4, which is the same amount.",
			Difficulty:   2,
		},
		{
			Text:         "Which fraction is larger: 3/4 or 2/3?",
			Options:      []string{"3/4", "2/3", "They are equal", "Cannot be compared"},
			CorrectIndex: 0,
			Hint:         "Rewrite both fractions with denominator 12.",
			Explanation:  "3/4 = 9/12 and 2/3 = 8/12. Since 9/12 is more than 8/12, 3/4 is larger.",
			Difficulty:   3,
		},
	},
	knowledge.SubjectGeometry: {
		{
			Text:         "A rectangle is 6 units long and 4 units wide. What is its area?",
			Options:      []string{"10 square units", "20 square units", "24 square units", "12 square units"},
			CorrectIndex: 2,
			Hint:         "Area of a rectangle is length times width.",
			Explanation:  "Area = length * width = 6 * 4 = 24 square units.",
			Difficulty:   2,
		},
		{
			Text:         "How many sides does a hexagon have?",
			Options:      []string{"5", "6", "7", "8"},
			CorrectIndex: 1,
			Hint:         "\"Hex\" means six.",
			Explanation:  "A hexagon is a polygon with 6 sides.",
			Difficulty:   1,
		},
	},
	knowledge.SubjectMeasurement: {
		{
			Text:         "How many minutes are in 2 hours?",
			Options:      []string{"60", "100", "120", "200"},
			CorrectIndex: 2,
			Hint:         "One hour has 60 minutes.",
			Explanation:  "Each hour is 60 minutes, so 2 hours is 60 * 2 = 120 minutes.",
			Difficulty:   1,
		},
		{
			Text:         "Which unit is best for measuring the length of a pencil?",
			Options:      []string{"Kilometers", "Centimeters", "Liters", "Kilograms"},
			CorrectIndex: 1,
			Hint:         "Pick a unit of length that fits something small.",
			Explanation:  "A pencil is short, so centimeters fit best. Kilometers are too large, and liters and kilograms measure volume and weight.",
			Difficulty:   1,
		},
	},
}
