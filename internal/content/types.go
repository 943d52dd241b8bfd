package content

import "github.com/pathwise/tutorengine/internal/knowledge"

// OptionCount is the fixed number of answer options on every question.
const OptionCount = 4

// Question is a generated practice question ready to present. Questions are
// always multiple choice with exactly OptionCount options, exactly one of
// which is correct.
type Question struct {
	// NodeCode is the concept this question assesses.
	NodeCode string

	// Text is the question prompt, plain ASCII.
	// e.g. "What is 345 + 278?" or "Which fraction is larger: 3/4 or 2/3?"
	Text string

	// Options holds the answer choices in display order.
	Options []string

	// CorrectIndex is the index into Options of the correct answer.
	CorrectIndex int

	// Hint is an optional scaffold the student can request. Empty when the
	// step disallows hints (mastery proof).
	Hint string

	// Explanation is a brief worked solution shown after answering.
	Explanation string

	// Difficulty is the generator's self-assessed difficulty (1-5),
	// recorded for analytics only.
	Difficulty int
}

// Explanation is a teaching-step walkthrough of a concept.
type Explanation struct {
	NodeCode string

	// Summary is a one-paragraph plain-language introduction.
	Summary string

	// Steps are the worked teaching points, in order.
	Steps []string
}

// QuestionInput carries the context a generator needs for one question.
type QuestionInput struct {
	Node knowledge.Node

	// Step labels which practice-loop step the question is for; mastery
	// proof questions get no hint.
	Step string

	// PriorQuestions holds the Text of questions already asked this
	// session on this node, for deduplication in the prompt.
	PriorQuestions []string

	// RecentErrors describes the student's recent mistakes on this node,
	// e.g. "answered 613 for 345 + 278, correct was 623". Up to 5.
	RecentErrors []string
}

// ExplanationInput carries the context for a teaching-step explanation.
type ExplanationInput struct {
	Node knowledge.Node
}
