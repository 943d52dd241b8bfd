package content

import (
	"fmt"
	"strings"
)

const questionSystemPrompt = `You are a math tutor creating practice problems for children in grades 3-5.

Rules:
- Generate a single problem appropriate for the given concept and grade.
- Use plain ASCII text for all math. No LaTeX, no Unicode symbols. Use / for fractions, * for multiplication, and standard operators.
- The question text should be clear, self-contained, and age-appropriate.
- Provide exactly 4 options where exactly one is correct. Distractors should reflect common mistakes, not random values.
- The explanation should show the solution step by step, suitable for a child.
- If hints are allowed, include a helpful hint; otherwise leave the hint empty.
- Do not repeat any question from the "already asked" list.`

const explanationSystemPrompt = `You are a math tutor introducing a new concept to a child in grades 3-5.

Rules:
- Write a short, friendly summary of the concept in plain language.
- Follow with 2-6 ordered teaching steps, each with a small worked example.
- Use plain ASCII text for all math. No LaTeX, no Unicode symbols.`

// hintsAllowed reports whether the given practice-loop step permits hints.
// The mastery proof and the timed fluency drill are answered without
// scaffolding.
func hintsAllowed(step string) bool {
	return step != "mastery_proof" && step != "fluency_drill"
}

func buildQuestionMessage(input QuestionInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Concept: %s\n", input.Node.Title)
	fmt.Fprintf(&b, "Description: %s\n", input.Node.Description)
	fmt.Fprintf(&b, "Grade: %d\n", input.Node.GradeLevel)
	fmt.Fprintf(&b, "Difficulty: %d of 5\n", input.Node.Difficulty)
	fmt.Fprintf(&b, "Hints allowed: %t\n", hintsAllowed(input.Step))

	b.WriteString("\nAlready asked in this session:\n")
	b.WriteString(numberedList(input.PriorQuestions, 10))

	b.WriteString("\nRecent errors by this student:\n")
	b.WriteString(numberedList(input.RecentErrors, 5))

	return b.String()
}

func buildExplanationMessage(input ExplanationInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Concept: %s\n", input.Node.Title)
	fmt.Fprintf(&b, "Description: %s\n", input.Node.Description)
	fmt.Fprintf(&b, "Grade: %d\n", input.Node.GradeLevel)
	return b.String()
}

// numberedList formats the most recent max items as a numbered list, or
// "None" when empty.
func numberedList(items []string, max int) string {
	if len(items) == 0 {
		return "None"
	}
	if max > 0 && len(items) > max {
		items = items[len(items)-max:]
	}
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return strings.TrimRight(b.String(), "\n")
}
