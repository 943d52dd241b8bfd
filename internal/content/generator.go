package content

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pathwise/tutorengine/internal/llm"
)

// Generator produces questions and explanations for concepts.
type Generator interface {
	Question(ctx context.Context, input QuestionInput) (*Question, error)
	Explanation(ctx context.Context, input ExplanationInput) (*Explanation, error)
}

// LLMGenerator implements Generator on an llm.Provider, running all
// configured validators before returning.
type LLMGenerator struct {
	provider   llm.Provider
	validators []Validator

	maxTokens   int
	temperature float64
}

func NewLLMGenerator(provider llm.Provider) *LLMGenerator {
	return &LLMGenerator{
		provider:    provider,
		validators:  []Validator{&StructuralValidator{}},
		maxTokens:   1024,
		temperature: 0.7,
	}
}

// questionOutput is the raw response shape before validation.
type questionOutput struct {
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Hint         string   `json:"hint"`
	Difficulty   int      `json:"difficulty"`
	Explanation  string   `json:"explanation"`
}

func (g *LLMGenerator) Question(ctx context.Context, input QuestionInput) (*Question, error) {
	ctx = llm.WithPurpose(ctx, "question-gen")

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: questionSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildQuestionMessage(input)},
		},
		Schema:      QuestionSchema,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("question generation: %w", err)
	}

	var raw questionOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("parse question response: %w", err)
	}

	q := &Question{
		NodeCode:     input.Node.Code,
		Text:         raw.QuestionText,
		Options:      raw.Options,
		CorrectIndex: raw.CorrectIndex,
		Hint:         raw.Hint,
		Difficulty:   raw.Difficulty,
		Explanation:  raw.Explanation,
	}
	if !hintsAllowed(input.Step) {
		q.Hint = ""
	}

	for _, v := range g.validators {
		if verr := v.Validate(q); verr != nil {
			return nil, verr
		}
	}
	return q, nil
}

type explanationOutput struct {
	Summary string   `json:"summary"`
	Steps   []string `json:"steps"`
}

func (g *LLMGenerator) Explanation(ctx context.Context, input ExplanationInput) (*Explanation, error) {
	ctx = llm.WithPurpose(ctx, "explanation-gen")

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: explanationSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildExplanationMessage(input)},
		},
		Schema:      ExplanationSchema,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("explanation generation: %w", err)
	}

	var raw explanationOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("parse explanation response: %w", err)
	}

	e := &Explanation{
		NodeCode: input.Node.Code,
		Summary:  raw.Summary,
		Steps:    raw.Steps,
	}
	if verr := ValidateExplanation(e); verr != nil {
		return nil, verr
	}
	return e, nil
}
