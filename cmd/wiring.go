package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pathwise/tutorengine/internal/content"
	"github.com/pathwise/tutorengine/internal/gate"
	"github.com/pathwise/tutorengine/internal/knowledge"
	"github.com/pathwise/tutorengine/internal/llm"
	"github.com/pathwise/tutorengine/internal/logger"
	"github.com/pathwise/tutorengine/internal/notify"
	"github.com/pathwise/tutorengine/internal/session"
	"github.com/pathwise/tutorengine/internal/store"
)

// app bundles the wired components every command needs. Built once per
// invocation, torn down with Close.
type app struct {
	log       *logger.Logger
	store     *store.Store
	graph     *knowledge.Graph
	generator content.Generator
	orch      *session.Orchestrator
	events    *notify.Hub
	studentID string
}

func buildApp(cmd *cobra.Command) (*app, error) {
	log, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(dbPath, log)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", dbPath, err)
	}

	graph := knowledge.DefaultGraph()

	provider, err := buildProvider(cmd.Context(), log)
	if err != nil {
		return nil, err
	}
	generator := content.NewSafeGenerator(content.NewLLMGenerator(provider), log)

	events := notify.NewHub(log, notify.NewLogSink(log))
	gateEval := gate.NewEvaluator(st.Responses(), log)
	orch := session.NewOrchestrator(graph, st.MasteryScores(), st.Responses(), st.Sessions(), gateEval, events, log)

	return &app{
		log:       log,
		store:     st,
		graph:     graph,
		generator: generator,
		orch:      orch,
		events:    events,
		studentID: studentID(cmd),
	}, nil
}

func (a *app) Close() {
	a.log.Sync()
}

// buildProvider picks a content provider: explicit TUTOR_LLM_PROVIDER config
// first, then discovery from well-known API key env vars, then the mock
// provider with a warning so the tool stays usable offline.
func buildProvider(ctx context.Context, log *logger.Logger) (llm.Provider, error) {
	cfg := llm.ConfigFromEnv()
	if err := cfg.Validate(); err == nil {
		return llm.NewProvider(ctx, cfg, log)
	}
	if cfg, ok := llm.DiscoverConfig(); ok {
		return llm.NewProvider(ctx, cfg, log)
	}
	fmt.Fprintln(os.Stderr, "Warning: no LLM provider configured; using built-in question bank.")
	fmt.Fprintln(os.Stderr, "Set TUTOR_ANTHROPIC_API_KEY, TUTOR_OPENAI_API_KEY, or TUTOR_GEMINI_API_KEY for generated content.")
	mock := llm.DefaultConfig()
	mock.Provider = "mock"
	return llm.NewProvider(ctx, mock, log)
}

// askQuestion presents one multiple-choice question on the terminal and
// returns the chosen option index and the response latency. Typing h
// invokes hint, which owns any session-state bookkeeping around showing
// one; a nil hint means none is offered. Returns ok=false on EOF or when
// the student types q.
func askQuestion(in *bufio.Scanner, q *content.Question, hint func() (string, error)) (choice int, elapsed time.Duration, ok bool) {
	fmt.Println()
	fmt.Println(q.Text)
	for i, opt := range q.Options {
		fmt.Printf("  %d) %s\n", i+1, opt)
	}
	if hint != nil {
		fmt.Println("  (type h for a hint, q to quit)")
	} else {
		fmt.Println("  (type q to quit)")
	}

	start := time.Now()
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return 0, 0, false
		}
		answer := strings.TrimSpace(strings.ToLower(in.Text()))
		switch answer {
		case "q", "quit", "exit":
			return 0, 0, false
		case "h", "hint":
			if hint == nil {
				fmt.Println("No hint available for this one.")
				continue
			}
			text, err := hint()
			if err != nil {
				fmt.Println("No hint available for this one.")
				continue
			}
			fmt.Println("Hint:", text)
			continue
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > len(q.Options) {
			fmt.Printf("Please enter a number from 1 to %d.\n", len(q.Options))
			continue
		}
		return n - 1, time.Since(start), true
	}
}

func printExplanation(e *content.Explanation, node knowledge.Node) {
	fmt.Printf("\n== %s ==\n\n", node.Title)
	fmt.Println(e.Summary)
	fmt.Println()
	for i, step := range e.Steps {
		fmt.Printf("  %d. %s\n", i+1, step)
	}
	fmt.Println()
}

func printFeedback(q *content.Question, choice int) {
	if choice == q.CorrectIndex {
		fmt.Println("Correct!")
	} else {
		fmt.Printf("Not quite. The answer was %s.\n", q.Options[q.CorrectIndex])
	}
	if q.Explanation != "" {
		fmt.Println(q.Explanation)
	}
}
