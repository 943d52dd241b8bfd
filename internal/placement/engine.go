package placement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pathwise/tutorengine/internal/knowledge"
	"github.com/pathwise/tutorengine/internal/logger"
)

// ErrSessionNotFound is returned when a diagnostic session is unknown or
// has expired out of the state store.
var ErrSessionNotFound = errors.New("placement: session not found")

// ErrNoQuestionOutstanding is returned when Answer is called before Next.
var ErrNoQuestionOutstanding = errors.New("placement: no question outstanding")

// Step is the engine's reply to an answer: either the next node to probe
// or the finished placement.
type Step struct {
	Done bool

	// Next is the node to ask about when the run continues.
	Next knowledge.Node

	// Result is set when Done.
	Result *Result
}

// Engine runs adaptive placement diagnostics. Sessions for different
// students are independent; answers within one session must arrive
// sequentially (the caller owns per-session serialization).
type Engine struct {
	graph *knowledge.Graph
	store StateStore
	log   *logger.Logger
}

func NewEngine(graph *knowledge.Graph, store StateStore, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{graph: graph, store: store, log: log.With("component", "placement")}
}

// Start begins a standard-mode run over the full concept space for the
// student's grade, ordered easiest first. Returns the session state and
// the first node to probe.
func (e *Engine) Start(ctx context.Context, studentID string, grade int) (*State, knowledge.Node, error) {
	nodes := e.graph.ByGrade(grade)
	if len(nodes) == 0 {
		return nil, knowledge.Node{}, fmt.Errorf("no concepts for grade %d", grade)
	}
	return e.begin(ctx, studentID, ModeStandard, "", nodes)
}

// StartForGoal begins a goal-aware run over the ordered prerequisite
// chain of the goal node.
func (e *Engine) StartForGoal(ctx context.Context, studentID, goalCode string) (*State, knowledge.Node, error) {
	chain, err := e.graph.PrerequisiteChain(goalCode)
	if err != nil {
		return nil, knowledge.Node{}, fmt.Errorf("resolve goal chain: %w", err)
	}
	return e.begin(ctx, studentID, ModeGoal, goalCode, chain)
}

func (e *Engine) begin(ctx context.Context, studentID string, mode Mode, goalCode string, nodes []knowledge.Node) (*State, knowledge.Node, error) {
	space := make([]string, len(nodes))
	for i, n := range nodes {
		space[i] = n.Code
	}

	s := &State{
		SessionID: uuid.NewString(),
		StudentID: studentID,
		Mode:      mode,
		GoalCode:  goalCode,
		Space:     space,
		Low:       0,
		High:      len(space) - 1,
		Probe:     -1,
		CreatedAt: time.Now(),
	}

	probe := s.nextProbe()
	if probe < 0 {
		return nil, knowledge.Node{}, fmt.Errorf("empty search space")
	}
	s.Probe = probe

	if err := e.store.Put(ctx, s); err != nil {
		return nil, knowledge.Node{}, fmt.Errorf("save diagnostic state: %w", err)
	}

	node, err := e.graph.Get(space[probe])
	if err != nil {
		return nil, knowledge.Node{}, err
	}

	e.log.Info("diagnostic started",
		"session", s.SessionID, "student", studentID,
		"mode", string(mode), "space", len(space))
	return s, node, nil
}

// Answer records the outcome for the outstanding probe and either returns
// the next node to ask or completes the run. Completion destroys the
// session state.
func (e *Engine) Answer(ctx context.Context, sessionID string, wasCorrect bool) (*Step, error) {
	s, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Done {
		return nil, fmt.Errorf("placement: session %s already complete", sessionID)
	}
	if s.Probe < 0 || s.Probe >= len(s.Space) {
		return nil, ErrNoQuestionOutstanding
	}

	code := s.Space[s.Probe]
	s.AskedCount++

	// A correct answer raises the floor of "known" past the probe; an
	// incorrect one lowers the ceiling below it.
	if wasCorrect {
		s.markMastered(code)
		s.Low = s.Probe + 1
	} else {
		s.markGap(code)
		s.High = s.Probe - 1
	}

	if done := s.Low > s.High || s.AskedCount >= QuestionBudget; done {
		return e.complete(ctx, s)
	}

	probe := s.nextProbe()
	if probe < 0 {
		// Space exhausted before the budget: completion is forced, a
		// placement is still computed from whatever brackets exist.
		return e.complete(ctx, s)
	}
	s.Probe = probe

	if err := e.store.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("save diagnostic state: %w", err)
	}

	node, err := e.graph.Get(s.Space[probe])
	if err != nil {
		return nil, err
	}
	return &Step{Next: node}, nil
}

// Abandon drops a session's ephemeral state without computing a placement.
func (e *Engine) Abandon(ctx context.Context, sessionID string) error {
	return e.store.Delete(ctx, sessionID)
}

func (e *Engine) complete(ctx context.Context, s *State) (*Step, error) {
	s.Done = true
	s.Probe = -1
	result := buildResult(e.graph, s)

	if err := e.store.Delete(ctx, s.SessionID); err != nil {
		// The janitor will reap it eventually; completion still stands.
		e.log.Warn("failed to delete diagnostic state", "session", s.SessionID, "error", err)
	}

	e.log.Info("diagnostic complete",
		"session", s.SessionID, "student", s.StudentID,
		"asked", s.AskedCount, "frontier", result.Frontier,
		"mastered", len(result.Mastered), "gaps", len(result.Gaps))
	return &Step{Done: true, Result: result}, nil
}

// nextProbe picks the midpoint of the active bracket, skipping nothing:
// every index in [Low, High] is unasked by construction. Returns -1 when
// the bracket is empty.
func (s *State) nextProbe() int {
	if s.Low > s.High {
		return -1
	}
	return (s.Low + s.High) / 2
}
