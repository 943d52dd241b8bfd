package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pathwise/tutorengine/internal/content"
	"github.com/pathwise/tutorengine/internal/gate"
	"github.com/pathwise/tutorengine/internal/knowledge"
	"github.com/pathwise/tutorengine/internal/logger"
	"github.com/pathwise/tutorengine/internal/notify"
	"github.com/pathwise/tutorengine/internal/scheduler"
	"github.com/pathwise/tutorengine/internal/store"
	"github.com/pathwise/tutorengine/internal/tracing"
)

// ScoreRepo is the mastery persistence the orchestrator needs.
type ScoreRepo interface {
	GetOrCreate(ctx context.Context, studentID, nodeCode string) (*tracing.MasteryScore, error)
	Upsert(ctx context.Context, s *tracing.MasteryScore) error
}

// ResponseRepo is the append-only answer log.
type ResponseRepo interface {
	Append(ctx context.Context, resp store.QuestionResponse) error
}

// SessionRepo persists session lifecycle records.
type SessionRepo interface {
	Save(ctx context.Context, rec store.LearningSessionRecord) error
}

// GateEvaluator decides whether a passed mastery proof grants mastery.
type GateEvaluator interface {
	Evaluate(ctx context.Context, score *tracing.MasteryScore, node knowledge.Node, latestResponseMs int) (gate.Decision, gate.Signals)
}

// Orchestrator composes the outer state machine, the practice loop, the
// tracing model, the gate and the scheduler around one answer event. It
// owns no storage; all I/O goes through the injected collaborators.
type Orchestrator struct {
	graph     *knowledge.Graph
	scores    ScoreRepo
	responses ResponseRepo
	sessions  SessionRepo
	gate      GateEvaluator
	events    *notify.Hub
	params    tracing.Params
	log       *logger.Logger

	// locks serializes mastery read-modify-write cycles per
	// student/node pair. Upsert is atomic per statement, but a score is
	// read, mutated in memory and written back; two answers for the
	// same pair interleaving those steps would lose one update.
	locks sync.Map
}

// lockPair takes the mutex for one student/node pair and returns its
// release func.
func (o *Orchestrator) lockPair(studentID, nodeCode string) func() {
	mu, _ := o.locks.LoadOrStore(studentID+"/"+nodeCode, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func NewOrchestrator(
	graph *knowledge.Graph,
	scores ScoreRepo,
	responses ResponseRepo,
	sessions SessionRepo,
	gateEval GateEvaluator,
	events *notify.Hub,
	log *logger.Logger,
) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	if events == nil {
		events = notify.NewHub(log)
	}
	return &Orchestrator{
		graph:     graph,
		scores:    scores,
		responses: responses,
		sessions:  sessions,
		gate:      gateEval,
		events:    events,
		params:    tracing.DefaultParams(),
		log:       log.With("component", "session"),
	}
}

// StartTeaching opens a session on a node: IDLE -> TEACHING with the loop
// at the teach step.
func (o *Orchestrator) StartTeaching(ctx context.Context, sess *LearningSession, nodeCode string) error {
	if _, err := o.graph.Get(nodeCode); err != nil {
		return err
	}
	if err := sess.TransitionTo(StateTeaching, "start_teaching"); err != nil {
		return err
	}
	sess.NodeCode = nodeCode
	sess.Loop.ResetToTeach()
	return o.saveSession(ctx, sess, "practice")
}

// BeginPractice moves TEACHING -> PRACTICE and the loop into the
// readiness check.
func (o *Orchestrator) BeginPractice(ctx context.Context, sess *LearningSession) error {
	if err := sess.TransitionTo(StatePractice, "begin_practice"); err != nil {
		return err
	}
	sess.Loop.StartPractice()
	return o.saveSession(ctx, sess, "practice")
}

// AnswerResult reports what one practice answer changed.
type AnswerResult struct {
	WasCorrect bool

	// Outcome is the step-loop effect of the answer.
	Outcome Outcome

	// Gate holds the verdict when the mastery gate ran, nil otherwise.
	Gate *gate.Decision
	// Signals accompanies Gate.
	Signals gate.Signals

	// State is the session state after the answer.
	State State

	// Struggling is true when this answer tripped the streak threshold.
	Struggling bool
}

// HandleAnswer applies one practice answer end to end: response log,
// tracing update (except in the readiness check), step-loop movement,
// struggle detection, gate evaluation after a correct mastery proof, and
// scheduler seeding on true mastery.
func (o *Orchestrator) HandleAnswer(ctx context.Context, sess *LearningSession, q *content.Question, chosenIndex, responseMs int, now time.Time) (*AnswerResult, error) {
	if sess.State != StatePractice {
		return nil, fmt.Errorf("session %s is in %s, not %s", sess.ID, sess.State, StatePractice)
	}
	node, err := o.graph.Get(sess.NodeCode)
	if err != nil {
		return nil, err
	}

	wasCorrect := chosenIndex == q.CorrectIndex
	step := sess.Loop.Step

	if err := o.responses.Append(ctx, store.QuestionResponse{
		StudentID:    sess.StudentID,
		NodeCode:     sess.NodeCode,
		SessionID:    sess.ID,
		QuestionText: q.Text,
		Options:      q.Options,
		CorrectIndex: q.CorrectIndex,
		ChosenIndex:  chosenIndex,
		WasCorrect:   wasCorrect,
		ResponseMs:   responseMs,
		Phase:        StepName(step),
		AnsweredAt:   now,
	}); err != nil {
		return nil, fmt.Errorf("log response: %w", err)
	}

	unlock := o.lockPair(sess.StudentID, sess.NodeCode)
	defer unlock()

	score, err := o.scores.GetOrCreate(ctx, sess.StudentID, sess.NodeCode)
	if err != nil {
		return nil, err
	}

	// The readiness check reads mastery without updating it; every other
	// step is a real assessment.
	if step != StepCheckUnderstanding {
		score.RecordAnswer(wasCorrect, responseMs, now, o.params)
		if err := o.scores.Upsert(ctx, score); err != nil {
			return nil, err
		}
	}

	sess.RecordAnswer(wasCorrect)
	result := &AnswerResult{WasCorrect: wasCorrect, Outcome: sess.Loop.Record(wasCorrect)}

	if result.Outcome.AwaitingGate {
		if err := o.runGate(ctx, sess, node, score, responseMs, now, result); err != nil {
			return nil, err
		}
	} else if !wasCorrect && sess.IsStruggling() {
		if err := sess.TransitionTo(StateStruggling, "wrong_streak"); err != nil {
			return nil, err
		}
		sess.WrongStreak = 0
		result.Struggling = true
	}

	result.State = sess.State
	return result, o.saveSession(ctx, sess, "practice")
}

// runGate resolves a correct mastery-proof answer into a route. The gate
// itself fails closed; any unexpected verdict also lands in practice.
func (o *Orchestrator) runGate(ctx context.Context, sess *LearningSession, node knowledge.Node, score *tracing.MasteryScore, responseMs int, now time.Time, result *AnswerResult) error {
	decision, signals := o.gate.Evaluate(ctx, score, node, responseMs)
	result.Gate = &decision
	result.Signals = signals

	switch decision {
	case gate.DecisionAdvance:
		if err := o.grantMastery(ctx, sess, score, now, "gate_advance"); err != nil {
			return err
		}

	case gate.DecisionFluencyDrill:
		score.FluencyDrillActive = true
		if err := o.scores.Upsert(ctx, score); err != nil {
			return err
		}
		sess.Loop.GateHeld()
		if err := sess.TransitionTo(StateBossChallenge, "gate_fluency_drill"); err != nil {
			return err
		}

	default:
		// RetentionReview and Practice both hold the student on the
		// node; so does any verdict this switch doesn't know.
		sess.Loop.GateHeld()
	}
	return nil
}

// grantMastery marks the node truly mastered, seeds the review schedule
// and moves the session into the celebration.
func (o *Orchestrator) grantMastery(ctx context.Context, sess *LearningSession, score *tracing.MasteryScore, now time.Time, reason string) error {
	score.TrulyMastered = true
	score.FluencyDrillActive = false
	scheduler.InitSchedule(score, now)
	if err := o.scores.Upsert(ctx, score); err != nil {
		return err
	}
	if err := sess.TransitionTo(StateCelebrating, reason); err != nil {
		return err
	}
	o.events.Publish(ctx, notify.Event{
		Kind:      notify.KindNodeMastered,
		StudentID: sess.StudentID,
		NodeCode:  sess.NodeCode,
		SessionID: sess.ID,
	})
	return nil
}

// DrillTarget is how many consecutive fast correct answers clear the
// fluency drill and send the student back through the gate.
const DrillTarget = 3

// DrillResult reports what one fluency-drill answer changed.
type DrillResult struct {
	WasCorrect bool

	// Fast is true when the answer was correct and at gate pace.
	Fast bool

	// Streak is the consecutive fast-answer count after this answer.
	Streak int

	// Gate holds the verdict when the streak reached the target and the
	// gate re-ran, nil otherwise.
	Gate *gate.Decision
	// Signals accompanies Gate.
	Signals gate.Signals

	// Cleared is true when the re-run gate granted mastery.
	Cleared bool

	// State is the session state after the answer.
	State State
}

// HandleDrillAnswer applies one answer of the boss-challenge fluency
// drill: the student answers under time pressure, and a streak of
// DrillTarget fast correct answers sends the score back through the
// gate. The drill never routes back to teaching; an unconvinced gate
// just keeps the drill going.
func (o *Orchestrator) HandleDrillAnswer(ctx context.Context, sess *LearningSession, q *content.Question, chosenIndex, responseMs int, now time.Time) (*DrillResult, error) {
	if sess.State != StateBossChallenge {
		return nil, fmt.Errorf("session %s is in %s, not %s", sess.ID, sess.State, StateBossChallenge)
	}
	node, err := o.graph.Get(sess.NodeCode)
	if err != nil {
		return nil, err
	}

	wasCorrect := chosenIndex == q.CorrectIndex

	if err := o.responses.Append(ctx, store.QuestionResponse{
		StudentID:    sess.StudentID,
		NodeCode:     sess.NodeCode,
		SessionID:    sess.ID,
		QuestionText: q.Text,
		Options:      q.Options,
		CorrectIndex: q.CorrectIndex,
		ChosenIndex:  chosenIndex,
		WasCorrect:   wasCorrect,
		ResponseMs:   responseMs,
		Phase:        "fluency_drill",
		AnsweredAt:   now,
	}); err != nil {
		return nil, fmt.Errorf("log response: %w", err)
	}

	unlock := o.lockPair(sess.StudentID, sess.NodeCode)
	defer unlock()

	score, err := o.scores.GetOrCreate(ctx, sess.StudentID, sess.NodeCode)
	if err != nil {
		return nil, err
	}
	if !score.FluencyDrillActive {
		return nil, fmt.Errorf("no fluency drill pending for %s", sess.NodeCode)
	}

	// Pace is judged against the best on record before this answer, so
	// a correct answer cannot set the bar it is then measured by.
	prevBestMs := score.BestResponseMs

	score.RecordAnswer(wasCorrect, responseMs, now, o.params)
	if err := o.scores.Upsert(ctx, score); err != nil {
		return nil, err
	}
	sess.RecordAnswer(wasCorrect)

	result := &DrillResult{WasCorrect: wasCorrect}
	result.Fast = wasCorrect && gate.SpeedOK(responseMs, prevBestMs, node.GradeLevel)
	if result.Fast {
		sess.DrillStreak++
	} else {
		sess.DrillStreak = 0
	}
	result.Streak = sess.DrillStreak

	if sess.DrillStreak >= DrillTarget {
		sess.DrillStreak = 0
		decision, signals := o.gate.Evaluate(ctx, score, node, responseMs)
		result.Gate = &decision
		result.Signals = signals
		if decision == gate.DecisionAdvance {
			if err := o.grantMastery(ctx, sess, score, now, "drill_cleared"); err != nil {
				return nil, err
			}
			result.Cleared = true
		}
		// Any other verdict keeps drilling; a signal besides speed is
		// still short, and more fast answers are what fills it.
	}

	result.State = sess.State
	return result, o.saveSession(ctx, sess, "practice")
}

// RequestHint moves PRACTICE -> HINT_REQUESTED. While the hint is open
// no answer is accepted; HintShown returns the session to practice.
func (o *Orchestrator) RequestHint(ctx context.Context, sess *LearningSession) error {
	if err := sess.TransitionTo(StateHintRequested, "hint_requested"); err != nil {
		return err
	}
	return o.saveSession(ctx, sess, "practice")
}

// HintShown closes the hint and resumes practice on the same question.
func (o *Orchestrator) HintShown(ctx context.Context, sess *LearningSession) error {
	if err := sess.TransitionTo(StatePractice, "hint_shown"); err != nil {
		return err
	}
	return o.saveSession(ctx, sess, "practice")
}

// HandleReviewAnswer applies one review-session answer: the same tracing
// update as practice, then the scheduler transition for the node.
func (o *Orchestrator) HandleReviewAnswer(ctx context.Context, studentID, nodeCode string, sessionID string, wasCorrect bool, responseMs int, now time.Time) (*tracing.MasteryScore, scheduler.Review, error) {
	unlock := o.lockPair(studentID, nodeCode)
	defer unlock()

	score, err := o.scores.GetOrCreate(ctx, studentID, nodeCode)
	if err != nil {
		return nil, scheduler.Review{}, err
	}

	if err := o.responses.Append(ctx, store.QuestionResponse{
		StudentID:  studentID,
		NodeCode:   nodeCode,
		SessionID:  sessionID,
		WasCorrect: wasCorrect,
		ResponseMs: responseMs,
		Phase:      "review",
		AnsweredAt: now,
	}); err != nil {
		return nil, scheduler.Review{}, fmt.Errorf("log response: %w", err)
	}

	score.RecordAnswer(wasCorrect, responseMs, now, o.params)
	review := scheduler.ApplyReview(score, wasCorrect, now)
	if err := o.scores.Upsert(ctx, score); err != nil {
		return nil, scheduler.Review{}, err
	}

	if wasCorrect {
		o.events.Publish(ctx, notify.Event{
			Kind:      notify.KindReviewPassed,
			StudentID: studentID,
			NodeCode:  nodeCode,
			SessionID: sessionID,
			Detail:    map[string]any{"interval_days": review.IntervalDays},
		})
	}
	return score, review, nil
}

// ResumeTeaching routes a struggling or celebrating session back into the
// lesson, restarting the loop at the teach step.
func (o *Orchestrator) ResumeTeaching(ctx context.Context, sess *LearningSession) error {
	if err := sess.TransitionTo(StateTeaching, "resume_teaching"); err != nil {
		return err
	}
	sess.Loop.ResetToTeach()
	return o.saveSession(ctx, sess, "practice")
}

func (o *Orchestrator) saveSession(ctx context.Context, sess *LearningSession, kind string) error {
	err := o.sessions.Save(ctx, store.LearningSessionRecord{
		ID:            sess.ID,
		StudentID:     sess.StudentID,
		Kind:          kind,
		State:         string(sess.State),
		NodeCode:      sess.NodeCode,
		QuestionCount: sess.QuestionCount,
		CorrectCount:  sess.CorrectCount,
		StartedAt:     sess.StartedAt,
		EndedAt:       sess.EndedAt,
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
