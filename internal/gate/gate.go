package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/pathwise/tutorengine/internal/knowledge"
	"github.com/pathwise/tutorengine/internal/logger"
	"github.com/pathwise/tutorengine/internal/store"
	"github.com/pathwise/tutorengine/internal/tracing"
)

// Decision is the gate's verdict after a correct mastery-proof answer.
// The zero value is DecisionPractice so that any path that fails to set a
// decision falls closed into more practice, never open into false mastery.
type Decision int

const (
	// DecisionPractice is the catch-all: at least one signal failed in a
	// way no specific route covers, or evaluation itself errored.
	DecisionPractice Decision = iota
	// DecisionAdvance grants true mastery; the node moves to the
	// spaced-repetition schedule.
	DecisionAdvance
	// DecisionFluencyDrill routes into an untimed-pressure drill: the
	// student knows the material but is too slow.
	DecisionFluencyDrill
	// DecisionRetentionReview sends the student back to the readiness
	// check: accuracy holds within a sitting but not across sittings.
	DecisionRetentionReview
)

func (d Decision) String() string {
	switch d {
	case DecisionAdvance:
		return "advance"
	case DecisionFluencyDrill:
		return "fluency_drill"
	case DecisionRetentionReview:
		return "retention_review"
	default:
		return "practice"
	}
}

// Signal thresholds. The windows are measured in assessed answers on the
// node, newest first.
const (
	RecentWindow      = 10
	HistoryWindow     = 50
	MinSignalSamples  = 5
	AccuracyThreshold = 0.8

	// A run of recent answers passes consistency when its Bernoulli
	// variance p(1-p) stays at or below this bound. Combined with the
	// accuracy signal this rejects streaks padded with misses.
	ConsistencyMaxVariance = 0.16

	// Retention wants correct answers in at least this many distinct
	// sessions, with at least MinRetentionGap between them.
	RetentionMinSessions = 2
	MinRetentionGap      = 4 * time.Hour

	// Speed passes within this multiple of the personal best.
	SpeedBestMultiplier = 1.5
)

// Signals records the outcome of each independent check, for logging and
// for callers that surface the verdict to the student.
type Signals struct {
	Accuracy    bool
	Speed       bool
	Retention   bool
	Consistency bool
}

// ResponseLog is the slice of response history the gate needs.
type ResponseLog interface {
	RecentForNode(ctx context.Context, studentID, nodeCode string, limit int) ([]store.QuestionResponse, error)
}

// Evaluator combines the four mastery signals into one decision.
type Evaluator struct {
	responses ResponseLog
	log       *logger.Logger
}

func NewEvaluator(responses ResponseLog, log *logger.Logger) *Evaluator {
	if log == nil {
		log = logger.Nop()
	}
	return &Evaluator{responses: responses, log: log}
}

// Evaluate runs the gate for a (student, node) pair after a correct
// mastery-proof answer. latestResponseMs is the response time of that
// answer. Any internal failure resolves to DecisionPractice.
func (e *Evaluator) Evaluate(ctx context.Context, score *tracing.MasteryScore, node knowledge.Node, latestResponseMs int) (Decision, Signals) {
	history, err := e.responses.RecentForNode(ctx, score.StudentID, score.NodeCode, HistoryWindow)
	if err != nil {
		e.log.Warn("gate evaluation failed, holding in practice",
			"student", score.StudentID, "node", score.NodeCode, "error", err)
		return DecisionPractice, Signals{}
	}

	assessed := assessedOnly(history)
	sig := Signals{
		Accuracy:    accuracyPasses(assessed),
		Speed:       speedPasses(latestResponseMs, score.BestResponseMs, node.GradeLevel),
		Retention:   retentionPasses(assessed),
		Consistency: consistencyPasses(assessed),
	}

	decision := decide(sig)
	e.log.Debug("gate decision",
		"student", score.StudentID, "node", score.NodeCode,
		"decision", decision.String(),
		"accuracy", sig.Accuracy, "speed", sig.Speed,
		"retention", sig.Retention, "consistency", sig.Consistency)
	return decision, sig
}

func decide(sig Signals) Decision {
	switch {
	case sig.Accuracy && sig.Speed && sig.Retention && sig.Consistency:
		return DecisionAdvance
	case sig.Accuracy && sig.Retention && !sig.Speed:
		return DecisionFluencyDrill
	case sig.Accuracy && !sig.Retention:
		return DecisionRetentionReview
	default:
		return DecisionPractice
	}
}

// assessedOnly drops readiness-check answers, which carry no mastery weight.
func assessedOnly(history []store.QuestionResponse) []store.QuestionResponse {
	out := make([]store.QuestionResponse, 0, len(history))
	for _, r := range history {
		if r.Phase == "check_understanding" {
			continue
		}
		out = append(out, r)
	}
	return out
}

func accuracyPasses(assessed []store.QuestionResponse) bool {
	window := assessed
	if len(window) > RecentWindow {
		window = window[:RecentWindow]
	}
	if len(window) < MinSignalSamples {
		return false
	}
	correct := 0
	for _, r := range window {
		if r.WasCorrect {
			correct++
		}
	}
	return float64(correct)/float64(len(window)) >= AccuracyThreshold
}

// speedPasses checks the latest answer against the student's personal best
// and an absolute grade-level ceiling. Either is enough: beating your own
// pace counts even above the grade ceiling, and a first timed answer under
// the ceiling counts with no best on record.
func speedPasses(latestMs, bestMs, gradeLevel int) bool {
	if latestMs <= 0 {
		return false
	}
	if latestMs <= gradeSpeedLimitMs(gradeLevel) {
		return true
	}
	return bestMs > 0 && float64(latestMs) <= float64(bestMs)*SpeedBestMultiplier
}

// SpeedOK reports whether a timed answer counts as fast. The fluency
// drill uses the same pace criterion the gate's speed signal uses, so a
// student cannot clear the drill slower than the gate would accept.
func SpeedOK(latestMs, bestMs, gradeLevel int) bool {
	return speedPasses(latestMs, bestMs, gradeLevel)
}

// SpeedLimitMs exposes the per-grade ceiling so callers can tell the
// student what pace they are drilling toward.
func SpeedLimitMs(gradeLevel int) int {
	return gradeSpeedLimitMs(gradeLevel)
}

// gradeSpeedLimitMs is the absolute per-grade response-time ceiling.
// Younger students get more time.
func gradeSpeedLimitMs(gradeLevel int) int {
	switch {
	case gradeLevel <= 3:
		return 30000
	case gradeLevel <= 5:
		return 25000
	default:
		return 20000
	}
}

// retentionPasses wants correct answers spread over sittings: at least
// RetentionMinSessions distinct sessions with a correct answer, the
// newest and oldest of them separated by MinRetentionGap or more.
func retentionPasses(assessed []store.QuestionResponse) bool {
	latestBySession := make(map[string]time.Time)
	for _, r := range assessed {
		if !r.WasCorrect {
			continue
		}
		if t, ok := latestBySession[r.SessionID]; !ok || r.AnsweredAt.After(t) {
			latestBySession[r.SessionID] = r.AnsweredAt
		}
	}
	if len(latestBySession) < RetentionMinSessions {
		return false
	}

	var earliest, latest time.Time
	for _, t := range latestBySession {
		if earliest.IsZero() || t.Before(earliest) {
			earliest = t
		}
		if t.After(latest) {
			latest = t
		}
	}
	return latest.Sub(earliest) >= MinRetentionGap
}

// consistencyPasses bounds the variance of recent correctness. A Bernoulli
// sample at rate p has variance p(1-p); a streak diluted by misses pushes
// the variance over the bound even when a short tail looks perfect.
func consistencyPasses(assessed []store.QuestionResponse) bool {
	window := assessed
	if len(window) > RecentWindow {
		window = window[:RecentWindow]
	}
	if len(window) < MinSignalSamples {
		return false
	}
	correct := 0
	for _, r := range window {
		if r.WasCorrect {
			correct++
		}
	}
	p := float64(correct) / float64(len(window))
	return p*(1-p) <= ConsistencyMaxVariance
}

// Describe renders the verdict for logs and session summaries.
func Describe(d Decision, sig Signals) string {
	switch d {
	case DecisionAdvance:
		return "all mastery signals passed"
	case DecisionFluencyDrill:
		return "accurate but slow: fluency drill"
	case DecisionRetentionReview:
		return "accurate today but not across days: retention review"
	default:
		return fmt.Sprintf("more practice needed (accuracy=%t speed=%t retention=%t consistency=%t)",
			sig.Accuracy, sig.Speed, sig.Retention, sig.Consistency)
	}
}
