package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pathwise/tutorengine/internal/knowledge"
	"github.com/pathwise/tutorengine/internal/logger"
	"github.com/pathwise/tutorengine/internal/store"
	"github.com/pathwise/tutorengine/internal/tracing"
)

type fakeLog struct {
	responses []store.QuestionResponse
	err       error
}

func (f *fakeLog) RecentForNode(ctx context.Context, studentID, nodeCode string, limit int) ([]store.QuestionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) > limit {
		return f.responses[:limit], nil
	}
	return f.responses, nil
}

var testNode = knowledge.Node{Code: "mult-facts-0-10", GradeLevel: 3, Difficulty: 2}

func testScore(bestMs int) *tracing.MasteryScore {
	s := tracing.NewScore("student-1", testNode.Code)
	s.BestResponseMs = bestMs
	return s
}

// span builds n responses newest-first across two sessions a day apart,
// with the given number correct.
func spanResponses(n, correct int) []store.QuestionResponse {
	base := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	out := make([]store.QuestionResponse, 0, n)
	for i := 0; i < n; i++ {
		session := "sess-today"
		at := base.Add(-time.Duration(i) * time.Minute)
		if i >= n/2 {
			session = "sess-yesterday"
			at = base.Add(-24 * time.Hour).Add(-time.Duration(i) * time.Minute)
		}
		out = append(out, store.QuestionResponse{
			StudentID:  "student-1",
			NodeCode:   testNode.Code,
			SessionID:  session,
			WasCorrect: i < correct,
			ResponseMs: 5000,
			Phase:      "independent_practice",
			AnsweredAt: at,
		})
	}
	return out
}

func TestEvaluateAdvance(t *testing.T) {
	e := NewEvaluator(&fakeLog{responses: spanResponses(10, 9)}, logger.Nop())

	d, sig := e.Evaluate(context.Background(), testScore(4000), testNode, 4500)
	if d != DecisionAdvance {
		t.Fatalf("decision = %v, want advance; signals %+v", d, sig)
	}
}

func TestEvaluateSlowButAccurate(t *testing.T) {
	e := NewEvaluator(&fakeLog{responses: spanResponses(10, 9)}, logger.Nop())

	// Over the grade-3 ceiling and far over 1.5x the personal best.
	d, _ := e.Evaluate(context.Background(), testScore(4000), testNode, 45000)
	if d != DecisionFluencyDrill {
		t.Errorf("decision = %v, want fluency_drill", d)
	}
}

func TestEvaluateSingleSittingFailsRetention(t *testing.T) {
	// All answers correct but inside one session.
	base := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	var rs []store.QuestionResponse
	for i := 0; i < 10; i++ {
		rs = append(rs, store.QuestionResponse{
			SessionID:  "only-session",
			WasCorrect: true,
			ResponseMs: 5000,
			Phase:      "guided_practice",
			AnsweredAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
	e := NewEvaluator(&fakeLog{responses: rs}, logger.Nop())

	d, sig := e.Evaluate(context.Background(), testScore(4000), testNode, 4500)
	if sig.Retention {
		t.Fatal("retention passed with a single session")
	}
	if d != DecisionRetentionReview {
		t.Errorf("decision = %v, want retention_review", d)
	}
}

func TestEvaluateLowAccuracyFallsToPractice(t *testing.T) {
	e := NewEvaluator(&fakeLog{responses: spanResponses(10, 6)}, logger.Nop())

	d, _ := e.Evaluate(context.Background(), testScore(4000), testNode, 4500)
	if d != DecisionPractice {
		t.Errorf("decision = %v, want practice", d)
	}
}

func TestEvaluateTooFewSamplesFailsClosed(t *testing.T) {
	e := NewEvaluator(&fakeLog{responses: spanResponses(3, 3)}, logger.Nop())

	d, _ := e.Evaluate(context.Background(), testScore(4000), testNode, 4500)
	if d != DecisionPractice {
		t.Errorf("decision = %v, want practice with too few samples", d)
	}
}

func TestEvaluateErrorFailsClosed(t *testing.T) {
	e := NewEvaluator(&fakeLog{err: errors.New("db gone")}, logger.Nop())

	d, _ := e.Evaluate(context.Background(), testScore(4000), testNode, 4500)
	if d != DecisionPractice {
		t.Errorf("decision = %v, want practice on evaluation error", d)
	}
}

func TestReadinessAnswersCarryNoWeight(t *testing.T) {
	// Plenty of readiness-check answers must not satisfy the sample floor.
	base := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	var rs []store.QuestionResponse
	for i := 0; i < 10; i++ {
		rs = append(rs, store.QuestionResponse{
			SessionID:  "sess",
			WasCorrect: true,
			Phase:      "check_understanding",
			AnsweredAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
	e := NewEvaluator(&fakeLog{responses: rs}, logger.Nop())

	d, sig := e.Evaluate(context.Background(), testScore(4000), testNode, 4500)
	if sig.Accuracy || d != DecisionPractice {
		t.Errorf("readiness answers influenced the gate: %v %+v", d, sig)
	}
}

func TestSpeedAgainstPersonalBest(t *testing.T) {
	// Above the grade-6 ceiling but within 1.5x the personal best.
	node := knowledge.Node{Code: "n", GradeLevel: 6}
	if !speedPasses(27000, 20000, node.GradeLevel) {
		t.Error("within 1.5x best should pass above the ceiling")
	}
	if speedPasses(45000, 20000, node.GradeLevel) {
		t.Error("over both ceiling and best multiple should fail")
	}
	if speedPasses(0, 20000, node.GradeLevel) {
		t.Error("untimed answer should fail the speed signal")
	}
}

func TestSpeedOKMatchesGateCriterion(t *testing.T) {
	// The drill's pace check and the gate's speed signal must agree.
	cases := []struct {
		latest, best, grade int
	}{
		{4000, 0, 3},
		{27000, 20000, 6},
		{45000, 20000, 6},
		{0, 20000, 6},
		{31000, 4000, 3},
	}
	for _, c := range cases {
		if SpeedOK(c.latest, c.best, c.grade) != speedPasses(c.latest, c.best, c.grade) {
			t.Errorf("SpeedOK(%d, %d, %d) disagrees with the gate signal", c.latest, c.best, c.grade)
		}
	}
	if SpeedLimitMs(3) != 30000 || SpeedLimitMs(5) != 25000 || SpeedLimitMs(8) != 20000 {
		t.Error("per-grade ceilings changed")
	}
}

func TestDecisionZeroValueIsPractice(t *testing.T) {
	var d Decision
	if d != DecisionPractice {
		t.Fatalf("zero value = %v, want practice", d)
	}
	if d.String() != "practice" {
		t.Errorf("String() = %q", d.String())
	}
}
