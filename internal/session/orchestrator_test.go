package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pathwise/tutorengine/internal/content"
	"github.com/pathwise/tutorengine/internal/gate"
	"github.com/pathwise/tutorengine/internal/knowledge"
	"github.com/pathwise/tutorengine/internal/logger"
	"github.com/pathwise/tutorengine/internal/notify"
	"github.com/pathwise/tutorengine/internal/store"
	"github.com/pathwise/tutorengine/internal/tracing"
)

// memScores mimics the database repo: every read hands back its own row
// copy, so state only flows between callers through Upsert.
type memScores struct {
	mu sync.Mutex
	m  map[string]*tracing.MasteryScore
}

func newMemScores() *memScores {
	return &memScores{m: make(map[string]*tracing.MasteryScore)}
}

func (r *memScores) key(studentID, nodeCode string) string { return studentID + "/" + nodeCode }

func (r *memScores) GetOrCreate(_ context.Context, studentID, nodeCode string) (*tracing.MasteryScore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(studentID, nodeCode)
	if s, ok := r.m[k]; ok {
		cp := *s
		return &cp, nil
	}
	s := tracing.NewScore(studentID, nodeCode)
	r.m[k] = s
	cp := *s
	return &cp, nil
}

func (r *memScores) Upsert(_ context.Context, s *tracing.MasteryScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.m[r.key(s.StudentID, s.NodeCode)] = &cp
	return nil
}

type memResponses struct {
	mu   sync.Mutex
	list []store.QuestionResponse
}

func (r *memResponses) Append(_ context.Context, resp store.QuestionResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, resp)
	return nil
}

type memSessions struct {
	mu   sync.Mutex
	recs []store.LearningSessionRecord
}

func (r *memSessions) Save(_ context.Context, rec store.LearningSessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, rec)
	return nil
}

type stubGate struct {
	decision gate.Decision
}

func (g *stubGate) Evaluate(_ context.Context, _ *tracing.MasteryScore, _ knowledge.Node, _ int) (gate.Decision, gate.Signals) {
	return g.decision, gate.Signals{}
}

type captureSink struct {
	events []notify.Event
}

func (c *captureSink) Notify(_ context.Context, ev notify.Event) error {
	c.events = append(c.events, ev)
	return nil
}

type fixture struct {
	orch    *Orchestrator
	scores  *memScores
	resps   *memResponses
	sink    *captureSink
	sess    *LearningSession
	verdict *stubGate
}

func newFixture(t *testing.T, decision gate.Decision) *fixture {
	t.Helper()
	g, err := knowledge.NewGraph([]knowledge.Node{
		{Code: "add", Title: "Addition", Subject: knowledge.SubjectArithmetic, GradeLevel: 3, Difficulty: 1},
	})
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	scores := newMemScores()
	resps := &memResponses{}
	sink := &captureSink{}
	verdict := &stubGate{decision: decision}
	orch := NewOrchestrator(g, scores, resps, &memSessions{}, verdict,
		notify.NewHub(logger.Nop(), sink), logger.Nop())

	sess := New("student-1", time.Now())
	ctx := context.Background()
	if err := orch.StartTeaching(ctx, sess, "add"); err != nil {
		t.Fatalf("start teaching: %v", err)
	}
	if err := orch.BeginPractice(ctx, sess); err != nil {
		t.Fatalf("begin practice: %v", err)
	}
	return &fixture{orch: orch, scores: scores, resps: resps, sink: sink, sess: sess, verdict: verdict}
}

func question(correctIndex int) *content.Question {
	return &content.Question{
		NodeCode:     "add",
		Text:         "What is 2 + 2?",
		Options:      []string{"4", "3", "5", "22"},
		CorrectIndex: correctIndex,
		Explanation:  "2 + 2 = 4.",
		Difficulty:   1,
	}
}

func (f *fixture) answer(t *testing.T, correct bool) *AnswerResult {
	t.Helper()
	q := question(0)
	chosen := 0
	if !correct {
		chosen = 1
	}
	res, err := f.orch.HandleAnswer(context.Background(), f.sess, q, chosen, 4000, time.Now())
	if err != nil {
		t.Fatalf("handle answer: %v", err)
	}
	return res
}

func (f *fixture) score() *tracing.MasteryScore {
	s, _ := f.scores.GetOrCreate(context.Background(), "student-1", "add")
	return s
}

func TestReadinessCheckCarriesNoMasteryWeight(t *testing.T) {
	f := newFixture(t, gate.DecisionPractice)

	res := f.answer(t, false)
	if res.Outcome.Step != StepCheckUnderstanding || !res.Outcome.StepComplete {
		t.Fatalf("unexpected outcome: %+v", res.Outcome)
	}

	s := f.score()
	if s.PracticeCount != 0 || s.Probability != tracing.InitialProbability {
		t.Errorf("readiness answer changed mastery: count=%d p=%v", s.PracticeCount, s.Probability)
	}
	if len(f.resps.list) != 1 {
		t.Errorf("readiness answer not logged")
	}
}

func TestFreshStudentFailingGuidedPractice(t *testing.T) {
	f := newFixture(t, gate.DecisionPractice)

	f.answer(t, true) // readiness check

	if f.sess.Loop.Step != StepGuidedPractice {
		t.Fatalf("loop at %d", f.sess.Loop.Step)
	}
	var last *AnswerResult
	for i := 0; i < 3; i++ {
		last = f.answer(t, false)
	}

	if !last.Outcome.StepComplete || last.Outcome.Passed {
		t.Fatalf("0/3 must fail the step: %+v", last.Outcome)
	}
	if f.sess.Loop.Step != StepCheckUnderstanding {
		t.Errorf("loop at step %d, want back at readiness check", f.sess.Loop.Step)
	}
	if s := f.score(); s.Probability > tracing.InitialProbability {
		t.Errorf("probability rose to %v after three wrong answers", s.Probability)
	}
	// Three consecutive misses also trip the struggle intervention.
	if !last.Struggling || last.State != StateStruggling {
		t.Errorf("expected struggling intervention, got %+v", last)
	}
}

func TestWrongStreakResetByCorrectAnswer(t *testing.T) {
	f := newFixture(t, gate.DecisionPractice)

	f.answer(t, true) // readiness check
	f.answer(t, false)
	f.answer(t, false)
	res := f.answer(t, true) // completes guided practice at 1/3

	if res.Struggling {
		t.Error("streak should reset on a correct answer")
	}
	if f.sess.WrongStreak != 0 {
		t.Errorf("wrong streak = %d", f.sess.WrongStreak)
	}
}

func TestGateAdvanceGrantsMastery(t *testing.T) {
	f := newFixture(t, gate.DecisionAdvance)
	f.sess.Loop.Step = StepMasteryProof

	res := f.answer(t, true)
	if res.Gate == nil || *res.Gate != gate.DecisionAdvance {
		t.Fatalf("gate verdict missing: %+v", res)
	}
	if res.State != StateCelebrating {
		t.Errorf("state = %s, want CELEBRATING", res.State)
	}

	s := f.score()
	if !s.TrulyMastered {
		t.Error("advance did not set true mastery")
	}
	if s.NextDueAt.IsZero() || s.IntervalDays != 1 {
		t.Errorf("schedule not seeded: interval=%d due=%v", s.IntervalDays, s.NextDueAt)
	}

	found := false
	for _, ev := range f.sink.events {
		if ev.Kind == notify.KindNodeMastered && ev.NodeCode == "add" {
			found = true
		}
	}
	if !found {
		t.Error("node mastered event not published")
	}
}

func TestGatePracticeNeverCelebrates(t *testing.T) {
	f := newFixture(t, gate.DecisionPractice)
	f.sess.Loop.Step = StepMasteryProof

	res := f.answer(t, true)
	if res.State == StateCelebrating {
		t.Fatal("fail-closed gate routed to CELEBRATING")
	}
	if f.sess.Loop.Step != StepCheckUnderstanding {
		t.Errorf("loop at %d, want readiness check", f.sess.Loop.Step)
	}
	if f.score().TrulyMastered {
		t.Error("practice verdict granted mastery")
	}
}

func TestGateUnknownVerdictFailsClosed(t *testing.T) {
	f := newFixture(t, gate.Decision(99))
	f.sess.Loop.Step = StepMasteryProof

	res := f.answer(t, true)
	if res.State == StateCelebrating || f.score().TrulyMastered {
		t.Fatal("unrecognized verdict treated as mastery")
	}
	if f.sess.Loop.Step != StepCheckUnderstanding {
		t.Errorf("loop at %d, want readiness check", f.sess.Loop.Step)
	}
}

func TestGateFluencyDrillRoutesToChallenge(t *testing.T) {
	f := newFixture(t, gate.DecisionFluencyDrill)
	f.sess.Loop.Step = StepMasteryProof

	res := f.answer(t, true)
	if res.State != StateBossChallenge {
		t.Errorf("state = %s, want BOSS_CHALLENGE", res.State)
	}
	s := f.score()
	if !s.FluencyDrillActive {
		t.Error("fluency drill flag not set")
	}
	if s.TrulyMastered {
		t.Error("fluency drill granted mastery")
	}
}

func TestHandleReviewAnswerClosesTheLoop(t *testing.T) {
	f := newFixture(t, gate.DecisionPractice)
	now := time.Now()

	score, review, err := f.orch.HandleReviewAnswer(context.Background(), "student-1", "add", "review-sess", true, 3000, now)
	if err != nil {
		t.Fatalf("review answer: %v", err)
	}
	if review.IntervalDays != 1 || review.ReviewCount != 1 {
		t.Errorf("review = %+v", review)
	}
	if score.PracticeCount != 1 {
		t.Error("review answer skipped the tracing update")
	}

	found := false
	for _, ev := range f.sink.events {
		if ev.Kind == notify.KindReviewPassed {
			found = true
		}
	}
	if !found {
		t.Error("review passed event not published")
	}
}

func (f *fixture) drillAnswer(t *testing.T, correct bool, responseMs int) *DrillResult {
	t.Helper()
	q := question(0)
	chosen := 0
	if !correct {
		chosen = 1
	}
	res, err := f.orch.HandleDrillAnswer(context.Background(), f.sess, q, chosen, responseMs, time.Now())
	if err != nil {
		t.Fatalf("drill answer: %v", err)
	}
	return res
}

// enterDrill walks the fixture from the mastery proof into the boss
// challenge via a fluency-drill verdict.
func (f *fixture) enterDrill(t *testing.T) {
	t.Helper()
	f.verdict.decision = gate.DecisionFluencyDrill
	f.sess.Loop.Step = StepMasteryProof
	if res := f.answer(t, true); res.State != StateBossChallenge {
		t.Fatalf("state = %s, want BOSS_CHALLENGE", res.State)
	}
}

func TestConcurrentAnswersSameNodeAllCounted(t *testing.T) {
	f := newFixture(t, gate.DecisionPractice)
	ctx := context.Background()

	const workers = 8
	sessions := make([]*LearningSession, workers)
	for i := range sessions {
		sess := New("student-1", time.Now())
		if err := f.orch.StartTeaching(ctx, sess, "add"); err != nil {
			t.Fatalf("start teaching: %v", err)
		}
		if err := f.orch.BeginPractice(ctx, sess); err != nil {
			t.Fatalf("begin practice: %v", err)
		}
		sess.Loop.Step = StepGuidedPractice
		sessions[i] = sess
	}

	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for _, sess := range sessions {
		wg.Add(1)
		go func(sess *LearningSession) {
			defer wg.Done()
			_, err := f.orch.HandleAnswer(ctx, sess, question(0), 0, 4000, time.Now())
			errs <- err
		}(sess)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("handle answer: %v", err)
		}
	}

	if got := f.score().PracticeCount; got != workers {
		t.Fatalf("practice count = %d after %d answers; an update was lost", got, workers)
	}
}

func TestDrillClearsAfterFastStreak(t *testing.T) {
	f := newFixture(t, gate.DecisionPractice)
	f.enterDrill(t)
	f.verdict.decision = gate.DecisionAdvance

	var res *DrillResult
	for i := 0; i < DrillTarget; i++ {
		res = f.drillAnswer(t, true, 4000)
	}

	if !res.Cleared || res.State != StateCelebrating {
		t.Fatalf("drill did not clear: %+v", res)
	}
	s := f.score()
	if !s.TrulyMastered {
		t.Error("cleared drill did not grant true mastery")
	}
	if s.FluencyDrillActive {
		t.Error("fluency drill flag still set after clearing")
	}
	if s.NextDueAt.IsZero() || s.IntervalDays != 1 {
		t.Errorf("schedule not seeded: interval=%d due=%v", s.IntervalDays, s.NextDueAt)
	}

	found := false
	for _, ev := range f.sink.events {
		if ev.Kind == notify.KindNodeMastered && ev.NodeCode == "add" {
			found = true
		}
	}
	if !found {
		t.Error("node mastered event not published")
	}
}

func TestDrillSlowAnswerResetsStreak(t *testing.T) {
	f := newFixture(t, gate.DecisionPractice)
	f.enterDrill(t)
	f.verdict.decision = gate.DecisionAdvance

	f.drillAnswer(t, true, 4000)
	if res := f.drillAnswer(t, true, 4000); res.Streak != 2 {
		t.Fatalf("streak = %d, want 2", res.Streak)
	}

	// Correct but over the grade ceiling and well past 1.5x the best.
	res := f.drillAnswer(t, true, 31000)
	if res.Fast || res.Streak != 0 {
		t.Fatalf("slow answer kept the streak: %+v", res)
	}
	if res.Cleared || res.State != StateBossChallenge {
		t.Fatalf("slow answer left the drill: %+v", res)
	}
	if f.score().TrulyMastered {
		t.Error("drill granted mastery without a full fast streak")
	}
}

func TestDrillWrongAnswerResetsStreak(t *testing.T) {
	f := newFixture(t, gate.DecisionPractice)
	f.enterDrill(t)

	f.drillAnswer(t, true, 4000)
	res := f.drillAnswer(t, false, 4000)
	if res.Fast || res.Streak != 0 {
		t.Fatalf("wrong answer kept the streak: %+v", res)
	}
	if res.State != StateBossChallenge {
		t.Errorf("state = %s, want BOSS_CHALLENGE", res.State)
	}
}

func TestDrillUnconvincedGateKeepsDrilling(t *testing.T) {
	f := newFixture(t, gate.DecisionPractice)
	f.enterDrill(t)
	// The verdict stays fluency_drill, so the streak re-runs the gate
	// without clearing it.

	var res *DrillResult
	for i := 0; i < DrillTarget; i++ {
		res = f.drillAnswer(t, true, 4000)
	}

	if res.Gate == nil {
		t.Fatal("full streak did not re-run the gate")
	}
	if res.Cleared || res.State != StateBossChallenge {
		t.Fatalf("unconvinced gate left the drill: %+v", res)
	}
	if res.Streak != 0 {
		t.Errorf("streak = %d, want reset for the next round", res.Streak)
	}
	if f.score().TrulyMastered {
		t.Error("held gate granted mastery")
	}
}

func TestDrillRejectedOutsideChallenge(t *testing.T) {
	f := newFixture(t, gate.DecisionPractice)
	if _, err := f.orch.HandleDrillAnswer(context.Background(), f.sess, question(0), 0, 4000, time.Now()); err == nil {
		t.Fatal("expected rejection outside BOSS_CHALLENGE")
	}
}

func TestHintExcursionBlocksAnswersUntilShown(t *testing.T) {
	f := newFixture(t, gate.DecisionPractice)
	ctx := context.Background()

	if err := f.orch.RequestHint(ctx, f.sess); err != nil {
		t.Fatalf("request hint: %v", err)
	}
	if f.sess.State != StateHintRequested {
		t.Fatalf("state = %s, want HINT_REQUESTED", f.sess.State)
	}
	if _, err := f.orch.HandleAnswer(ctx, f.sess, question(0), 0, 4000, time.Now()); err == nil {
		t.Fatal("answer accepted while the hint was open")
	}

	if err := f.orch.HintShown(ctx, f.sess); err != nil {
		t.Fatalf("hint shown: %v", err)
	}
	if f.sess.State != StatePractice {
		t.Fatalf("state = %s, want PRACTICE", f.sess.State)
	}
	if _, err := f.orch.HandleAnswer(ctx, f.sess, question(0), 0, 4000, time.Now()); err != nil {
		t.Fatalf("answer after hint: %v", err)
	}
}

func TestRequestHintOutsidePracticeRejected(t *testing.T) {
	f := newFixture(t, gate.DecisionPractice)
	f.enterDrill(t)
	if err := f.orch.RequestHint(context.Background(), f.sess); err == nil {
		t.Fatal("hint allowed during the boss challenge")
	}
}

func TestHandleAnswerOutsidePracticeRejected(t *testing.T) {
	f := newFixture(t, gate.DecisionPractice)
	if err := f.sess.TransitionTo(StateTeaching, "back"); err != nil {
		t.Fatalf("transition: %v", err)
	}
	if _, err := f.orch.HandleAnswer(context.Background(), f.sess, question(0), 0, 1000, time.Now()); err == nil {
		t.Fatal("expected rejection outside PRACTICE")
	}
}
