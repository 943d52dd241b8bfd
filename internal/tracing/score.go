package tracing

import "time"

// DefaultEasiness is the initial spaced-repetition easiness factor for a
// newly created score. The scheduler owns all subsequent changes.
const DefaultEasiness = 2.5

// MasteryScore holds all mastery-related state for one (student, node)
// pair. Created lazily on first interaction; updated on every assessed
// answer; never deleted.
type MasteryScore struct {
	StudentID string
	NodeCode  string

	// Probability is the BKT probability of mastery, always in [0, 1].
	Probability float64

	PracticeCount int
	CorrectCount  int

	LastPracticedAt time.Time

	// BestResponseMs is the personal-best (lowest) response latency on this
	// node, in milliseconds. Zero means no timed answer recorded yet.
	BestResponseMs int

	// Spaced-repetition scheduler fields. These change only through the
	// scheduler's transition rules.
	ReviewCount  int
	IntervalDays int
	Easiness     float64
	NextDueAt    time.Time

	FluencyDrillActive bool
	TrulyMastered      bool
}

// NewScore creates the lazy-initialized score for a first interaction.
func NewScore(studentID, nodeCode string) *MasteryScore {
	return &MasteryScore{
		StudentID:   studentID,
		NodeCode:    nodeCode,
		Probability: InitialProbability,
		Easiness:    DefaultEasiness,
	}
}

// Level derives the discrete mastery level from current state.
func (s *MasteryScore) Level() Level {
	return LevelFor(s.Probability, s.PracticeCount)
}

// Accuracy returns the lifetime correct ratio, 0 if never practiced.
func (s *MasteryScore) Accuracy() float64 {
	if s.PracticeCount == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.PracticeCount)
}

// RecordAnswer applies one assessed answer: Bayesian probability update,
// counters, latency personal best and last-practiced timestamp. Readiness
// checks (practice-loop step 2) must not call this; they read the
// probability without updating it.
func (s *MasteryScore) RecordAnswer(wasCorrect bool, responseMs int, now time.Time, p Params) {
	s.Probability = UpdateProbability(s.Probability, wasCorrect, p)
	s.PracticeCount++
	if wasCorrect {
		s.CorrectCount++
	}
	if responseMs > 0 && (s.BestResponseMs == 0 || responseMs < s.BestResponseMs) {
		s.BestResponseMs = responseMs
	}
	s.LastPracticedAt = now
}

// ShouldAdvanceNode reports whether the student has shown enough command of
// this node for the orchestration layer to move on to a dependent node.
func (s *MasteryScore) ShouldAdvanceNode() bool {
	return AtLeastProficient(s.Level())
}
