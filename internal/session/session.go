package session

import (
	"time"

	"github.com/google/uuid"
)

// StrugglingStreak is the number of consecutive wrong answers that routes
// a session into STRUGGLING.
const StrugglingStreak = 3

// LearningSession is the mutable record of one tutoring session: the
// outer machine state, the current node, the nested practice loop and the
// lifetime counters.
type LearningSession struct {
	ID        string
	StudentID string

	State    State
	NodeCode string
	Loop     Loop

	QuestionCount int
	CorrectCount  int

	// WrongStreak counts consecutive incorrect answers, reset on any
	// correct one.
	WrongStreak int

	// DrillStreak counts consecutive fast correct answers in the
	// boss-challenge fluency drill, reset by any slow or wrong one.
	DrillStreak int

	StartedAt time.Time
	EndedAt   time.Time
}

// New creates an idle session for a student.
func New(studentID string, now time.Time) *LearningSession {
	return &LearningSession{
		ID:        uuid.NewString(),
		StudentID: studentID,
		State:     StateIdle,
		Loop:      NewLoop(),
		StartedAt: now,
	}
}

// TransitionTo moves the session through the central transition table.
// Illegal moves leave the session untouched and return the error.
func (s *LearningSession) TransitionTo(to State, event string) error {
	tr, err := TransitionPure(s.State, to, event)
	if err != nil {
		return err
	}
	s.State = tr.To
	return nil
}

// RecordAnswer updates the session-level counters for one answer.
func (s *LearningSession) RecordAnswer(wasCorrect bool) {
	s.QuestionCount++
	if wasCorrect {
		s.CorrectCount++
		s.WrongStreak = 0
	} else {
		s.WrongStreak++
	}
}

// IsStruggling reports whether the wrong streak has hit the intervention
// threshold.
func (s *LearningSession) IsStruggling() bool {
	return s.WrongStreak >= StrugglingStreak
}

// Complete moves the session to its terminal state.
func (s *LearningSession) Complete(now time.Time) error {
	if err := s.TransitionTo(StateCompleted, "session_complete"); err != nil {
		return err
	}
	s.EndedAt = now
	return nil
}

// Accuracy is the session-wide correct ratio, 0 before any answers.
func (s *LearningSession) Accuracy() float64 {
	if s.QuestionCount == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.QuestionCount)
}
