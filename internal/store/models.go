package store

import (
	"time"

	"gorm.io/datatypes"
)

// masteryScoreRow is the persisted form of a tracing.MasteryScore. One row
// per (student, node) pair, upserted atomically on every assessed answer.
type masteryScoreRow struct {
	ID        uint   `gorm:"primaryKey"`
	StudentID string `gorm:"index:idx_mastery_student_node,unique;not null"`
	NodeCode  string `gorm:"index:idx_mastery_student_node,unique;not null"`

	Probability   float64
	PracticeCount int
	CorrectCount  int

	LastPracticedAt time.Time
	BestResponseMs  int

	ReviewCount  int
	IntervalDays int
	Easiness     float64
	NextDueAt    time.Time

	FluencyDrillActive bool
	TrulyMastered      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (masteryScoreRow) TableName() string { return "mastery_scores" }

// questionResponseRow is the append-only record of one answered question.
// It is never updated or deleted; mastery signals that need history (speed
// trend, retention, consistency) are derived from it.
type questionResponseRow struct {
	ID        uint      `gorm:"primaryKey"`
	StudentID string    `gorm:"index:idx_resp_student_node;not null"`
	NodeCode  string    `gorm:"index:idx_resp_student_node;not null"`
	SessionID string    `gorm:"index;not null"`

	QuestionText string
	Options      datatypes.JSON
	CorrectIndex int
	ChosenIndex  int
	WasCorrect   bool
	ResponseMs   int

	// Step in the practice loop the answer belongs to, or "review" /
	// "diagnostic" for answers outside the loop.
	Phase string

	AnsweredAt time.Time `gorm:"index;not null"`
	CreatedAt  time.Time
}

func (questionResponseRow) TableName() string { return "question_responses" }

// learningSessionRow records one session's lifecycle for reporting.
type learningSessionRow struct {
	ID        string `gorm:"primaryKey"`
	StudentID string `gorm:"index;not null"`

	Kind  string // "practice", "placement", "review"
	State string // final or current FSM state

	NodeCode      string
	QuestionCount int
	CorrectCount  int

	StartedAt time.Time
	EndedAt   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (learningSessionRow) TableName() string { return "learning_sessions" }
