package placement

import "time"

// Mode selects the diagnostic search space.
type Mode string

const (
	// ModeStandard searches the full default concept space for the
	// student's grade.
	ModeStandard Mode = "standard"
	// ModeGoal searches only the prerequisite chain of a learning goal.
	ModeGoal Mode = "goal"
)

// QuestionBudget caps the number of diagnostic questions per run.
const QuestionBudget = 20

// State is the ephemeral per-run diagnostic state. It lives in a
// session-keyed store for at most the store's TTL and is destroyed on
// completion; it is never persisted durably.
type State struct {
	SessionID string
	StudentID string
	Mode      Mode

	// GoalCode is set in goal mode.
	GoalCode string

	// Space is the ordered candidate list, easiest first. The binary
	// search brackets into this slice.
	Space []string

	// Low and High are the inclusive bracket bounds into Space. The
	// search is exhausted once Low > High.
	Low  int
	High int

	// Probe is the index currently being asked, or -1 when no question
	// is outstanding.
	Probe int

	Mastered []string
	Gaps     []string

	AskedCount int
	Done       bool

	CreatedAt time.Time
}

// markMastered records a confirmed-known node, keeping insertion order.
func (s *State) markMastered(code string) {
	s.Mastered = append(s.Mastered, code)
}

// markGap records a confirmed-unknown node, keeping insertion order.
func (s *State) markGap(code string) {
	s.Gaps = append(s.Gaps, code)
}

func (s *State) isMastered(code string) bool {
	for _, c := range s.Mastered {
		if c == code {
			return true
		}
	}
	return false
}

func (s *State) isGap(code string) bool {
	for _, c := range s.Gaps {
		if c == code {
			return true
		}
	}
	return false
}
