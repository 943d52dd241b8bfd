package placement

import "github.com/pathwise/tutorengine/internal/knowledge"

// NodeStatus classifies a node in the goal-mode skill map.
type NodeStatus string

const (
	StatusMastered NodeStatus = "mastered"
	StatusGap      NodeStatus = "gap"
	StatusUntested NodeStatus = "untested"
)

// SkillMapEntry describes one node of the goal chain after placement.
type SkillMapEntry struct {
	Node   knowledge.Node
	Status NodeStatus

	// EstimatedHours is the time-to-mastery estimate for gap nodes,
	// zero otherwise.
	EstimatedHours float64
}

// Result is the placement emitted when a diagnostic run completes.
type Result struct {
	StudentID string
	Mode      Mode
	GoalCode  string

	// Frontier is the hardest confirmed-mastered node, empty when
	// nothing was confirmed.
	Frontier string

	Mastered []string
	Gaps     []string

	// SkillMap covers the whole goal chain in order; goal mode only.
	SkillMap []SkillMapEntry

	// EstimatedHours totals the gap estimates in the skill map.
	EstimatedHours float64

	QuestionsAsked int
}

// buildResult computes the placement from whatever brackets exist. It is
// called on every completion path, including forced completion on an
// exhausted space.
func buildResult(g *knowledge.Graph, s *State) *Result {
	r := &Result{
		StudentID:      s.StudentID,
		Mode:           s.Mode,
		GoalCode:       s.GoalCode,
		Mastered:       append([]string(nil), s.Mastered...),
		Gaps:           append([]string(nil), s.Gaps...),
		QuestionsAsked: s.AskedCount,
	}

	// Frontier: the confirmed-mastered node furthest along the space.
	for i := len(s.Space) - 1; i >= 0; i-- {
		if s.isMastered(s.Space[i]) {
			r.Frontier = s.Space[i]
			break
		}
	}

	if s.Mode != ModeGoal {
		return r
	}

	for _, code := range s.Space {
		node, err := g.Get(code)
		if err != nil {
			continue
		}
		entry := SkillMapEntry{Node: node, Status: StatusUntested}
		switch {
		case s.isMastered(code):
			entry.Status = StatusMastered
		case s.isGap(code):
			entry.Status = StatusGap
			entry.EstimatedHours = node.EstimatedHours()
			r.EstimatedHours += entry.EstimatedHours
		}
		r.SkillMap = append(r.SkillMap, entry)
	}
	return r
}
