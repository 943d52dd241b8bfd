package tracing

import (
	"sort"

	"github.com/pathwise/tutorengine/internal/knowledge"
)

// ProficientSet derives the set of node codes at or above PROFICIENT from a
// collection of scores. This is the unlock input for the knowledge graph.
func ProficientSet(scores map[string]*MasteryScore) map[string]bool {
	result := make(map[string]bool, len(scores))
	for code, s := range scores {
		if AtLeastProficient(s.Level()) {
			result[code] = true
		}
	}
	return result
}

// RecommendNextNode picks the next node for the student to work on: the
// unlocked, not-yet-proficient node with the lowest grade level, breaking
// ties by dependent count (nodes that unblock more of the graph first) and
// then by code. Returns false if nothing is available.
func RecommendNextNode(g *knowledge.Graph, scores map[string]*MasteryScore) (knowledge.Node, bool) {
	available := g.Available(ProficientSet(scores))
	if len(available) == 0 {
		return knowledge.Node{}, false
	}

	sort.Slice(available, func(i, j int) bool {
		if available[i].GradeLevel != available[j].GradeLevel {
			return available[i].GradeLevel < available[j].GradeLevel
		}
		di := len(g.Dependents(available[i].Code))
		dj := len(g.Dependents(available[j].Code))
		if di != dj {
			return di > dj
		}
		return available[i].Code < available[j].Code
	})

	return available[0], true
}
