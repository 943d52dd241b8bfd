package tracing

import (
	"testing"
	"time"

	"github.com/pathwise/tutorengine/internal/knowledge"
)

func testTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func diamondGraph(t *testing.T) *knowledge.Graph {
	t.Helper()
	g, err := knowledge.NewGraph([]knowledge.Node{
		{Code: "root", Title: "Root", Subject: knowledge.SubjectNumberSense, GradeLevel: 3, Difficulty: 1},
		{Code: "left", Title: "Left", Subject: knowledge.SubjectArithmetic, GradeLevel: 3, Difficulty: 2, Prerequisites: []string{"root"}},
		{Code: "right", Title: "Right", Subject: knowledge.SubjectArithmetic, GradeLevel: 3, Difficulty: 2, Prerequisites: []string{"root"}},
		{Code: "top", Title: "Top", Subject: knowledge.SubjectArithmetic, GradeLevel: 4, Difficulty: 3, Prerequisites: []string{"left", "right"}},
	})
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	return g
}

func proficientScore(studentID, code string) *MasteryScore {
	s := NewScore(studentID, code)
	s.Probability = 0.85
	s.PracticeCount = 6
	s.CorrectCount = 5
	return s
}

func TestRecommendNextNodeStartsAtRoot(t *testing.T) {
	g := diamondGraph(t)
	node, ok := RecommendNextNode(g, map[string]*MasteryScore{})
	if !ok || node.Code != "root" {
		t.Fatalf("got %v %t, want root", node.Code, ok)
	}
}

func TestRecommendNextNodeSkipsLockedNodes(t *testing.T) {
	g := diamondGraph(t)
	scores := map[string]*MasteryScore{"root": proficientScore("s", "root")}

	node, ok := RecommendNextNode(g, scores)
	if !ok {
		t.Fatal("expected a recommendation")
	}
	// top is locked until both left and right are proficient.
	if node.Code == "top" {
		t.Error("recommended a locked node")
	}
}

func TestRecommendNextNodeExhausted(t *testing.T) {
	g := diamondGraph(t)
	scores := map[string]*MasteryScore{
		"root":  proficientScore("s", "root"),
		"left":  proficientScore("s", "left"),
		"right": proficientScore("s", "right"),
		"top":   proficientScore("s", "top"),
	}
	if _, ok := RecommendNextNode(g, scores); ok {
		t.Error("expected no recommendation once everything is proficient")
	}
}

func TestProficientSetThreshold(t *testing.T) {
	weak := NewScore("s", "weak")
	weak.Probability = 0.5
	set := ProficientSet(map[string]*MasteryScore{
		"strong": proficientScore("s", "strong"),
		"weak":   weak,
	})
	if !set["strong"] || set["weak"] {
		t.Errorf("proficient set = %v", set)
	}
}
