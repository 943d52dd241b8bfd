package knowledge

import (
	"errors"
	"testing"
)

func testNodes() []Node {
	return []Node{
		{Code: "count", Title: "Counting", Subject: SubjectNumberSense, GradeLevel: 3, Difficulty: 1},
		{Code: "add", Title: "Addition", Subject: SubjectArithmetic, GradeLevel: 3, Difficulty: 2, Prerequisites: []string{"count"}},
		{Code: "sub", Title: "Subtraction", Subject: SubjectArithmetic, GradeLevel: 3, Difficulty: 2, Prerequisites: []string{"count"}},
		{Code: "mult", Title: "Multiplication", Subject: SubjectArithmetic, GradeLevel: 4, Difficulty: 3, Prerequisites: []string{"add", "sub"}},
	}
}

func TestNewGraphRejectsCycle(t *testing.T) {
	nodes := []Node{
		{Code: "a", Title: "A", Subject: SubjectArithmetic, GradeLevel: 3, Difficulty: 1, Prerequisites: []string{"b"}},
		{Code: "b", Title: "B", Subject: SubjectArithmetic, GradeLevel: 3, Difficulty: 1, Prerequisites: []string{"a"}},
	}
	if _, err := NewGraph(nodes); err == nil {
		t.Fatal("cycle accepted")
	}
}

func TestNewGraphRejectsDanglingPrerequisite(t *testing.T) {
	nodes := []Node{
		{Code: "a", Title: "A", Subject: SubjectArithmetic, GradeLevel: 3, Difficulty: 1, Prerequisites: []string{"ghost"}},
	}
	if _, err := NewGraph(nodes); err == nil {
		t.Fatal("dangling prerequisite accepted")
	}
}

func TestNewGraphRejectsDuplicateCodes(t *testing.T) {
	nodes := []Node{
		{Code: "a", Title: "A", Subject: SubjectArithmetic, GradeLevel: 3, Difficulty: 1},
		{Code: "a", Title: "A again", Subject: SubjectArithmetic, GradeLevel: 3, Difficulty: 2},
	}
	if _, err := NewGraph(nodes); err == nil {
		t.Fatal("duplicate code accepted")
	}
}

func TestGetUnknownNode(t *testing.T) {
	g, err := NewGraph(testNodes())
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	_, err = g.Get("missing")
	var nf *ErrNodeNotFound
	if !errors.As(err, &nf) || nf.Code != "missing" {
		t.Errorf("expected ErrNodeNotFound for missing, got %v", err)
	}
}

func TestTopologicalOrderRespectsPrerequisites(t *testing.T) {
	g, err := NewGraph(testNodes())
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	pos := make(map[string]int)
	for i, n := range g.TopologicalOrder() {
		pos[n.Code] = i
	}
	for _, n := range testNodes() {
		for _, p := range n.Prerequisites {
			if pos[p] >= pos[n.Code] {
				t.Errorf("%s appears before its prerequisite %s", n.Code, p)
			}
		}
	}
}

func TestIsUnlockedRequiresAllPrerequisites(t *testing.T) {
	g, err := NewGraph(testNodes())
	if err != nil {
		t.Fatalf("graph: %v", err)
	}

	if !g.IsUnlocked("count", nil) {
		t.Error("root should be unlocked with no progress")
	}
	if g.IsUnlocked("mult", map[string]bool{"add": true}) {
		t.Error("mult unlocked with only one of two prerequisites")
	}
	if !g.IsUnlocked("mult", map[string]bool{"add": true, "sub": true}) {
		t.Error("mult locked with both prerequisites proficient")
	}
}

func TestByGradeOrdersEasiestFirst(t *testing.T) {
	g, err := NewGraph(testNodes())
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	grade3 := g.ByGrade(3)
	if len(grade3) != 3 {
		t.Fatalf("grade 3 has %d nodes", len(grade3))
	}
	if grade3[0].Code != "count" {
		t.Errorf("first grade-3 node = %s, want count", grade3[0].Code)
	}
	for i := 1; i < len(grade3); i++ {
		if grade3[i].Difficulty < grade3[i-1].Difficulty {
			t.Error("grade nodes not ordered by difficulty")
		}
	}
}

func TestPrerequisiteChainIncludesGoal(t *testing.T) {
	g, err := NewGraph(testNodes())
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	chain, err := g.PrerequisiteChain("mult")
	if err != nil {
		t.Fatalf("chain: %v", err)
	}
	if len(chain) != 4 {
		t.Fatalf("chain has %d nodes, want 4", len(chain))
	}
	if chain[len(chain)-1].Code != "mult" {
		t.Errorf("goal not last in chain: %v", chain)
	}
}

func TestEstimatedHoursByDifficulty(t *testing.T) {
	cases := []struct {
		difficulty int
		want       float64
	}{
		{1, 1.5}, {2, 1.5}, {3, 2.5}, {4, 4.0}, {5, 4.0},
	}
	for _, tc := range cases {
		n := Node{Difficulty: tc.difficulty}
		if got := n.EstimatedHours(); got != tc.want {
			t.Errorf("difficulty %d: hours = %v, want %v", tc.difficulty, got, tc.want)
		}
	}
}

func TestDefaultGraphIsValid(t *testing.T) {
	g := DefaultGraph()
	if len(g.All()) == 0 {
		t.Fatal("default curriculum is empty")
	}
	// Every grade 3-5 has at least one entry node.
	for grade := 3; grade <= 5; grade++ {
		if len(g.ByGrade(grade)) == 0 {
			t.Errorf("grade %d has no nodes", grade)
		}
	}
}
