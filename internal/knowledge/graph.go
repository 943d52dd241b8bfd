package knowledge

import (
	"fmt"
	"slices"
	"sort"
)

// ErrNodeNotFound is returned when a node code has no definition in the graph.
type ErrNodeNotFound struct {
	Code string
}

func (e *ErrNodeNotFound) Error() string {
	return fmt.Sprintf("knowledge node not found: %q", e.Code)
}

// Graph holds the concept DAG with precomputed indices.
type Graph struct {
	nodes      []Node
	byCode     map[string]*Node
	bySubject  map[Subject][]Node
	byGrade    map[int][]Node
	dependents map[string][]string
	topoOrder  []Node
	topoIndex  map[string]int
}

// NewGraph constructs a graph from a slice of nodes. It validates the node
// set (duplicate codes, dangling or cyclic prerequisites) and builds all
// indices including topological order (Kahn's algorithm).
func NewGraph(nodes []Node) (*Graph, error) {
	if err := validateNodes(nodes); err != nil {
		return nil, err
	}

	g := &Graph{
		nodes:      slices.Clone(nodes),
		byCode:     make(map[string]*Node, len(nodes)),
		bySubject:  make(map[Subject][]Node),
		byGrade:    make(map[int][]Node),
		dependents: make(map[string][]string),
		topoIndex:  make(map[string]int, len(nodes)),
	}

	for i := range g.nodes {
		g.byCode[g.nodes[i].Code] = &g.nodes[i]
	}

	// Reverse edges.
	for i := range g.nodes {
		for _, prereq := range g.nodes[i].Prerequisites {
			g.dependents[prereq] = append(g.dependents[prereq], g.nodes[i].Code)
		}
	}

	// Topological sort (Kahn's algorithm), deterministic via sorted queues.
	inDegree := make(map[string]int, len(nodes))
	for i := range g.nodes {
		inDegree[g.nodes[i].Code] = len(g.nodes[i].Prerequisites)
	}
	var queue []string
	for code, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, code)
		}
	}
	sort.Strings(queue)

	for len(queue) > 0 {
		code := queue[0]
		queue = queue[1:]

		g.topoOrder = append(g.topoOrder, *g.byCode[code])

		deps := slices.Clone(g.dependents[code])
		sort.Strings(deps)
		for _, dep := range deps {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	for i, n := range g.topoOrder {
		g.topoIndex[n.Code] = i
	}

	// Grade groups, ordered by ascending difficulty then topological position.
	// This is the candidate order the placement engine searches.
	for i := range g.nodes {
		n := g.nodes[i]
		g.byGrade[n.GradeLevel] = append(g.byGrade[n.GradeLevel], n)
	}
	for grade, group := range g.byGrade {
		sort.Slice(group, func(i, j int) bool {
			if group[i].Difficulty != group[j].Difficulty {
				return group[i].Difficulty < group[j].Difficulty
			}
			return g.topoIndex[group[i].Code] < g.topoIndex[group[j].Code]
		})
		g.byGrade[grade] = group
	}

	// Subject groups, ordered by grade then topological position.
	for i := range g.nodes {
		n := g.nodes[i]
		g.bySubject[n.Subject] = append(g.bySubject[n.Subject], n)
	}
	for subject, group := range g.bySubject {
		sort.Slice(group, func(i, j int) bool {
			if group[i].GradeLevel != group[j].GradeLevel {
				return group[i].GradeLevel < group[j].GradeLevel
			}
			return g.topoIndex[group[i].Code] < g.topoIndex[group[j].Code]
		})
		g.bySubject[subject] = group
	}

	return g, nil
}

// Get returns a node by code.
func (g *Graph) Get(code string) (Node, error) {
	n, ok := g.byCode[code]
	if !ok {
		return Node{}, &ErrNodeNotFound{Code: code}
	}
	return *n, nil
}

// All returns all nodes in the graph.
func (g *Graph) All() []Node {
	return slices.Clone(g.nodes)
}

// ByGrade returns all nodes for a grade level, ordered by ascending
// difficulty then topological position.
func (g *Graph) ByGrade(grade int) []Node {
	return slices.Clone(g.byGrade[grade])
}

// BySubject returns all nodes in a subject, ordered by grade then
// topological position.
func (g *Graph) BySubject(subject Subject) []Node {
	return slices.Clone(g.bySubject[subject])
}

// Prerequisites returns the direct prerequisite nodes of the given code.
func (g *Graph) Prerequisites(code string) []Node {
	n, ok := g.byCode[code]
	if !ok {
		return nil
	}
	result := make([]Node, 0, len(n.Prerequisites))
	for _, p := range n.Prerequisites {
		if pn, ok := g.byCode[p]; ok {
			result = append(result, *pn)
		}
	}
	return result
}

// Dependents returns nodes that directly depend on the given code.
func (g *Graph) Dependents(code string) []Node {
	deps := g.dependents[code]
	result := make([]Node, 0, len(deps))
	for _, d := range deps {
		if dn, ok := g.byCode[d]; ok {
			result = append(result, *dn)
		}
	}
	return result
}

// TopologicalOrder returns all nodes in a valid topological order.
func (g *Graph) TopologicalOrder() []Node {
	return slices.Clone(g.topoOrder)
}

// IsUnlocked reports whether every prerequisite of the given node is in the
// proficient set. A node with no prerequisites is always unlocked.
func (g *Graph) IsUnlocked(code string, proficient map[string]bool) bool {
	n, ok := g.byCode[code]
	if !ok {
		return false
	}
	for _, p := range n.Prerequisites {
		if !proficient[p] {
			return false
		}
	}
	return true
}

// Available returns all nodes that are unlocked but not themselves in the
// proficient set, in topological order.
func (g *Graph) Available(proficient map[string]bool) []Node {
	var result []Node
	for _, n := range g.topoOrder {
		if !proficient[n.Code] && g.IsUnlocked(n.Code, proficient) {
			result = append(result, n)
		}
	}
	return result
}

// PrerequisiteChain returns the full ancestor closure of the goal node plus
// the goal itself, in topological order. This is the ordered search space
// for goal-aware placement.
func (g *Graph) PrerequisiteChain(goal string) ([]Node, error) {
	if _, ok := g.byCode[goal]; !ok {
		return nil, &ErrNodeNotFound{Code: goal}
	}

	closure := map[string]bool{goal: true}
	stack := []string{goal}
	for len(stack) > 0 {
		code := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range g.byCode[code].Prerequisites {
			if !closure[p] {
				closure[p] = true
				stack = append(stack, p)
			}
		}
	}

	var chain []Node
	for _, n := range g.topoOrder {
		if closure[n.Code] {
			chain = append(chain, n)
		}
	}
	return chain, nil
}
