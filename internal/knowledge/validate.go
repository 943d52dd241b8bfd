package knowledge

import (
	"fmt"
	"strings"
)

// validateNodes performs all structural checks on the given node set.
// Returns a combined error describing all problems found, or nil if valid.
func validateNodes(nodes []Node) error {
	var errs []string

	codeSet := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if codeSet[n.Code] {
			errs = append(errs, fmt.Sprintf("duplicate node code: %q", n.Code))
		}
		codeSet[n.Code] = true
	}

	// Dangling prerequisites.
	for _, n := range nodes {
		for _, p := range n.Prerequisites {
			if !codeSet[p] {
				errs = append(errs, fmt.Sprintf("node %q references nonexistent prerequisite %q", n.Code, p))
			}
		}
	}

	// Cycle detection via Kahn's algorithm: any node left with positive
	// in-degree after the sweep is part of a cycle.
	inDegree := make(map[string]int, len(nodes))
	adj := make(map[string][]string)
	for _, n := range nodes {
		inDegree[n.Code] = len(n.Prerequisites)
		for _, p := range n.Prerequisites {
			adj[p] = append(adj[p], n.Code)
		}
	}
	var queue []string
	for _, n := range nodes {
		if inDegree[n.Code] == 0 {
			queue = append(queue, n.Code)
		}
	}
	visited := 0
	for len(queue) > 0 {
		code := queue[0]
		queue = queue[1:]
		visited++
		for _, dep := range adj[code] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if visited < len(nodes) {
		var cycleNodes []string
		for _, n := range nodes {
			if inDegree[n.Code] > 0 {
				cycleNodes = append(cycleNodes, n.Code)
			}
		}
		errs = append(errs, fmt.Sprintf("cycle detected involving nodes: %s", strings.Join(cycleNodes, ", ")))
	}

	hasRoot := false
	for _, n := range nodes {
		if len(n.Prerequisites) == 0 {
			hasRoot = true
			break
		}
	}
	if len(nodes) > 0 && !hasRoot {
		errs = append(errs, "no root nodes found (at least one node must have no prerequisites)")
	}

	for _, n := range nodes {
		if n.Difficulty < 1 || n.Difficulty > 5 {
			errs = append(errs, fmt.Sprintf("node %q: Difficulty must be in [1, 5], got %d", n.Code, n.Difficulty))
		}
		if n.GradeLevel < 1 {
			errs = append(errs, fmt.Sprintf("node %q: GradeLevel must be >= 1, got %d", n.Code, n.GradeLevel))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("knowledge graph validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
