package knowledge

// Subject represents a content domain within the curriculum.
type Subject string

const (
	SubjectNumberSense Subject = "number-sense"
	SubjectArithmetic  Subject = "arithmetic"
	SubjectFractions   Subject = "fractions"
	SubjectGeometry    Subject = "geometry"
	SubjectMeasurement Subject = "measurement"
)

// AllSubjects returns all subjects in display order.
func AllSubjects() []Subject {
	return []Subject{
		SubjectNumberSense,
		SubjectArithmetic,
		SubjectFractions,
		SubjectGeometry,
		SubjectMeasurement,
	}
}

// Node is an immutable concept definition in the prerequisite graph.
// Nodes are identified by a stable Code; edges are expressed as
// prerequisite codes. The set of nodes forms a DAG; cycles are an
// invariant violation caught by NewGraph.
type Node struct {
	Code          string
	Title         string
	Description   string
	Subject       Subject
	GradeLevel    int
	Difficulty    int // ordinal within the grade, 1 (easiest) to 5 (hardest)
	Prerequisites []string
}

// EstimatedHours returns the fixed per-difficulty time heuristic used by
// goal-aware placement to estimate hours-to-mastery for a gap node.
func (n Node) EstimatedHours() float64 {
	switch {
	case n.Difficulty <= 2:
		return 1.5
	case n.Difficulty == 3:
		return 2.5
	default:
		return 4.0
	}
}
