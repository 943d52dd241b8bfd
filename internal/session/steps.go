package session

// Step is the position in the 5-step practice loop nested inside the
// TEACHING/PRACTICE region. It is a separate state system from the outer
// machine, composed with it by the orchestrator.
type Step int

const (
	StepTeach               Step = 1
	StepCheckUnderstanding  Step = 2
	StepGuidedPractice      Step = 3
	StepIndependentPractice Step = 4
	StepMasteryProof        Step = 5
)

// StepName is the label recorded on responses for the given step.
func StepName(s Step) string {
	switch s {
	case StepTeach:
		return "teach"
	case StepCheckUnderstanding:
		return "check_understanding"
	case StepGuidedPractice:
		return "guided_practice"
	case StepIndependentPractice:
		return "independent_practice"
	case StepMasteryProof:
		return "mastery_proof"
	default:
		return "unknown"
	}
}

// Questions and pass thresholds per step. Step 2 is a readiness check:
// one question, any answer advances, and it carries zero mastery weight.
var stepQuestions = map[Step]int{
	StepCheckUnderstanding:  1,
	StepGuidedPractice:      3,
	StepIndependentPractice: 5,
	StepMasteryProof:        1,
}

var stepPassThreshold = map[Step]int{
	StepCheckUnderstanding:  0,
	StepGuidedPractice:      2,
	StepIndependentPractice: 4,
	StepMasteryProof:        1,
}

// Loop tracks the step counter with its per-step (correct, total) tally.
type Loop struct {
	Step    Step
	Correct int
	Total   int
}

// NewLoop starts at the teach step; no questions are asked until
// StartPractice moves it to the readiness check.
func NewLoop() Loop {
	return Loop{Step: StepTeach}
}

// StartPractice moves from the teach step into the readiness check.
func (l *Loop) StartPractice() {
	if l.Step == StepTeach {
		l.set(StepCheckUnderstanding)
	}
}

// ResetToTeach restarts the loop at the teach step, e.g. after the
// session routes through TEACHING again.
func (l *Loop) ResetToTeach() {
	l.set(StepTeach)
}

// Outcome describes what one answer did to the loop.
type Outcome struct {
	// Step is the step the answer was recorded in.
	Step Step

	// StepComplete is true when the step's question quota is reached.
	StepComplete bool

	// Passed is meaningful only when StepComplete: whether the step's
	// threshold was met.
	Passed bool

	// AwaitingGate is true after a correct mastery-proof answer: the
	// loop holds position until the gate verdict is applied. A refusal
	// lands in GateHeld, which returns the loop to the readiness check;
	// an advance ends the loop with the celebration.
	AwaitingGate bool
}

// Record tallies one answer in the current step and moves the loop
// according to the step rules:
//
//	step 2: 1 question, always advances
//	step 3: 3 questions, >=2 correct, else back to step 2
//	step 4: 5 questions, >=4 correct, else back to step 2
//	step 5: 1 question, correct holds for the gate, incorrect back to step 2
func (l *Loop) Record(wasCorrect bool) Outcome {
	if l.Step == StepTeach {
		// No questions at the teach step; callers must StartPractice first.
		return Outcome{Step: StepTeach}
	}

	l.Total++
	if wasCorrect {
		l.Correct++
	}

	out := Outcome{Step: l.Step}
	if l.Total < stepQuestions[l.Step] {
		return out
	}

	out.StepComplete = true
	out.Passed = l.Correct >= stepPassThreshold[l.Step]

	switch l.Step {
	case StepCheckUnderstanding:
		out.Passed = true
		l.set(StepGuidedPractice)
	case StepGuidedPractice:
		if out.Passed {
			l.set(StepIndependentPractice)
		} else {
			l.set(StepCheckUnderstanding)
		}
	case StepIndependentPractice:
		if out.Passed {
			l.set(StepMasteryProof)
		} else {
			l.set(StepCheckUnderstanding)
		}
	case StepMasteryProof:
		if out.Passed {
			// Passing the proof does not grant mastery by itself; the
			// gate decides where to go from here.
			out.AwaitingGate = true
		} else {
			l.set(StepCheckUnderstanding)
		}
	}
	return out
}

// GateHeld routes the loop after a gate verdict that did not advance:
// back to the readiness check.
func (l *Loop) GateHeld() {
	l.set(StepCheckUnderstanding)
}

func (l *Loop) set(s Step) {
	l.Step = s
	l.Correct = 0
	l.Total = 0
}
