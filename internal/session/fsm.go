package session

import "fmt"

// State names the activity a session is in. The presentation layer keys
// off the recommended action for each state; the engine only cares about
// which transitions are legal.
type State string

const (
	StateIdle           State = "IDLE"
	StateDiagnostic     State = "DIAGNOSTIC"
	StateTeaching       State = "TEACHING"
	StatePractice       State = "PRACTICE"
	StateHintRequested  State = "HINT_REQUESTED"
	StateStruggling     State = "STRUGGLING"
	StateCelebrating    State = "CELEBRATING"
	StateBossChallenge  State = "BOSS_CHALLENGE"
	StateEmotionalCheck State = "EMOTIONAL_CHECK"
	StateReview         State = "REVIEW"
	StateCompleted      State = "COMPLETED"
)

// AllStates lists every state, in declaration order.
func AllStates() []State {
	return []State{
		StateIdle, StateDiagnostic, StateTeaching, StatePractice,
		StateHintRequested, StateStruggling, StateCelebrating,
		StateBossChallenge, StateEmotionalCheck, StateReview,
		StateCompleted,
	}
}

// transitions is the single source of truth for legal moves. Directed:
// an entry here does not imply the reverse.
var transitions = map[State][]State{
	StateIdle:           {StateDiagnostic, StateTeaching},
	StateDiagnostic:     {StateTeaching, StateCompleted},
	StateTeaching:       {StatePractice, StateEmotionalCheck, StateCompleted},
	StatePractice:       {StateCelebrating, StateStruggling, StateHintRequested, StateReview, StateBossChallenge, StateTeaching, StateCompleted},
	StateHintRequested:  {StatePractice, StateStruggling, StateCompleted},
	StateStruggling:     {StateEmotionalCheck, StateTeaching, StateHintRequested, StateCompleted},
	StateCelebrating:    {StatePractice, StateTeaching, StateBossChallenge, StateCompleted},
	StateBossChallenge:  {StateCelebrating, StateStruggling, StateTeaching, StateCompleted},
	StateEmotionalCheck: {StateTeaching, StateStruggling, StateIdle, StateCompleted},
	StateReview:         {StatePractice, StateTeaching, StateCompleted},
	StateCompleted:      {StateIdle},
}

// ErrInvalidTransition names both states of a rejected move.
type ErrInvalidTransition struct {
	From State
	To   State
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// IsValidTransition reports whether from -> to appears in the table.
func IsValidTransition(from, to State) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Transition is the record of one accepted state change.
type Transition struct {
	From  State
	To    State
	Event string
}

// TransitionPure validates a move without touching any session. It is the
// central enforcement point: every state change goes through here.
func TransitionPure(from, to State, event string) (Transition, error) {
	if !IsValidTransition(from, to) {
		return Transition{}, &ErrInvalidTransition{From: from, To: to}
	}
	return Transition{From: from, To: to, Event: event}, nil
}

// Action is the recommended next activity for the presentation layer.
type Action string

const (
	ActionChooseActivity  Action = "choose_activity"
	ActionRunDiagnostic   Action = "run_diagnostic"
	ActionShowLesson      Action = "show_lesson"
	ActionAskQuestion     Action = "ask_question"
	ActionShowHint        Action = "show_hint"
	ActionOfferSupport    Action = "offer_support"
	ActionCelebrate       Action = "celebrate"
	ActionRunChallenge    Action = "run_challenge"
	ActionCheckIn         Action = "check_in"
	ActionReviewConcepts  Action = "review_concepts"
	ActionShowSummary     Action = "show_summary"
)

// RecommendedAction maps a state to its single next action. Total over
// all states; an unknown state is a programming error.
func RecommendedAction(s State) Action {
	switch s {
	case StateIdle:
		return ActionChooseActivity
	case StateDiagnostic:
		return ActionRunDiagnostic
	case StateTeaching:
		return ActionShowLesson
	case StatePractice:
		return ActionAskQuestion
	case StateHintRequested:
		return ActionShowHint
	case StateStruggling:
		return ActionOfferSupport
	case StateCelebrating:
		return ActionCelebrate
	case StateBossChallenge:
		return ActionRunChallenge
	case StateEmotionalCheck:
		return ActionCheckIn
	case StateReview:
		return ActionReviewConcepts
	case StateCompleted:
		return ActionShowSummary
	default:
		panic(fmt.Sprintf("no recommended action for state %q", s))
	}
}
