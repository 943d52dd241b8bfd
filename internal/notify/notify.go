package notify

import (
	"context"

	"github.com/pathwise/tutorengine/internal/logger"
)

// Event is a fire-and-forget notification emitted on engine milestones.
// Gamification and messaging collaborators consume these; their failures
// never roll back the update that produced the event.
type Event struct {
	Kind      Kind
	StudentID string
	NodeCode  string
	SessionID string

	// Detail carries event-specific values: streak length, review
	// interval days, placement frontier.
	Detail map[string]any
}

type Kind string

const (
	KindNodeMastered       Kind = "node_mastered"
	KindReviewPassed       Kind = "review_passed"
	KindStreakReached      Kind = "streak_reached"
	KindPlacementCompleted Kind = "placement_completed"
)

// Sink receives events. Implementations must tolerate being called
// concurrently and should return quickly.
type Sink interface {
	Notify(ctx context.Context, ev Event) error
}

// Hub fans events out to registered sinks, swallowing and logging sink
// failures.
type Hub struct {
	sinks []Sink
	log   *logger.Logger
}

func NewHub(log *logger.Logger, sinks ...Sink) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{sinks: sinks, log: log.With("component", "notify")}
}

// Publish delivers the event to every sink. A failing sink is logged at
// Warn and skipped; Publish itself never fails.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	for _, s := range h.sinks {
		if err := s.Notify(ctx, ev); err != nil {
			h.log.Warn("notification sink failed",
				"kind", string(ev.Kind), "student", ev.StudentID, "error", err)
		}
	}
}

// LogSink writes events to the structured log. It is the default sink in
// the CLI wiring.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	if log == nil {
		log = logger.Nop()
	}
	return &LogSink{log: log.With("component", "events")}
}

func (s *LogSink) Notify(_ context.Context, ev Event) error {
	s.log.Info("event",
		"kind", string(ev.Kind),
		"student", ev.StudentID,
		"node", ev.NodeCode,
		"session", ev.SessionID)
	return nil
}
