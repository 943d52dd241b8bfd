package rewards

import (
	"context"
	"fmt"

	"github.com/pathwise/tutorengine/internal/notify"
)

// Tier grades an achievement. Ordered from lowest to highest.
type Tier string

const (
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

// Streak lengths that earn recognition, in ascending order.
var streakThresholds = []int{5, 10, 20}

// StreakTier maps a streak length to its tier.
func StreakTier(length int) Tier {
	switch {
	case length >= 20:
		return TierGold
	case length >= 10:
		return TierSilver
	default:
		return TierBronze
	}
}

// SessionTier grades a finished session by accuracy.
func SessionTier(accuracy float64) Tier {
	switch {
	case accuracy >= 0.90:
		return TierGold
	case accuracy >= 0.75:
		return TierSilver
	default:
		return TierBronze
	}
}

// Award is one recognized achievement.
type Award struct {
	Tier   Tier
	Streak int
	Reason string
}

// Tracker watches a session's answers for correct-answer streaks. Each
// threshold fires at most once per session; an incorrect answer resets the
// running streak but not the fired thresholds.
type Tracker struct {
	hub    *notify.Hub
	streak int
	fired  map[int]bool
}

func NewTracker(hub *notify.Hub) *Tracker {
	return &Tracker{hub: hub, fired: make(map[int]bool)}
}

// Streak returns the current run of correct answers.
func (t *Tracker) Streak() int {
	return t.streak
}

// Observe records one answer. When a streak threshold is crossed for the
// first time this session it returns the award and publishes a
// streak_reached event; otherwise it returns nil.
func (t *Tracker) Observe(ctx context.Context, studentID, nodeCode, sessionID string, wasCorrect bool) *Award {
	if !wasCorrect {
		t.streak = 0
		return nil
	}
	t.streak++

	for _, threshold := range streakThresholds {
		if t.streak != threshold || t.fired[threshold] {
			continue
		}
		t.fired[threshold] = true
		award := &Award{
			Tier:   StreakTier(threshold),
			Streak: threshold,
			Reason: fmt.Sprintf("%d correct in a row", threshold),
		}
		if t.hub != nil {
			t.hub.Publish(ctx, notify.Event{
				Kind:      notify.KindStreakReached,
				StudentID: studentID,
				NodeCode:  nodeCode,
				SessionID: sessionID,
				Detail: map[string]any{
					"streak": threshold,
					"tier":   string(award.Tier),
				},
			})
		}
		return award
	}
	return nil
}
