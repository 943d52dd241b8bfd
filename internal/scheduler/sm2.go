package scheduler

import (
	"math"
	"time"

	"github.com/pathwise/tutorengine/internal/tracing"
)

// Easiness factor bounds and the penalty applied on a failed review.
const (
	MinEasiness       = 1.3
	MaxEasiness       = 2.5
	EasinessDecrement = 0.2
)

// fixedIntervals is the graduated schedule (in days) for the first four
// reviews after mastery. Easiness only takes over from the fifth review on.
var fixedIntervals = [4]int{1, 3, 7, 16}

// Review is the scheduler's output: the new spacing state for a concept and
// when it comes due next.
type Review struct {
	IntervalDays int
	Easiness     float64
	ReviewCount  int
	DueAt        time.Time
}

// NextReview computes the next review state from the previous one.
//
// On an incorrect review the interval resets to 1 day and the easiness
// factor drops by EasinessDecrement, floored at MinEasiness; the review
// count restarts. On a correct review, reviewCount 0 through 3 follow the
// fixed 1/3/7/16-day schedule regardless of easiness; from the fourth
// successful review on, the interval grows by the easiness multiplier.
func NextReview(prevIntervalDays int, prevEasiness float64, reviewCount int, wasCorrect bool, now time.Time) Review {
	easiness := clampEasiness(prevEasiness)

	if !wasCorrect {
		easiness = clampEasiness(prevEasiness - EasinessDecrement)
		return Review{
			IntervalDays: 1,
			Easiness:     easiness,
			ReviewCount:  0,
			DueAt:        now.AddDate(0, 0, 1),
		}
	}

	var interval int
	if reviewCount < len(fixedIntervals) {
		interval = fixedIntervals[reviewCount]
	} else {
		interval = int(math.Round(float64(prevIntervalDays) * easiness))
		if interval < 1 {
			interval = 1
		}
	}

	return Review{
		IntervalDays: interval,
		Easiness:     easiness,
		ReviewCount:  reviewCount + 1,
		DueAt:        now.AddDate(0, 0, interval),
	}
}

// InitSchedule seeds the scheduler fields on a score whose node has just
// reached true mastery: the first review comes due one day out.
func InitSchedule(s *tracing.MasteryScore, now time.Time) {
	r := NextReview(0, s.Easiness, 0, true, now)
	applyReview(s, r)
}

// ApplyReview records the outcome of one review answer, advancing the
// score's scheduler fields through the documented transition rules. This is
// the only place those fields change.
func ApplyReview(s *tracing.MasteryScore, wasCorrect bool, now time.Time) Review {
	r := NextReview(s.IntervalDays, s.Easiness, s.ReviewCount, wasCorrect, now)
	applyReview(s, r)
	return r
}

func applyReview(s *tracing.MasteryScore, r Review) {
	s.IntervalDays = r.IntervalDays
	s.Easiness = r.Easiness
	s.ReviewCount = r.ReviewCount
	s.NextDueAt = r.DueAt
}

func clampEasiness(e float64) float64 {
	if e < MinEasiness {
		return MinEasiness
	}
	if e > MaxEasiness {
		return MaxEasiness
	}
	return e
}
