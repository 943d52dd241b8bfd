package scheduler

import (
	"testing"
	"time"

	"github.com/pathwise/tutorengine/internal/tracing"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestIncorrectResetsIntervalAndDropsEasiness(t *testing.T) {
	cases := []struct {
		prevEasiness float64
		wantEasiness float64
	}{
		{2.5, 2.3},
		{1.5, 1.3},
		{1.4, 1.3}, // floored
		{1.3, 1.3},
	}
	for _, tc := range cases {
		r := NextReview(30, tc.prevEasiness, 7, false, now)
		if r.IntervalDays != 1 {
			t.Errorf("easiness %v: interval = %d, want 1", tc.prevEasiness, r.IntervalDays)
		}
		if r.Easiness != tc.wantEasiness {
			t.Errorf("easiness %v: new easiness = %v, want %v", tc.prevEasiness, r.Easiness, tc.wantEasiness)
		}
		if r.ReviewCount != 0 {
			t.Errorf("easiness %v: review count = %d, want reset", tc.prevEasiness, r.ReviewCount)
		}
		if !r.DueAt.Equal(now.AddDate(0, 0, 1)) {
			t.Errorf("due at %v", r.DueAt)
		}
	}
}

func TestFixedScheduleIgnoresEasiness(t *testing.T) {
	want := []int{1, 3, 7, 16}
	for _, easiness := range []float64{1.3, 2.0, 2.5} {
		interval := 0
		for count := 0; count < 4; count++ {
			r := NextReview(interval, easiness, count, true, now)
			if r.IntervalDays != want[count] {
				t.Errorf("easiness %v review %d: interval = %d, want %d",
					easiness, count, r.IntervalDays, want[count])
			}
			if r.ReviewCount != count+1 {
				t.Errorf("review %d: count = %d", count, r.ReviewCount)
			}
			interval = r.IntervalDays
		}
	}
}

func TestExponentialGrowthAfterFourthReview(t *testing.T) {
	r := NextReview(16, 2.5, 4, true, now)
	if r.IntervalDays != 40 {
		t.Errorf("interval = %d, want round(16*2.5)=40", r.IntervalDays)
	}

	r = NextReview(10, 1.3, 6, true, now)
	if r.IntervalDays != 13 {
		t.Errorf("interval = %d, want round(10*1.3)=13", r.IntervalDays)
	}
}

func TestEasinessClampedOnEntry(t *testing.T) {
	r := NextReview(10, 9.9, 5, true, now)
	if r.Easiness != MaxEasiness {
		t.Errorf("easiness = %v, want clamped to %v", r.Easiness, MaxEasiness)
	}
	if r.IntervalDays != 25 {
		t.Errorf("interval = %d, want round(10*2.5)=25", r.IntervalDays)
	}
}

func TestInitScheduleSeedsOneDayOut(t *testing.T) {
	s := tracing.NewScore("student", "node")
	InitSchedule(s, now)
	if s.IntervalDays != 1 || s.ReviewCount != 1 {
		t.Errorf("interval=%d count=%d", s.IntervalDays, s.ReviewCount)
	}
	if !s.NextDueAt.Equal(now.AddDate(0, 0, 1)) {
		t.Errorf("due at %v", s.NextDueAt)
	}
}

func TestApplyReviewWalksTheSchedule(t *testing.T) {
	s := tracing.NewScore("student", "node")
	InitSchedule(s, now)

	at := s.NextDueAt
	wantIntervals := []int{3, 7, 16, 40} // then 16*2.5 = 40
	for i, want := range wantIntervals {
		r := ApplyReview(s, true, at)
		if r.IntervalDays != want {
			t.Fatalf("review %d: interval = %d, want %d", i+1, r.IntervalDays, want)
		}
		at = r.DueAt
	}

	// A miss resets the walk.
	r := ApplyReview(s, false, at)
	if r.IntervalDays != 1 || r.ReviewCount != 0 || r.Easiness != 2.3 {
		t.Errorf("after miss: %+v", r)
	}
}
