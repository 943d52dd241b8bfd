package scheduler

import (
	"sort"
	"time"

	"github.com/pathwise/tutorengine/internal/knowledge"
	"github.com/pathwise/tutorengine/internal/tracing"
)

// Review session sizing.
const (
	MaxSessionNodes   = 10
	MaxRefresherSlots = 3
	RefresherIdleDays = 14
)

// EntryTag says why a node was selected for review.
type EntryTag string

const (
	TagOverdue   EntryTag = "overdue"   // past its scheduled due date
	TagRefresher EntryTag = "refresher" // mastered but idle long enough to risk decay
)

// Entry is one node in a review session with a snapshot of its mastery
// state at selection time.
type Entry struct {
	Node        knowledge.Node
	Tag         EntryTag
	Probability float64
	OverdueDays float64
}

// Session is a transient grouping of nodes for one review pass. It is never
// persisted; answers inside it flow back through the regular mastery and
// scheduler updates.
type Session struct {
	Entries []Entry
	BuiltAt time.Time
}

// BuildSession assembles a bounded review set from the student's scores.
//
// Due nodes come first: more than one day past due ranks ahead of due
// today, weakest mastery probability breaking ties. If fewer than
// MaxSessionNodes are due, up to MaxRefresherSlots are filled with mastered
// nodes unpracticed for RefresherIdleDays or more, oldest first. Returns
// nil when there is nothing to review; callers must treat that as "no
// session", not as an empty one.
func BuildSession(g *knowledge.Graph, scores map[string]*tracing.MasteryScore, now time.Time) *Session {
	type candidate struct {
		node    knowledge.Node
		score   *tracing.MasteryScore
		overdue float64
	}

	var due []candidate
	for code, s := range scores {
		if s.NextDueAt.IsZero() || now.Before(s.NextDueAt) {
			continue
		}
		node, err := g.Get(code)
		if err != nil {
			continue
		}
		due = append(due, candidate{
			node:    node,
			score:   s,
			overdue: now.Sub(s.NextDueAt).Hours() / 24.0,
		})
	}

	sort.Slice(due, func(i, j int) bool {
		oi, oj := due[i].overdue > 1, due[j].overdue > 1
		if oi != oj {
			return oi
		}
		if due[i].score.Probability != due[j].score.Probability {
			return due[i].score.Probability < due[j].score.Probability
		}
		return due[i].node.Code < due[j].node.Code
	})

	if len(due) > MaxSessionNodes {
		due = due[:MaxSessionNodes]
	}

	selected := make(map[string]bool, len(due))
	entries := make([]Entry, 0, MaxSessionNodes)
	for _, c := range due {
		selected[c.node.Code] = true
		entries = append(entries, Entry{
			Node:        c.node,
			Tag:         TagOverdue,
			Probability: c.score.Probability,
			OverdueDays: c.overdue,
		})
	}

	// Refresher slots: mastered nodes going stale.
	if len(entries) < MaxSessionNodes {
		var refreshers []candidate
		cutoff := now.AddDate(0, 0, -RefresherIdleDays)
		for code, s := range scores {
			if selected[code] || s.Level() != tracing.LevelMastered {
				continue
			}
			if s.LastPracticedAt.IsZero() || s.LastPracticedAt.After(cutoff) {
				continue
			}
			node, err := g.Get(code)
			if err != nil {
				continue
			}
			refreshers = append(refreshers, candidate{node: node, score: s})
		}

		sort.Slice(refreshers, func(i, j int) bool {
			if !refreshers[i].score.LastPracticedAt.Equal(refreshers[j].score.LastPracticedAt) {
				return refreshers[i].score.LastPracticedAt.Before(refreshers[j].score.LastPracticedAt)
			}
			return refreshers[i].node.Code < refreshers[j].node.Code
		})

		slots := MaxRefresherSlots
		if room := MaxSessionNodes - len(entries); room < slots {
			slots = room
		}
		for i := 0; i < slots && i < len(refreshers); i++ {
			entries = append(entries, Entry{
				Node:        refreshers[i].node,
				Tag:         TagRefresher,
				Probability: refreshers[i].score.Probability,
			})
		}
	}

	if len(entries) == 0 {
		return nil
	}

	return &Session{Entries: entries, BuiltAt: now}
}
