package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/pathwise/tutorengine/internal/tracing"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show mastery progress",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	scores, err := a.store.MasteryScores().AllForStudent(ctx, a.studentID)
	if err != nil {
		return err
	}
	if len(scores) == 0 {
		fmt.Println("No progress yet. Run `tutorengine placement` to get started.")
		return nil
	}

	codes := make([]string, 0, len(scores))
	for code := range scores {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	now := time.Now()
	due := 0
	byLevel := map[tracing.Level]int{}

	fmt.Printf("%-28s %-12s %8s %10s  %s\n", "CONCEPT", "LEVEL", "P(know)", "PRACTICED", "NEXT REVIEW")
	for _, code := range codes {
		s := scores[code]
		node, err := a.graph.Get(code)
		title := code
		if err == nil {
			title = node.Title
		}
		level := s.Level()
		byLevel[level]++

		next := "-"
		if !s.NextDueAt.IsZero() {
			if now.After(s.NextDueAt) {
				next = "due now"
				due++
			} else {
				next = fmt.Sprintf("in %dd", int(s.NextDueAt.Sub(now).Hours()/24)+1)
			}
		}
		fmt.Printf("%-28s %-12s %8.2f %10d  %s\n", title, level, s.Probability, s.PracticeCount, next)
	}

	total, correct, err := a.store.Responses().CountForStudent(ctx, a.studentID)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Printf("Mastered %d, proficient %d, developing %d, novice %d.\n",
		byLevel[tracing.LevelMastered], byLevel[tracing.LevelProficient],
		byLevel[tracing.LevelDeveloping], byLevel[tracing.LevelNovice])
	if total > 0 {
		fmt.Printf("Lifetime answers: %d (%d correct, %.0f%%).\n", total, correct, 100*float64(correct)/float64(total))
	}
	if due > 0 {
		fmt.Printf("%d concept(s) due for review; run `tutorengine review`.\n", due)
	}
	return nil
}
