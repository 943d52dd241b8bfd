package cmd

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pathwise/tutorengine/internal/content"
	"github.com/pathwise/tutorengine/internal/scheduler"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review concepts that are due",
	Long: "Review builds a short session from concepts past their scheduled due\n" +
		"date, weakest first, topping up with mastered concepts that have gone\n" +
		"untouched for a while. Each answer reschedules the concept.",
	Args: cobra.NoArgs,
	RunE: runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
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
	sess := scheduler.BuildSession(a.graph, scores, time.Now())
	if sess == nil {
		fmt.Println("Nothing due for review. Nice work staying on top of things.")
		return nil
	}

	fmt.Printf("%d concept(s) to review.\n", len(sess.Entries))
	sessionID := uuid.NewString()
	in := bufio.NewScanner(os.Stdin)
	reviewed, correct := 0, 0

	for _, entry := range sess.Entries {
		if entry.Tag == scheduler.TagRefresher {
			fmt.Printf("\nQuick refresher: %s\n", entry.Node.Title)
		} else {
			fmt.Printf("\nReviewing: %s\n", entry.Node.Title)
		}

		q, err := a.generator.Question(ctx, content.QuestionInput{Node: entry.Node, Step: "review"})
		if err != nil {
			return err
		}
		choice, elapsed, ok := askQuestion(in, q, nil)
		if !ok {
			break
		}
		printFeedback(q, choice)

		wasCorrect := choice == q.CorrectIndex
		_, rev, err := a.orch.HandleReviewAnswer(ctx, a.studentID, entry.Node.Code, sessionID,
			wasCorrect, int(elapsed.Milliseconds()), time.Now())
		if err != nil {
			return err
		}
		reviewed++
		if wasCorrect {
			correct++
			fmt.Printf("Next review in %d day(s).\n", rev.IntervalDays)
		} else {
			fmt.Println("Back on the short cycle; we'll see this again tomorrow.")
		}
	}

	if reviewed > 0 {
		fmt.Printf("\nReview done: %d/%d correct.\n", correct, reviewed)
	}
	return nil
}
