package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pathwise/tutorengine/internal/content"
	"github.com/pathwise/tutorengine/internal/gate"
	"github.com/pathwise/tutorengine/internal/knowledge"
	"github.com/pathwise/tutorengine/internal/rewards"
	"github.com/pathwise/tutorengine/internal/session"
	"github.com/pathwise/tutorengine/internal/store"
	"github.com/pathwise/tutorengine/internal/tracing"
)

var practiceCmd = &cobra.Command{
	Use:   "practice [concept-code]",
	Short: "Run a teaching and practice session",
	Long: "Practice walks one concept through the full learning loop: a short\n" +
		"lesson, a readiness check, guided and independent practice, and a\n" +
		"mastery proof. Without an argument the next recommended concept is\n" +
		"chosen from the prerequisite graph.",
	Args: cobra.MaximumNArgs(1),
	RunE: runPractice,
}

func runPractice(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	node, err := pickNode(ctx, a, args)
	if err != nil {
		return err
	}

	sess := session.New(a.studentID, time.Now())
	if err := a.orch.StartTeaching(ctx, sess, node.Code); err != nil {
		return err
	}

	in := bufio.NewScanner(os.Stdin)
	if err := teach(ctx, a, in, sess, node); err != nil {
		return err
	}
	return practiceLoop(ctx, a, in, sess, node)
}

// pickNode resolves the concept to work on: the explicit argument if given,
// otherwise the recommendation from the graph and the student's scores.
func pickNode(ctx context.Context, a *app, args []string) (knowledge.Node, error) {
	if len(args) == 1 {
		return a.graph.Get(args[0])
	}
	scores, err := a.store.MasteryScores().AllForStudent(ctx, a.studentID)
	if err != nil {
		return knowledge.Node{}, err
	}
	node, ok := tracing.RecommendNextNode(a.graph, scores)
	if !ok {
		return knowledge.Node{}, fmt.Errorf("no concepts available; run `tutorengine stats` to see progress")
	}
	fmt.Printf("Next up: %s (%s, grade %d)\n", node.Title, node.Code, node.GradeLevel)
	return node, nil
}

func teach(ctx context.Context, a *app, in *bufio.Scanner, sess *session.LearningSession, node knowledge.Node) error {
	expl, err := a.generator.Explanation(ctx, content.ExplanationInput{Node: node})
	if err != nil {
		return err
	}
	printExplanation(expl, node)
	fmt.Print("Press enter when you are ready for a quick check. ")
	if !in.Scan() {
		return sess.Complete(time.Now())
	}
	return a.orch.BeginPractice(ctx, sess)
}

func practiceLoop(ctx context.Context, a *app, in *bufio.Scanner, sess *session.LearningSession, node knowledge.Node) error {
	var asked []string
	var recentErrors []string
	streaks := rewards.NewTracker(a.events)

	for {
		q, err := a.generator.Question(ctx, content.QuestionInput{
			Node:           node,
			Step:           session.StepName(sess.Loop.Step),
			PriorQuestions: asked,
			RecentErrors:   recentErrors,
		})
		if err != nil {
			return err
		}
		asked = append(asked, q.Text)

		// No hints during the mastery proof. Elsewhere a hint is a real
		// state excursion so a hinted answer cannot land mid-transition.
		var hint func() (string, error)
		if sess.Loop.Step != session.StepMasteryProof && q.Hint != "" {
			hint = func() (string, error) {
				if err := a.orch.RequestHint(ctx, sess); err != nil {
					return "", err
				}
				if err := a.orch.HintShown(ctx, sess); err != nil {
					return "", err
				}
				return q.Hint, nil
			}
		}
		choice, elapsed, ok := askQuestion(in, q, hint)
		if !ok {
			fmt.Println("\nSession saved. See you next time.")
			return finishSession(ctx, a, sess)
		}

		res, err := a.orch.HandleAnswer(ctx, sess, q, choice, int(elapsed.Milliseconds()), time.Now())
		if err != nil {
			return err
		}
		printFeedback(q, choice)
		if award := streaks.Observe(ctx, sess.StudentID, node.Code, sess.ID, res.WasCorrect); award != nil {
			fmt.Printf("Streak! %s.\n", award.Reason)
		}
		if !res.WasCorrect && len(recentErrors) < 5 {
			recentErrors = append(recentErrors,
				fmt.Sprintf("answered %q for %q, correct was %q",
					q.Options[choice], q.Text, q.Options[q.CorrectIndex]))
		}

		switch {
		case res.State == session.StateCelebrating:
			fmt.Printf("\nMastered %s! First review is due tomorrow.\n", node.Title)
			return finishSession(ctx, a, sess)

		case res.State == session.StateBossChallenge:
			fmt.Println("\nBoss challenge! You know this; now let's make it fast.")
			fmt.Println(gate.Describe(*res.Gate, res.Signals))
			cleared, err := fluencyDrill(ctx, a, in, sess, node, &asked)
			if err != nil {
				return err
			}
			if cleared {
				fmt.Printf("\nMastered %s! First review is due tomorrow.\n", node.Title)
			} else {
				fmt.Println("\nSession saved. See you next time.")
			}
			return finishSession(ctx, a, sess)

		case res.State == session.StateStruggling:
			fmt.Println("\nThis one is tricky. Let's look at it again together.")
			if err := a.orch.ResumeTeaching(ctx, sess); err != nil {
				return err
			}
			expl, err := a.generator.Explanation(ctx, content.ExplanationInput{Node: node})
			if err != nil {
				return err
			}
			printExplanation(expl, node)
			if err := a.orch.BeginPractice(ctx, sess); err != nil {
				return err
			}

		case res.Gate != nil:
			// Gate ran but held the student in practice.
			fmt.Println("\nGood work. A bit more practice before moving on.")

		case res.Outcome.StepComplete && res.Outcome.Passed:
			fmt.Printf("\nStep complete: %s.\n", session.StepName(sess.Loop.Step))

		case res.Outcome.StepComplete && !res.Outcome.Passed:
			fmt.Println("\nLet's take it back a step and build up again.")
		}
	}
}

// fluencyDrill runs the boss challenge: rapid questions until the student
// strings session.DrillTarget fast correct answers together and the gate
// grants mastery. There is no route back to the lesson from here; the
// drill ends only by clearing or by the student quitting.
func fluencyDrill(ctx context.Context, a *app, in *bufio.Scanner, sess *session.LearningSession, node knowledge.Node, asked *[]string) (bool, error) {
	fmt.Printf("Answer %d in a row, each under %d seconds (or faster than your best).\n",
		session.DrillTarget, gate.SpeedLimitMs(node.GradeLevel)/1000)

	for {
		q, err := a.generator.Question(ctx, content.QuestionInput{
			Node:           node,
			Step:           "fluency_drill",
			PriorQuestions: *asked,
		})
		if err != nil {
			return false, err
		}
		*asked = append(*asked, q.Text)

		choice, elapsed, ok := askQuestion(in, q, nil)
		if !ok {
			return false, nil
		}
		res, err := a.orch.HandleDrillAnswer(ctx, sess, q, choice, int(elapsed.Milliseconds()), time.Now())
		if err != nil {
			return false, err
		}
		printFeedback(q, choice)

		switch {
		case res.Cleared:
			return true, nil
		case res.Gate != nil:
			// Streak complete but the gate wants more evidence.
			fmt.Println("So close! Keep that pace going.")
		case res.Fast:
			fmt.Printf("Fast! %d of %d.\n", res.Streak, session.DrillTarget)
		case res.WasCorrect:
			fmt.Println("Right, but a bit slow. The streak starts over.")
		default:
			fmt.Println("The streak starts over.")
		}
	}
}

func finishSession(ctx context.Context, a *app, sess *session.LearningSession) error {
	if sess.State != session.StateCompleted {
		if err := sess.Complete(time.Now()); err != nil {
			a.log.Warn("session close", "error", err)
		}
	}
	err := a.store.Sessions().Save(ctx, store.LearningSessionRecord{
		ID:            sess.ID,
		StudentID:     sess.StudentID,
		Kind:          "practice",
		State:         string(sess.State),
		NodeCode:      sess.NodeCode,
		QuestionCount: sess.QuestionCount,
		CorrectCount:  sess.CorrectCount,
		StartedAt:     sess.StartedAt,
		EndedAt:       sess.EndedAt,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Answered %d questions, %d correct.\n", sess.QuestionCount, sess.CorrectCount)
	if sess.QuestionCount > 0 {
		fmt.Printf("Session rating: %s.\n", rewards.SessionTier(sess.Accuracy()))
	}
	return nil
}
