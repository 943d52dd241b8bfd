package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/pathwise/tutorengine/internal/content"
	"github.com/pathwise/tutorengine/internal/knowledge"
	"github.com/pathwise/tutorengine/internal/notify"
	"github.com/pathwise/tutorengine/internal/placement"
	"github.com/pathwise/tutorengine/internal/tracing"
)

var placementCmd = &cobra.Command{
	Use:   "placement",
	Short: "Run the adaptive placement diagnostic",
	Long: "Placement finds where a student stands with a binary search over the\n" +
		"curriculum: at most 20 questions, halving the candidate range on each\n" +
		"answer. With --goal it maps the prerequisite chain to a target concept\n" +
		"and estimates hours to close each gap. Results seed the mastery scores\n" +
		"so practice starts at the right level.",
	Args: cobra.NoArgs,
	RunE: runPlacement,
}

func init() {
	placementCmd.Flags().Int("grade", 3, "Grade level to place within (3-5)")
	placementCmd.Flags().String("goal", "", "Goal concept code; switches to goal-aware placement")
}

func runPlacement(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	stateStore, closeStore := placementStateStore()
	defer closeStore()
	engine := placement.NewEngine(a.graph, stateStore, a.log)

	goal, _ := cmd.Flags().GetString("goal")
	grade, _ := cmd.Flags().GetInt("grade")

	var (
		state *placement.State
		node  knowledge.Node
	)
	if goal != "" {
		state, node, err = engine.StartForGoal(ctx, a.studentID, goal)
	} else {
		state, node, err = engine.Start(ctx, a.studentID, grade)
	}
	if err != nil {
		return err
	}

	fmt.Println("Answer a few questions so we can find the right starting point.")
	in := bufio.NewScanner(os.Stdin)
	for {
		q, err := a.generator.Question(ctx, content.QuestionInput{Node: node, Step: "placement"})
		if err != nil {
			return err
		}
		choice, _, ok := askQuestion(in, q, nil)
		if !ok {
			fmt.Println("\nPlacement abandoned; nothing was recorded.")
			return engine.Abandon(ctx, state.SessionID)
		}

		step, err := engine.Answer(ctx, state.SessionID, choice == q.CorrectIndex)
		if err != nil {
			return err
		}
		if step.Done {
			return finishPlacement(ctx, a, step.Result)
		}
		node = step.Next
	}
}

// placementStateStore prefers Redis when TUTOR_REDIS_ADDR is set, so
// placement runs can survive process restarts; otherwise sessions live in
// memory for the life of this invocation.
func placementStateStore() (placement.StateStore, func()) {
	if addr := os.Getenv("TUTOR_REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		return placement.NewRedisStore(client, placement.DefaultTTL), func() { client.Close() }
	}
	mem := placement.NewMemoryStore(placement.DefaultTTL)
	return mem, mem.Close
}

func finishPlacement(ctx context.Context, a *app, result *placement.Result) error {
	fmt.Printf("\nPlacement complete after %d questions.\n", result.QuestionsAsked)
	if result.Frontier != "" {
		node, err := a.graph.Get(result.Frontier)
		if err == nil {
			fmt.Printf("You're solid up through: %s\n", node.Title)
		}
	}

	if len(result.SkillMap) > 0 {
		fmt.Println("\nPath to your goal:")
		for _, entry := range result.SkillMap {
			switch entry.Status {
			case placement.StatusMastered:
				fmt.Printf("  [done] %s\n", entry.Node.Title)
			case placement.StatusGap:
				fmt.Printf("  [gap]  %s (about %.1f hours)\n", entry.Node.Title, entry.EstimatedHours)
			default:
				fmt.Printf("  [ ? ]  %s\n", entry.Node.Title)
			}
		}
		fmt.Printf("Estimated time to goal: %.1f hours.\n", result.EstimatedHours)
	}

	if err := seedScores(ctx, a, result); err != nil {
		return err
	}

	a.events.Publish(ctx, notify.Event{
		Kind:      notify.KindPlacementCompleted,
		StudentID: result.StudentID,
		Detail: map[string]any{
			"frontier":  result.Frontier,
			"questions": result.QuestionsAsked,
			"gaps":      len(result.Gaps),
		},
	})
	fmt.Println("\nRun `tutorengine practice` to start learning.")
	return nil
}

// seedScores writes the placement verdicts into the mastery store: confirmed
// nodes start proficient, so practice recommendations skip past them; gap
// nodes get a fresh score at the initial probability.
func seedScores(ctx context.Context, a *app, result *placement.Result) error {
	repo := a.store.MasteryScores()
	for _, code := range result.Mastered {
		score, err := repo.GetOrCreate(ctx, a.studentID, code)
		if err != nil {
			return err
		}
		if score.Probability < tracing.ProficientThreshold {
			score.Probability = tracing.ProficientThreshold
		}
		if err := repo.Upsert(ctx, score); err != nil {
			return err
		}
	}
	for _, code := range result.Gaps {
		if _, err := repo.GetOrCreate(ctx, a.studentID, code); err != nil {
			return err
		}
	}
	return nil
}
