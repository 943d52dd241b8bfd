package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all progress for a student",
	Long:  "Reset deletes the student's mastery scores, answer history, and session records. This cannot be undone.",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runReset(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx := cmd.Context()

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		fmt.Printf("Erase all progress for student %q? Type yes to confirm: ", a.studentID)
		in := bufio.NewScanner(os.Stdin)
		if !in.Scan() || strings.TrimSpace(strings.ToLower(in.Text())) != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := a.store.MasteryScores().DeleteForStudent(ctx, a.studentID); err != nil {
		return err
	}
	if err := a.store.Responses().DeleteForStudent(ctx, a.studentID); err != nil {
		return err
	}
	if err := a.store.Sessions().DeleteForStudent(ctx, a.studentID); err != nil {
		return err
	}
	fmt.Printf("All progress for %q erased.\n", a.studentID)
	return nil
}
