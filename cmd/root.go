package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pathwise/tutorengine/internal/logger"
	"github.com/pathwise/tutorengine/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "tutorengine",
	Short: "Adaptive mastery tutor for grades 3-5 math",
	Long: "Tutorengine tracks concept mastery with Bayesian knowledge tracing,\n" +
		"places students with an adaptive diagnostic, and schedules spaced reviews\n" +
		"so mastered concepts stay mastered.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TUTOR_DB env var)")
	rootCmd.PersistentFlags().String("student", "default", "Student identifier")

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(placementCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using the --db flag first, then
// TUTOR_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// newLogger builds the process logger. TUTOR_LOG_MODE=dev switches to the
// human-readable development config; unset keeps structured JSON.
func newLogger() (*logger.Logger, error) {
	mode := os.Getenv("TUTOR_LOG_MODE")
	if mode == "" {
		mode = "prod"
	}
	return logger.New(mode)
}

func studentID(cmd *cobra.Command) string {
	id, _ := cmd.Flags().GetString("student")
	if id == "" {
		id = "default"
	}
	return id
}
