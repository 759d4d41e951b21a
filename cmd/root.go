package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aniquiz/aniquiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "aniquiz",
	Short: "Chapter-wise self-quiz for school subjects",
	Long: "AniQuiz is a terminal quiz over a published question bank. Browse subjects and " +
		"chapters, answer questions in batches and revisit the ones you missed.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides ANIQUIZ_DB env var)")
	pf.String("content", "", "Question bank directory or base URL (overrides ANIQUIZ_CONTENT_DIR/URL)")
	pf.String("user", "", "Sign in as this email; prompts for the password")
	pf.String("log-level", "", "Log level (overrides ANIQUIZ_LOG_LEVEL)")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(missedCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then ANIQUIZ_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
