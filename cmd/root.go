package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rccmquiz/rccm/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "rccm",
	Short: "RCCM exam practice with spaced review",
	Long: `rccm runs practice exams for the RCCM certification: 10 questions per
attempt from one department and exam year, with missed questions scheduled
for review after 1, 3, 7, 21, 60 and 180 days.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExam(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides RCCM_DB)")
	pf.String("data", "", "Directory holding 4-1.csv and 4-2_<year>.csv (overrides RCCM_DATA_DIR)")
	pf.String("user", "", "User id for attempts and reviews (overrides RCCM_USER)")
	pf.String("log-mode", "", "Log mode: dev or prod (overrides RCCM_LOG_MODE)")

	addExamFlags(rootCmd)

	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(departmentsCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then RCCM_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, fromEnv string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if fromEnv != "" {
		return fromEnv, store.EnsureDir(fromEnv)
	}
	return store.DefaultDBPath()
}
