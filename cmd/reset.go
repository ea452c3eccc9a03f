package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/rccmquiz/rccm/internal/ui/theme"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every review record of the user",
	Long: `Delete every review record of the user. Answer history and past
attempts are kept; all questions start again without a review level.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Fprintf(out, "Delete all review records for %q? [y/N]: ", e.cfg.UserID)
			line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(line)); a != "y" && a != "yes" {
				lipgloss.Fprintln(out, theme.Hint.Render("Cancelled."))
				return nil
			}
		}

		eng, err := e.engine()
		if err != nil {
			return err
		}
		n, err := eng.ResetReviews(cmd.Context(), e.cfg.UserID)
		if err != nil {
			return err
		}
		lipgloss.Fprintln(out, fmt.Sprintf("Deleted %d review records.", n))
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
