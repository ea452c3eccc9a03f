package cmd

import (
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/rccmquiz/rccm/internal/ui/theme"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "Show review questions due now, per department",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		counts, err := e.stats().Due(cmd.Context(), e.cfg.UserID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		total := 0
		t := newTable("部門", "復習", "最長超過")
		for _, c := range counts {
			if c.Due == 0 {
				continue
			}
			total += c.Due
			t.Row(c.Name, strconv.Itoa(c.Due), formatDays(c.MostOverdue.Hours()/24))
		}
		if total == 0 {
			lipgloss.Fprintln(out, theme.Hint.Render("No reviews due."))
			return nil
		}
		lipgloss.Fprintln(out, t.Render())
		lipgloss.Fprintln(out, theme.Review.Render(fmt.Sprintf("%d questions due", total)))
		return nil
	},
}

func formatDays(days float64) string {
	if days < 1 {
		return "<1日"
	}
	return fmt.Sprintf("%d日", int(days))
}
