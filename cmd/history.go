package cmd

import (
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/rccmquiz/rccm/internal/department"
	"github.com/rccmquiz/rccm/internal/store"
	"github.com/rccmquiz/rccm/internal/ui/theme"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent exam attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		ctx := cmd.Context()
		attempts, err := e.store.Attempts().RecentAttempts(ctx, e.cfg.UserID, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(attempts) == 0 {
			lipgloss.Fprintln(out, theme.Hint.Render("No attempts yet."))
			return nil
		}

		t := newTable("開始", "部門", "年度", "結果", "復習", "状態")
		for _, a := range attempts {
			full, err := e.store.Attempts().Attempt(ctx, a.ID)
			if err != nil {
				return err
			}
			t.Row(historyRow(full)...)
		}
		lipgloss.Fprintln(out, t.Render())
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 10, "Number of attempts to show")
}

func historyRow(a *store.AttemptData) []string {
	name := a.Department
	if d, err := department.Parse(a.Department); err == nil {
		name = d.Name()
	}
	year := "-"
	if a.Year != 0 {
		year = strconv.Itoa(a.Year)
	}

	correct := 0
	for _, ans := range a.Answers {
		if ans.Correct {
			correct++
		}
	}
	status := "完了"
	switch {
	case a.FinishedAt.IsZero() && a.CurrentIndex < len(a.QuestionIDs):
		status = fmt.Sprintf("中断 (%d/%d)", a.CurrentIndex, len(a.QuestionIDs))
	case a.FinishedAt.IsZero():
		status = "未集計"
	}

	return []string{
		a.StartedAt.Local().Format("2006-01-02 15:04"),
		name,
		year,
		fmt.Sprintf("%d/%d", correct, len(a.QuestionIDs)),
		strconv.Itoa(len(a.ReviewIDs)),
		status,
	}
}
