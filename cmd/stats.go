package cmd

import (
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/rccmquiz/rccm/internal/stats"
	"github.com/rccmquiz/rccm/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show accuracy and review levels per department",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		report, err := e.stats().Report(cmd.Context(), e.cfg.UserID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if report.Totals.Answered == 0 && report.Totals.Reviews == 0 {
			lipgloss.Fprintln(out, theme.Hint.Render("No answers recorded yet. Run `rccm exam` to start."))
			return nil
		}
		lipgloss.Fprintln(out, statsTable(report))
		return nil
	},
}

func statsTable(r *stats.Report) string {
	headers := []string{"部門", "回答", "正答率", "復習", "期限", "卒業"}
	for l := range r.Totals.Levels {
		headers = append(headers, fmt.Sprintf("L%d", l))
	}
	t := newTable(headers...)
	for _, d := range r.Departments {
		t.Row(statsRow(d.Name, d)...)
	}
	t.Row(statsRow("合計", r.Totals)...)
	return t.Render()
}

func statsRow(name string, d stats.DepartmentStats) []string {
	acc := "-"
	if d.Answered > 0 {
		acc = fmt.Sprintf("%.0f%%", d.Accuracy()*100)
	}
	row := []string{
		name,
		strconv.Itoa(d.Answered),
		acc,
		strconv.Itoa(d.Reviews),
		strconv.Itoa(d.Due),
		strconv.Itoa(d.Graduated),
	}
	for _, n := range d.Levels {
		row = append(row, strconv.Itoa(n))
	}
	return row
}
