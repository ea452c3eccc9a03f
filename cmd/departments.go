package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/rccmquiz/rccm/internal/corpus"
	"github.com/rccmquiz/rccm/internal/department"
	"github.com/rccmquiz/rccm/internal/question"
	"github.com/rccmquiz/rccm/internal/ui/theme"
)

var departmentsCmd = &cobra.Command{
	Use:     "departments",
	Aliases: []string{"dept"},
	Short:   "List departments and the questions loaded for each",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		lipgloss.Fprintln(out, departmentTable(e.corpus))

		if verbose, _ := cmd.Flags().GetBool("report"); verbose {
			lipgloss.Fprintln(out)
			lipgloss.Fprintln(out, loadReport(e.report))
		}
		return nil
	},
}

func init() {
	departmentsCmd.Flags().Bool("report", false, "Also show per-file load results and rejected rows")
}

func departmentTable(c *corpus.Corpus) string {
	counts := make(map[string]int)
	for _, g := range c.Groups() {
		if g.Tier == question.TierBasic {
			counts[department.Basic.Name()] += g.Count
			continue
		}
		counts[g.Category] += g.Count
	}

	t := newTable("SLUG", "部門", "区分", "年度", "問題数")
	total := 0
	for _, info := range department.All() {
		years := "-"
		if info.Tier == question.TierSpecialist {
			years = yearRange(c.Years(info.Name))
		}
		n := counts[info.Name]
		total += n
		t.Row(info.Slug, info.Name, tierLabel(info.Tier), years, strconv.Itoa(n))
	}

	// Categories outside the catalog are still loaded and counted.
	var unknown []string
	for cat := range counts {
		if _, ok := department.FromName(cat); !ok {
			unknown = append(unknown, cat)
		}
	}
	sort.Strings(unknown)
	for _, cat := range unknown {
		total += counts[cat]
		t.Row("-", cat, tierLabel(question.TierSpecialist), yearRange(c.Years(cat)), strconv.Itoa(counts[cat]))
	}

	return t.Render() + "\n" + theme.Hint.Render(fmt.Sprintf("%d questions", total))
}

func loadReport(r *corpus.Report) string {
	if r == nil {
		return ""
	}
	t := newTable("FILE", "ENCODING", "LOADED", "REJECTED")
	for _, f := range r.Files {
		t.Row(f.Name, f.Encoding, strconv.Itoa(f.Loaded), strconv.Itoa(len(f.Rejected)))
	}

	var b strings.Builder
	b.WriteString(t.Render())
	for _, f := range r.Files {
		for _, rej := range f.Rejected {
			b.WriteString("\n")
			b.WriteString(theme.Incorrect.Render(rej.Error()))
		}
	}
	if len(r.UnknownCategories) > 0 {
		cats := make([]string, 0, len(r.UnknownCategories))
		for cat := range r.UnknownCategories {
			cats = append(cats, cat)
		}
		sort.Strings(cats)
		for _, cat := range cats {
			b.WriteString("\n")
			b.WriteString(theme.Hint.Render(fmt.Sprintf("unknown category %q: %d questions", cat, r.UnknownCategories[cat])))
		}
	}
	return b.String()
}

func tierLabel(t question.Tier) string {
	if t == question.TierBasic {
		return "必須"
	}
	return "選択"
}

// yearRange renders sorted years as "2015-2019" when contiguous, or a
// comma list otherwise.
func yearRange(years []int) string {
	switch len(years) {
	case 0:
		return "-"
	case 1:
		return strconv.Itoa(years[0])
	}
	contiguous := years[len(years)-1]-years[0] == len(years)-1
	if contiguous {
		return fmt.Sprintf("%d-%d", years[0], years[len(years)-1])
	}
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ",")
}
