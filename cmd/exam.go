package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rccmquiz/rccm/internal/app"
	"github.com/rccmquiz/rccm/internal/department"
	"github.com/rccmquiz/rccm/internal/exam"
	"github.com/rccmquiz/rccm/internal/screens/home"
)

var examCmd = &cobra.Command{
	Use:   "exam",
	Short: "Take a practice exam",
	Long: `Take a practice exam. Without --department the department picker opens.

--review fills up to the configured share of the attempt with review
questions that are due; --review-ratio sets the share explicitly.`,
	RunE: runExam,
}

func init() {
	addExamFlags(examCmd)
}

func addExamFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("department", "d", "", "Department slug or name (see `rccm departments`)")
	f.IntP("year", "y", 0, "Exam year for specialist departments; 0 draws from every year")
	f.IntP("count", "n", 0, "Questions per attempt (default from policy)")
	f.Bool("review", false, "Mix in due review questions up to the policy cap")
	f.Float64("review-ratio", -1, "Share of the attempt to fill from due reviews, 0-1")
	f.Bool("exclude-graduated", false, "Leave out questions at the top review level that are not due")
	f.Bool("plain", false, "Line mode instead of the full-screen interface")
}

func runExam(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	eng, err := e.engine()
	if err != nil {
		return err
	}
	req, err := examRequest(cmd, e)
	if err != nil {
		return err
	}

	if plain, _ := cmd.Flags().GetBool("plain"); plain {
		if !req.Department.Valid() {
			return fmt.Errorf("--plain needs --department")
		}
		return runPlain(cmd.Context(), eng, req, os.Stdin, cmd.OutOrStdout())
	}

	return app.Run(app.Options{
		Department: req.Department,
		Home: home.Options{
			Engine:      eng,
			Due:         e.stats(),
			History:     e.store.Attempts(),
			Groups:      e.corpus.Groups(),
			UserID:      req.UserID,
			Year:        req.Year,
			Count:       req.Count,
			ReviewRatio: req.ReviewRatio,
		},
	})
}

// examRequest builds the start request from flags and policy. Department
// stays Unknown when the flag is empty. Values are passed through as given;
// the engine rejects a bad count or a year on the basic tier.
func examRequest(cmd *cobra.Command, e *env) (exam.StartRequest, error) {
	f := cmd.Flags()
	req := exam.StartRequest{
		UserID: e.cfg.UserID,
		Count:  e.cfg.Policy.QuestionsPerSession,
	}

	if v, _ := f.GetString("department"); v != "" {
		d, err := department.Parse(v)
		if err != nil {
			return req, err
		}
		req.Department = d
	}
	req.Year, _ = f.GetInt("year")
	if f.Changed("count") {
		req.Count, _ = f.GetInt("count")
	}

	if review, _ := f.GetBool("review"); review {
		req.ReviewRatio = e.cfg.Policy.MaxReviewRatio
	}
	if r, _ := f.GetFloat64("review-ratio"); r >= 0 {
		if r > 1 {
			return req, fmt.Errorf("--review-ratio %v outside [0,1]", r)
		}
		req.ReviewRatio = r
	}
	req.ExcludeGraduated, _ = f.GetBool("exclude-graduated")
	return req, nil
}
