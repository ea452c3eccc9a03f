package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/rccmquiz/rccm/internal/exam"
	"github.com/rccmquiz/rccm/internal/pool"
	"github.com/rccmquiz/rccm/internal/question"
	"github.com/rccmquiz/rccm/internal/session"
	"github.com/rccmquiz/rccm/internal/ui/theme"
)

// plainEngine is the part of the engine line mode drives.
type plainEngine interface {
	Start(ctx context.Context, req exam.StartRequest) (*session.State, error)
	CurrentQuestion(ctx context.Context, userID string) (question.Record, error)
	SubmitAnswer(ctx context.Context, userID string, chosen question.Option, elapsed time.Duration) (*exam.AnswerResult, error)
	Finish(ctx context.Context, userID string) (*session.Summary, error)
}

// runPlain runs one attempt over a line-oriented reader and writer.
// "q" leaves the attempt active and unfinished.
func runPlain(ctx context.Context, eng plainEngine, req exam.StartRequest, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := eng.Start(ctx, req)
	if err != nil {
		var insuf *pool.InsufficientQuestionsError
		if errors.As(err, &insuf) {
			return fmt.Errorf("%s: only %d of %d questions available", req.Department.Name(), insuf.Available, insuf.Requested)
		}
		return err
	}

	heading := req.Department.Name()
	if req.Year != 0 {
		heading = fmt.Sprintf("%s %d年度", heading, req.Year)
	}
	lipgloss.Fprintln(out, theme.Title.Render(heading), fmt.Sprintf("(%d問)", st.Total()))

	scanner := bufio.NewScanner(in)
	for i := 1; ; i++ {
		rec, err := eng.CurrentQuestion(ctx, req.UserID)
		var none *session.NoCurrentQuestionError
		if errors.As(err, &none) {
			break
		}
		if err != nil {
			return err
		}

		tag := ""
		if st.IsReview(rec.ID) {
			tag = " " + theme.Review.Render("[復習]")
		}
		lipgloss.Fprintln(out)
		lipgloss.Fprintln(out, fmt.Sprintf("── 第%d問 / %d ──", i, st.Total())+tag)
		lipgloss.Fprintln(out, rec.Stem)
		for _, o := range question.AllOptions() {
			lipgloss.Fprintln(out, fmt.Sprintf("  %s) %s", o, rec.OptionText(o)))
		}

		shown := time.Now()
		chosen, ok := readOption(scanner, out)
		if !ok {
			fmt.Fprintln(out, "\n中断しました。続きは保存されています。")
			return nil
		}

		res, err := eng.SubmitAnswer(ctx, req.UserID, chosen, time.Since(shown))
		if err != nil {
			return err
		}
		if res.Correct {
			lipgloss.Fprintln(out, theme.Correct.Render("○ 正解"))
		} else {
			lipgloss.Fprintln(out, theme.Incorrect.Render(fmt.Sprintf("× 不正解  正答は %s", res.CorrectOption)))
		}
		if res.Explanation != "" {
			lipgloss.Fprintln(out, "解説: "+res.Explanation)
		}
		if rec.PracticalTip != "" {
			lipgloss.Fprintln(out, "実務ポイント: "+rec.PracticalTip)
		}
	}

	sum, err := eng.Finish(ctx, req.UserID)
	if err != nil {
		return err
	}
	lipgloss.Fprintln(out)
	lipgloss.Fprintln(out, theme.Label.Render(fmt.Sprintf("結果: %d / %d 正解 (%.0f%%)", sum.CorrectCount, sum.TotalCount, sum.Accuracy*100)))
	if sum.ReviewCount > 0 {
		lipgloss.Fprintln(out, fmt.Sprintf("復習問題: %d / %d 正解", sum.ReviewCorrect, sum.ReviewCount))
	}
	return nil
}

// readOption prompts until a valid option or "q". It reports false on
// "q" or end of input.
func readOption(scanner *bufio.Scanner, out io.Writer) (question.Option, bool) {
	for {
		fmt.Fprint(out, "回答 (A-D, q=中断): ")
		if !scanner.Scan() {
			return "", false
		}
		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, "q") {
			return "", false
		}
		if o, err := question.ParseOption(line); err == nil {
			return o, true
		}
		fmt.Fprintln(out, "A, B, C, D のいずれかを入力してください。")
	}
}
