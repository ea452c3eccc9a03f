package corpus

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"

	"github.com/rccmquiz/rccm/internal/question"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var requiredColumns = []string{
	"id", "category", "question", "option_a", "option_b", "option_c", "option_d", "correct_answer",
}

// RowError describes one rejected data row.
type RowError struct {
	File   string
	Line   int
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
}

// decode returns the content as UTF-8 and the encoding it was read as.
// Files are UTF-8 (with or without BOM) or Shift_JIS/CP932.
func decode(raw []byte) ([]byte, string, error) {
	if bytes.HasPrefix(raw, utf8BOM) {
		return raw[len(utf8BOM):], "utf-8-sig", nil
	}
	if utf8.Valid(raw) {
		return raw, "utf-8", nil
	}
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, "", fmt.Errorf("decode shift_jis: %w", err)
	}
	return bytes.TrimPrefix(out, utf8BOM), "shift_jis", nil
}

// parsedRow is a validated row before tier and id assignment.
type parsedRow struct {
	line int
	rec  question.Record
}

// parseCSV reads a question file. Rows failing validation are returned as
// RowErrors; a malformed header fails the whole file.
func parseCSV(name string, content []byte) ([]parsedRow, []*RowError, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%s: missing columns %s", name, strings.Join(missing, ", "))
	}

	var (
		rows    []parsedRow
		rejects []*RowError
	)
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		line, _ := r.FieldPos(0)
		get := func(col string) string {
			i, ok := cols[col]
			if !ok || i >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[i])
		}

		rec, reason := validateRow(get)
		if reason != "" {
			rejects = append(rejects, &RowError{File: name, Line: line, Reason: reason})
			continue
		}
		rec.Source = name
		rows = append(rows, parsedRow{line: line, rec: rec})
	}
	return rows, rejects, nil
}

// validateRow builds a record from a row, or returns why it was rejected.
func validateRow(get func(string) string) (question.Record, string) {
	rawID := get("id")
	if rawID == "" {
		return question.Record{}, "empty id"
	}
	f, err := strconv.ParseFloat(rawID, 64)
	if err != nil {
		return question.Record{}, fmt.Sprintf("id %q is not numeric", rawID)
	}

	stem := get("question")
	if stem == "" {
		return question.Record{}, "empty question"
	}

	correct, err := question.ParseOption(get("correct_answer"))
	if err != nil {
		return question.Record{}, err.Error()
	}

	var opts [4]string
	for i, col := range []string{"option_a", "option_b", "option_c", "option_d"} {
		opts[i] = get(col)
		if opts[i] == "" {
			o, _ := question.OptionAt(i)
			return question.Record{}, fmt.Sprintf("option %s is empty", o)
		}
	}

	difficulty := get("difficulty")
	if difficulty == "" {
		difficulty = "標準"
	}

	return question.Record{
		OriginalID:   int64(f),
		Category:     get("category"),
		Stem:         stem,
		Options:      opts,
		Correct:      correct,
		Explanation:  get("explanation"),
		Reference:    get("reference"),
		Difficulty:   difficulty,
		Keywords:     get("keywords"),
		PracticalTip: get("practical_tip"),
	}, ""
}
