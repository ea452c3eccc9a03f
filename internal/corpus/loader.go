package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/rccmquiz/rccm/internal/department"
	"github.com/rccmquiz/rccm/internal/logger"
	"github.com/rccmquiz/rccm/internal/question"
)

const basicFile = "4-1.csv"

var specialistFile = regexp.MustCompile(`^4-2_(\d{4})\.csv$`)

// Options configures Load.
type Options struct {
	Log *logger.Logger

	// Strict fails the load on the first rejected row instead of skipping it.
	Strict bool

	// Concurrency bounds parallel file reads. Defaults to 4.
	Concurrency int
}

// FileReport summarizes one loaded file.
type FileReport struct {
	Name     string
	Tier     question.Tier
	Year     int
	Encoding string
	Loaded   int
	Rejected []*RowError
}

// Report summarizes a load.
type Report struct {
	Files []FileReport

	// UnknownCategories counts specialist rows whose category matched no
	// department. They are kept under their raw category.
	UnknownCategories map[string]int
}

// Rejected returns the total number of rejected rows.
func (r *Report) Rejected() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Rejected)
	}
	return n
}

type sourceFile struct {
	name string
	path string
	tier question.Tier
	year int
}

type loadedFile struct {
	src      sourceFile
	encoding string
	rows     []parsedRow
	rejects  []*RowError
}

// Load reads 4-1.csv and every 4-2_<year>.csv in dir. Ids are derived from
// tier, exam year and each row's id column (question.StableID), so they stay
// the same when files are added or rows are fixed.
func Load(ctx context.Context, dir string, opts Options) (*Corpus, *Report, error) {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	conc := opts.Concurrency
	if conc <= 0 {
		conc = 4
	}

	sources, err := discover(dir)
	if err != nil {
		return nil, nil, err
	}
	if len(sources) == 0 {
		return nil, nil, fmt.Errorf("no question files in %s", dir)
	}

	loaded := make([]loadedFile, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(conc)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			raw, err := os.ReadFile(src.path)
			if err != nil {
				return fmt.Errorf("read %s: %w", src.name, err)
			}
			content, enc, err := decode(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", src.name, err)
			}
			rows, rejects, err := parseCSV(src.name, content)
			if err != nil {
				return err
			}
			rows, rejects = assignIDs(src, rows, rejects)
			if opts.Strict && len(rejects) > 0 {
				return rejects[0]
			}
			if len(rows) == 0 {
				return fmt.Errorf("%s: no valid questions (%d rejected)", src.name, len(rejects))
			}
			loaded[i] = loadedFile{src: src, encoding: enc, rows: rows, rejects: rejects}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	report := &Report{UnknownCategories: make(map[string]int)}
	var records []question.Record

	for _, lf := range loaded {
		for _, row := range lf.rows {
			rec := row.rec
			if rec.Tier == question.TierBasic {
				rec.Category = department.Basic.Name()
			} else if d, ok := department.NormalizeCategory(rec.Category); ok && d != department.Basic {
				rec.Category = d.Name()
			} else {
				report.UnknownCategories[rec.Category]++
			}
			records = append(records, rec)
		}

		for _, rej := range lf.rejects {
			log.Warn("rejected question row", "file", rej.File, "line", rej.Line, "reason", rej.Reason)
		}
		report.Files = append(report.Files, FileReport{
			Name:     lf.src.name,
			Tier:     lf.src.tier,
			Year:     lf.src.year,
			Encoding: lf.encoding,
			Loaded:   len(lf.rows),
			Rejected: lf.rejects,
		})
		log.Debug("loaded question file", "file", lf.src.name, "encoding", lf.encoding,
			"loaded", len(lf.rows), "rejected", len(lf.rejects))
	}

	for cat, n := range report.UnknownCategories {
		log.Warn("unknown specialist category kept as is", "category", cat, "questions", n)
	}

	c, err := New(records)
	if err != nil {
		return nil, nil, err
	}
	log.Info("question corpus loaded", "dir", dir, "files", len(report.Files),
		"questions", c.Len(), "rejected", report.Rejected())
	return c, report, nil
}

// assignIDs gives each row its stable id from the file's tier and year and
// the row's id column. Rows whose id is out of range or repeats an earlier
// row of the same file are rejected.
func assignIDs(src sourceFile, rows []parsedRow, rejects []*RowError) ([]parsedRow, []*RowError) {
	seen := make(map[int64]int, len(rows))
	kept := rows[:0]
	for _, row := range rows {
		id, err := question.StableID(src.tier, src.year, row.rec.OriginalID)
		if err != nil {
			rejects = append(rejects, &RowError{File: src.name, Line: row.line, Reason: err.Error()})
			continue
		}
		if first, dup := seen[id]; dup {
			rejects = append(rejects, &RowError{
				File: src.name, Line: row.line,
				Reason: fmt.Sprintf("duplicate id %d (first on line %d)", row.rec.OriginalID, first),
			})
			continue
		}
		seen[id] = row.line
		row.rec.ID = id
		row.rec.Tier = src.tier
		row.rec.Year = src.year
		kept = append(kept, row)
	}
	sort.SliceStable(rejects, func(i, j int) bool { return rejects[i].Line < rejects[j].Line })
	return kept, rejects
}

// discover lists the data files in load order: basic first, then
// specialist files by year.
func discover(dir string) ([]sourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var (
		basic      []sourceFile
		specialist []sourceFile
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		path := filepath.Join(dir, name)
		if name == basicFile {
			basic = append(basic, sourceFile{name: name, path: path, tier: question.TierBasic})
			continue
		}
		m := specialistFile.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		specialist = append(specialist, sourceFile{name: name, path: path, tier: question.TierSpecialist, year: year})
	}
	sort.Slice(specialist, func(i, j int) bool { return specialist[i].year < specialist[j].year })
	return append(basic, specialist...), nil
}

// IsRowError reports whether err is a rejected-row error.
func IsRowError(err error) bool {
	var re *RowError
	return errors.As(err, &re)
}
