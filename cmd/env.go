package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rccmquiz/rccm/internal/config"
	"github.com/rccmquiz/rccm/internal/corpus"
	"github.com/rccmquiz/rccm/internal/exam"
	"github.com/rccmquiz/rccm/internal/lock"
	"github.com/rccmquiz/rccm/internal/logger"
	"github.com/rccmquiz/rccm/internal/spacedrep"
	"github.com/rccmquiz/rccm/internal/stats"
	"github.com/rccmquiz/rccm/internal/store"
)

// env is everything a command needs, built from config and flags.
type env struct {
	cfg    *config.Config
	log    *logger.Logger
	store  *store.Store
	corpus *corpus.Corpus
	report *corpus.Report
	locks  lock.Manager

	closers []func() error
}

// setup loads config, opens the store and builds the lock manager. The
// corpus is loaded only when withCorpus is set; otherwise it is empty.
func setup(cmd *cobra.Command, withCorpus bool) (*env, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	e := &env{cfg: cfg, log: log}
	e.closers = append(e.closers, func() error { log.Sync(); return nil })

	dbPath, err := resolveDBPath(cmd, cfg.DBPath)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	if e.store, err = store.Open(dbPath); err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.closers = append(e.closers, e.store.Close)
	log.Debug("store opened", "path", dbPath)

	if cfg.RedisAddr != "" {
		r, err := lock.NewRedis(ctx, cfg.RedisAddr, lock.RedisOptions{TTL: cfg.LockTTL}, log)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.locks = r
		e.closers = append(e.closers, r.Close)
	} else {
		e.locks = lock.NewLocal()
	}

	if withCorpus {
		e.corpus, e.report, err = corpus.Load(ctx, cfg.DataDir, corpus.Options{Log: log})
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("load questions from %s: %w", cfg.DataDir, err)
		}
	} else if e.corpus, err = corpus.New(nil); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("data"); v != "" {
		cfg.DataDir = v
	}
	if v, _ := cmd.Flags().GetString("user"); v != "" {
		cfg.UserID = v
	}
	if v, _ := cmd.Flags().GetString("log-mode"); v != "" {
		cfg.LogMode = v
	}
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
}

func (e *env) engine() (*exam.Engine, error) {
	schedule, err := spacedrep.NewSchedule(e.cfg.Policy.IntervalDays)
	if err != nil {
		return nil, fmt.Errorf("review schedule: %w", err)
	}
	return exam.New(exam.Options{
		Questions: e.corpus,
		Attempts:  e.store.Attempts(),
		Reviews:   e.store.Reviews(),
		Locks:     e.locks,
		Policy: exam.Policy{
			MaxReviewRatio: e.cfg.Policy.MaxReviewRatio,
			Schedule:       schedule,
		},
		Log: e.log,
	})
}

func (e *env) stats() *stats.Service {
	return stats.NewService(e.corpus, e.store.History(), e.store.Reviews(), nil)
}
