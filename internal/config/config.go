package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds process-wide settings. Values come from .env, then the
// environment, then the optional policy file; command-line flags are
// applied by the caller afterwards.
type Config struct {
	// DBPath is empty when the default XDG location should be used.
	DBPath  string
	DataDir string
	UserID  string
	LogMode string

	RedisAddr string
	LockTTL   time.Duration

	PolicyFile string
	Policy     Policy
}

// Policy is the exam and review policy.
type Policy struct {
	QuestionsPerSession int     `yaml:"questions_per_session"`
	MaxReviewRatio      float64 `yaml:"max_review_ratio"`
	// IntervalDays is indexed by SRS level 0-5.
	IntervalDays []int `yaml:"interval_days"`
}

// DefaultPolicy mirrors the published review schedule: 1, 3, 7, 21, 60 and
// 180 days, at most half of a session drawn from reviews, 10 questions.
func DefaultPolicy() Policy {
	return Policy{
		QuestionsPerSession: 10,
		MaxReviewRatio:      0.5,
		IntervalDays:        []int{1, 3, 7, 21, 60, 180},
	}
}

// Validate checks the policy for values the engine cannot work with.
func (p Policy) Validate() error {
	if p.QuestionsPerSession <= 0 {
		return fmt.Errorf("questions_per_session must be positive, got %d", p.QuestionsPerSession)
	}
	if p.MaxReviewRatio < 0 || p.MaxReviewRatio > 1 {
		return fmt.Errorf("max_review_ratio must be within [0,1], got %v", p.MaxReviewRatio)
	}
	if len(p.IntervalDays) != 6 {
		return fmt.Errorf("interval_days needs 6 entries (levels 0-5), got %d", len(p.IntervalDays))
	}
	prev := 0
	for i, d := range p.IntervalDays {
		if d <= 0 || d < prev {
			return fmt.Errorf("interval_days[%d]=%d: intervals must be positive and non-decreasing", i, d)
		}
		prev = d
	}
	return nil
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:     os.Getenv("RCCM_DB"),
		DataDir:    getenvDefault("RCCM_DATA_DIR", "data"),
		UserID:     getenvDefault("RCCM_USER", "local"),
		LogMode:    getenvDefault("RCCM_LOG_MODE", "dev"),
		RedisAddr:  os.Getenv("RCCM_REDIS_ADDR"),
		PolicyFile: os.Getenv("RCCM_POLICY_FILE"),
		Policy:     DefaultPolicy(),
	}

	var err error
	if cfg.LockTTL, err = getDuration("RCCM_LOCK_TTL", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Policy.QuestionsPerSession, err = getInt("RCCM_QUESTIONS_PER_SESSION", cfg.Policy.QuestionsPerSession); err != nil {
		return nil, err
	}
	if cfg.Policy.MaxReviewRatio, err = getFloat("RCCM_MAX_REVIEW_RATIO", cfg.Policy.MaxReviewRatio); err != nil {
		return nil, err
	}

	if cfg.PolicyFile != "" {
		if err := cfg.Policy.mergeFile(cfg.PolicyFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// mergeFile overlays the non-zero fields of a YAML policy file.
func (p *Policy) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read policy file: %w", err)
	}
	var fp Policy
	if err := yaml.Unmarshal(b, &fp); err != nil {
		return fmt.Errorf("config: parse policy file %s: %w", path, err)
	}
	if fp.QuestionsPerSession != 0 {
		p.QuestionsPerSession = fp.QuestionsPerSession
	}
	if fp.MaxReviewRatio != 0 {
		p.MaxReviewRatio = fp.MaxReviewRatio
	}
	if len(fp.IntervalDays) > 0 {
		p.IntervalDays = fp.IntervalDays
	}
	return nil
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getInt(k string, fallback int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer: %w", k, v, err)
	}
	return n, nil
}

func getFloat(k string, fallback float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a number: %w", k, v, err)
	}
	return f, nil
}

func getDuration(k string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a valid duration: %w", k, v, err)
	}
	return d, nil
}
