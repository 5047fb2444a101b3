// Package config holds the whisperd configuration. Every engine threshold
// is exposed here so deployments can tune analysis without a rebuild.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"codewhisperer/internal/temporal"
)

// Config is the full whisperd configuration.
type Config struct {
	// DataDir holds the state database. Defaults to .whisper in the
	// working directory.
	DataDir string `yaml:"data_dir"`

	// FeedbackLog is the JSONL file the editor extension appends feedback
	// events to.
	FeedbackLog string `yaml:"feedback_log"`

	Logging   LoggingConfig   `yaml:"logging"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Engine    EngineConfig    `yaml:"engine"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// SchedulerConfig configures periodic recomputation. Durations are
// strings in time.ParseDuration form.
type SchedulerConfig struct {
	InitialDelay string `yaml:"initial_delay"`
	Interval     string `yaml:"interval"`
}

// EngineConfig mirrors temporal.Params in YAML-friendly units. Zero
// values fall back to the engine defaults.
type EngineConfig struct {
	SeriesRetentionDays int     `yaml:"series_retention_days"`
	ChangeRetentionDays int     `yaml:"change_retention_days"`
	WindowDays          int     `yaml:"window_days"`
	MinDataPoints       int     `yaml:"min_data_points"`
	TrendWindow         int     `yaml:"trend_window"`
	SlopeEpsilon        float64 `yaml:"slope_epsilon"`
	ShiftThreshold      float64 `yaml:"shift_threshold"`
	GrowthThreshold     float64 `yaml:"growth_threshold"`
	WeeklyVarianceRatio float64 `yaml:"weekly_variance_ratio"`
	DailyContrastRatio  float64 `yaml:"daily_contrast_ratio"`
	RecentChangeLimit   int     `yaml:"recent_change_limit"`
	RecentChangeDays    int     `yaml:"recent_change_days"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		DataDir:     ".whisper",
		FeedbackLog: filepath.Join(".whisper", "feedback.jsonl"),
		Logging:     LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{
			InitialDelay: "60s",
			Interval:     "24h",
		},
	}
}

// Load reads a YAML config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the config as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// StatePath is the location of the SQLite state database.
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, "state.db")
}

// InitialDelay parses the scheduler warmup, defaulting on bad input.
func (c *Config) InitialDelay() time.Duration {
	return parseDuration(c.Scheduler.InitialDelay, temporal.DefaultInitialDelay)
}

// Interval parses the recomputation period, defaulting on bad input.
func (c *Config) Interval() time.Duration {
	return parseDuration(c.Scheduler.Interval, temporal.DefaultInterval)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Params converts the engine section to temporal.Params, filling unset
// fields with the engine defaults.
func (c *Config) Params() temporal.Params {
	p := temporal.DefaultParams()
	e := c.Engine
	if e.SeriesRetentionDays > 0 {
		p.SeriesRetention = time.Duration(e.SeriesRetentionDays) * 24 * time.Hour
	}
	if e.ChangeRetentionDays > 0 {
		p.ChangeRetention = time.Duration(e.ChangeRetentionDays) * 24 * time.Hour
	}
	if e.WindowDays > 0 {
		p.WindowSize = time.Duration(e.WindowDays) * 24 * time.Hour
	}
	if e.MinDataPoints > 0 {
		p.MinDataPoints = e.MinDataPoints
	}
	if e.TrendWindow > 0 {
		p.TrendWindow = e.TrendWindow
	}
	if e.SlopeEpsilon > 0 {
		p.SlopeEpsilon = e.SlopeEpsilon
	}
	if e.ShiftThreshold > 0 {
		p.ShiftThreshold = e.ShiftThreshold
	}
	if e.GrowthThreshold > 0 {
		p.GrowthThreshold = e.GrowthThreshold
	}
	if e.WeeklyVarianceRatio > 0 {
		p.WeeklyVarianceRatio = e.WeeklyVarianceRatio
	}
	if e.DailyContrastRatio > 0 {
		p.DailyContrastRatio = e.DailyContrastRatio
	}
	if e.RecentChangeLimit > 0 {
		p.RecentChangeLimit = e.RecentChangeLimit
	}
	if e.RecentChangeDays > 0 {
		p.RecentChangeWindow = time.Duration(e.RecentChangeDays) * 24 * time.Hour
	}
	return p
}
