package conversion

import (
	"strings"
	"time"
)

// Config controls the conversion queue and its workers.
type Config struct {
	// Enabled starts the worker pool alongside the HTTP server.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Concurrency is the number of workers polling for jobs.
	Concurrency int `mapstructure:"concurrency" default:"2"`
	// MaxRetries is the number of attempts before a job is marked failed.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
	// PollIntervalSeconds is how often an idle worker checks for jobs.
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds" default:"5"`
	// StuckTimeoutSeconds is how long a job may stay running before it is re-queued.
	StuckTimeoutSeconds int `mapstructure:"stuck_timeout_seconds" default:"600"`
	// SweepIntervalSeconds is how often the pool looks for missing formats. Zero disables it.
	SweepIntervalSeconds int `mapstructure:"sweep_interval_seconds" default:"3600"`
	// RetentionDays is how long finished jobs are kept.
	RetentionDays int `mapstructure:"retention_days" default:"7"`
	// Targets are the canonical formats every fiction ebook should have.
	Targets string `mapstructure:"targets" default:"epub,mobi,azw3"`
	// CalibreBinary is the ebook-convert executable.
	CalibreBinary string `mapstructure:"calibre_binary" default:"ebook-convert"`
}

// TargetFormats returns the conversion targets in order.
func (c Config) TargetFormats() []string {
	raw := c.Targets
	if raw == "" {
		raw = "epub,mobi,azw3"
	}
	var out []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// PollInterval returns the worker poll interval.
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// StuckTimeout returns how long a running job may go without finishing.
func (c Config) StuckTimeout() time.Duration {
	if c.StuckTimeoutSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.StuckTimeoutSeconds) * time.Second
}

// SweepInterval returns the periodic sweep interval, zero when disabled.
func (c Config) SweepInterval() time.Duration {
	if c.SweepIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// Workers returns the worker count, at least one.
func (c Config) Workers() int {
	if c.Concurrency < 1 {
		return 1
	}
	return c.Concurrency
}
