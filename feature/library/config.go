package library

import (
	"strings"
	"time"
)

// Config holds the library settings.
type Config struct {
	// EbookFormats is the comma separated default download preference.
	EbookFormats string `mapstructure:"ebook_formats" default:"mobi,azw3,pdf,epub"`
	// UserCountTTLSeconds is how long the total user count used in ranking is cached.
	UserCountTTLSeconds int `mapstructure:"user_count_ttl_seconds" default:"60"`
}

// Formats returns the default format preference in order.
func (c Config) Formats() []string {
	raw := c.EbookFormats
	if raw == "" {
		raw = "mobi,azw3,pdf,epub"
	}
	var out []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// UserCountTTL returns the user count cache lifetime. Zero or less disables
// the cache and every sync counts users afresh.
func (c Config) UserCountTTL() time.Duration {
	if c.UserCountTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.UserCountTTLSeconds) * time.Second
}
