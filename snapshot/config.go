package snapshot

import (
	"log/slog"
	"time"
)

// Config configures the capture pipeline.
type Config struct {
	// OverlapHeight is the seam band shared by consecutive frames, in CSS
	// pixels. Must stay below the viewport height. Default: 75.
	OverlapHeight int `json:"overlap_height" yaml:"overlap_height"`

	// SettleDelay is the pause after each scroll before grabbing a frame,
	// letting rendering catch up. Together with the grab round-trip it also
	// absorbs typical capture rate limits (~2 ops/sec). Default: 500ms.
	SettleDelay time.Duration `json:"settle_delay" yaml:"settle_delay"`

	// RetryBackoff is the pause before retrying a rate-limited grab.
	// Default: 1s.
	RetryBackoff time.Duration `json:"retry_backoff" yaml:"retry_backoff"`

	// MaxAttempts bounds grab attempts per offset. Default: 3.
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// StabilizeTimeout bounds the pre-capture stabilization pass. Default: 6s.
	StabilizeTimeout time.Duration `json:"stabilize_timeout" yaml:"stabilize_timeout"`

	// Logger for debug/error messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.OverlapHeight <= 0 {
		c.OverlapHeight = 75
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 500 * time.Millisecond
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.StabilizeTimeout <= 0 {
		c.StabilizeTimeout = 6 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
