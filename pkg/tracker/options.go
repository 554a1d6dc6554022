package tracker

import (
	"log/slog"
	"time"
)

// Option defines a functional option for configuring the Tracker.
type Option func(*Tracker)

// WithDebounce sets the quiet period between the last edit and the backup
// write. The default of one second trades write amplification against the
// data-loss window.
func WithDebounce(d time.Duration) Option {
	return func(t *Tracker) {
		t.debounce = d
	}
}

// WithSweepInterval sets how often failed store operations are retried.
func WithSweepInterval(d time.Duration) Option {
	return func(t *Tracker) {
		t.sweep = d
	}
}

// WithExclude sets glob patterns (doublestar syntax) for identities that
// should never be backed up.
func WithExclude(patterns ...string) Option {
	return func(t *Tracker) {
		t.exclude = append(t.exclude, patterns...)
	}
}

// WithLogger sets the logger for the tracker.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}
