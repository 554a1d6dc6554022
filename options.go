package stash

import (
	"log/slog"
	"time"

	"github.com/stanza-editor/stash/pkg/core"
)

// options holds the internal configuration for a Session.
type options struct {
	store      core.Store
	backupRoot string
	policyFile string
	debounce   time.Duration
	// debounceSet records an explicit WithDebounce, so a policy file
	// never overrides it.
	debounceSet bool
	exclude     []string
	forceTemp   bool
	logger      *slog.Logger
}

// Option defines a functional option for configuring a Session.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		debounce: time.Second,
	}
}

// WithStore injects a custom store adapter (e.g. badgerstore, mock).
// If provided, the default filesystem adapter will be skipped.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithBackupRoot overrides the backup home directory.
func WithBackupRoot(root string) Option {
	return func(o *options) {
		o.backupRoot = root
	}
}

// WithPolicyFile loads debounce/exclude policy from a YAML file. Missing
// file falls back to defaults; options set explicitly still win.
func WithPolicyFile(path string) Option {
	return func(o *options) {
		o.policyFile = path
	}
}

// WithDebounce sets the quiet period before a dirty document is written.
// Takes precedence over a policy file's debounce.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = d
		o.debounceSet = true
	}
}

// WithExclude sets glob patterns for identities that are never backed up.
func WithExclude(patterns ...string) Option {
	return func(o *options) {
		o.exclude = append(o.exclude, patterns...)
	}
}

// WithForceTemp forces the backup home into a temporary directory (useful
// for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithLogger sets the logger for the session and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
