package stash

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Reconciliation policies for file-backed entries whose original file
// changed on disk since the snapshot was taken.
const (
	// ReconcileSnapshotWins seeds restored documents from the backup
	// snapshot, never from disk. The default: the snapshot is the only
	// copy of the user's unsaved work.
	ReconcileSnapshotWins = "snapshot-wins"
)

// Policy is the user-tunable backup behavior, loadable from a YAML file.
type Policy struct {
	// Debounce is the quiet period before a dirty document is written,
	// e.g. "1s" or "750ms".
	Debounce string `yaml:"debounce"`
	// Exclude lists glob patterns for identities never to back up.
	Exclude []string `yaml:"exclude"`
	// Reconcile names the restore policy for file-backed documents.
	// Only "snapshot-wins" is supported.
	Reconcile string `yaml:"reconcile"`
}

// DefaultPolicy returns the built-in behavior.
func DefaultPolicy() Policy {
	return Policy{
		Debounce:  "1s",
		Reconcile: ReconcileSnapshotWins,
	}
}

// LoadPolicy reads a policy file. A missing file yields the defaults; a
// malformed one is an error, since silently ignoring a user's backup policy
// is worse than failing loudly.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("failed to read policy file: %w", err)
	}

	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}

	if p.Reconcile == "" {
		p.Reconcile = ReconcileSnapshotWins
	}
	if p.Reconcile != ReconcileSnapshotWins {
		return p, fmt.Errorf("unsupported reconcile policy %q", p.Reconcile)
	}

	return p, nil
}

// interval parses the policy's debounce, falling back to the default on a
// blank value.
func (p Policy) interval() (time.Duration, error) {
	if p.Debounce == "" {
		return time.Second, nil
	}
	d, err := time.ParseDuration(p.Debounce)
	if err != nil {
		return 0, fmt.Errorf("invalid debounce %q: %w", p.Debounce, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("debounce must be positive, got %q", p.Debounce)
	}
	return d, nil
}
