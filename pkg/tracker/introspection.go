package tracker

import (
	"github.com/aretw0/introspection"
)

// TrackerState exposes internal state for observability.
type TrackerState struct {
	Tracked        int    `json:"tracked"`
	PendingRetries int    `json:"pending_retries"`
	Debounce       string `json:"debounce"`
}

// State implements introspection.Introspectable.
func (t *Tracker) State() any {
	t.mu.Lock()
	defer t.mu.Unlock()

	retries := 0
	for _, td := range t.docs {
		if td.needsRetry || td.pendingDelete {
			retries++
		}
	}

	return TrackerState{
		Tracked:        len(t.docs),
		PendingRetries: retries,
		Debounce:       t.debounce.String(),
	}
}

// ComponentType implements introspection.Component.
func (t *Tracker) ComponentType() string {
	return "backup-tracker"
}

var _ introspection.Introspectable = (*Tracker)(nil)
var _ introspection.Component = (*Tracker)(nil)
