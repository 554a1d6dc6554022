package stash

import (
	"context"
	"fmt"

	"github.com/aretw0/introspection"

	"github.com/stanza-editor/stash/pkg/adapters/fs"
	"github.com/stanza-editor/stash/pkg/core"
	"github.com/stanza-editor/stash/pkg/restore"
	"github.com/stanza-editor/stash/pkg/tracker"
)

// Session owns the backup machinery for one workspace window: the store,
// the tracker, and the restorer. Its lifetime matches the window's.
type Session struct {
	workspaceRoot string
	host          core.Host
	store         core.Store
	tracker       *tracker.Tracker
	restorer      *restore.Restorer
	opts          *options
}

// Open wires a session for the workspace. The default store is the
// flat-file adapter under the resolved backup home; inject a different
// adapter with WithStore.
func Open(workspaceRoot string, host core.Host, opts ...Option) (*Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.policyFile != "" {
		policy, err := LoadPolicy(o.policyFile)
		if err != nil {
			return nil, err
		}
		d, err := policy.interval()
		if err != nil {
			return nil, err
		}
		if !o.debounceSet {
			o.debounce = d
		}
		o.exclude = append(o.exclude, policy.Exclude...)
	}

	store := o.store
	if store == nil {
		root := ResolveBackupRoot(o.backupRoot, o.forceTemp)
		var err error
		store, err = fs.NewStore(fs.Config{
			Root:          root,
			WorkspaceRoot: workspaceRoot,
			Logger:        o.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open backup store: %w", err)
		}
	}

	tr := tracker.New(store,
		tracker.WithDebounce(o.debounce),
		tracker.WithExclude(o.exclude...),
		tracker.WithLogger(o.logger),
	)

	return &Session{
		workspaceRoot: workspaceRoot,
		host:          host,
		store:         store,
		tracker:       tr,
		restorer:      restore.New(store, host, restore.WithLogger(o.logger)),
		opts:          o,
	}, nil
}

// Start begins tracking work. Tied to window creation.
func (s *Session) Start(ctx context.Context) error {
	return s.tracker.Start(ctx)
}

// Restore replays the backup store into the host and re-attaches the
// tracker to every restored document, so their entries are deleted once the
// user saves or discards.
func (s *Session) Restore(ctx context.Context) ([]core.Identity, error) {
	restored, err := s.restorer.Run(ctx)
	if err != nil {
		return nil, err
	}

	for _, id := range restored {
		if doc, ok := s.host.LookupDocument(id); ok {
			s.tracker.Track(doc)
		}
	}
	return restored, nil
}

// Track begins observing an open document.
func (s *Session) Track(doc core.Document) {
	s.tracker.Track(doc)
}

// Untrack stops observing a document and drops its backup entry.
func (s *Session) Untrack(doc core.Document) {
	s.tracker.Untrack(doc)
}

// Store exposes the underlying store, e.g. for the CLI or diagnostics.
func (s *Session) Store() core.Store {
	return s.store
}

// CloseClean shuts the session down after a clean workspace close: every
// entry is discarded, since nothing needs to crash-recover.
func (s *Session) CloseClean(ctx context.Context) error {
	if err := s.tracker.Stop(ctx); err != nil {
		return err
	}
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	return s.store.Close()
}

// Close shuts the session down without touching entries. Used when the
// window goes away but unsaved state should still recover next launch.
func (s *Session) Close(ctx context.Context) error {
	if err := s.tracker.Stop(ctx); err != nil {
		return err
	}
	return s.store.Close()
}

// SessionState exposes internal state for observability.
type SessionState struct {
	Workspace string `json:"workspace"`
	StoreType string `json:"store_type"`
}

// State implements introspection.Introspectable.
func (s *Session) State() any {
	storeType := "store"
	if comp, ok := s.store.(introspection.Component); ok {
		storeType = comp.ComponentType()
	}

	return SessionState{
		Workspace: s.workspaceRoot,
		StoreType: storeType,
	}
}

// ComponentType implements introspection.Component.
func (s *Session) ComponentType() string {
	return "backup-session"
}

var _ introspection.Introspectable = (*Session)(nil)
var _ introspection.Component = (*Session)(nil)
