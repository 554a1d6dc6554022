// Package restore reconciles the backup store against the editor's working
// set at startup, reopening every surviving snapshot as a dirty document.
package restore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/stanza-editor/stash/pkg/core"
)

// opener seeds one document for a restored entry. Openers are resolved by
// identity kind through a closed lookup table, never by runtime type
// inspection.
type opener func(ctx context.Context, host core.Host, entry core.EntryInfo, content string) (core.Document, error)

// openUntitled reopens an unsaved in-memory document. There is no original
// file to reconcile against; the snapshot is the document.
func openUntitled(ctx context.Context, host core.Host, entry core.EntryInfo, content string) (core.Document, error) {
	return host.OpenDocument(ctx, entry.Identity, content, true)
}

// openFileBacked reopens a file-backed document seeded from the snapshot
// instead of re-reading the file from disk (snapshot-wins), reported dirty
// immediately.
func openFileBacked(ctx context.Context, host core.Host, entry core.EntryInfo, content string) (core.Document, error) {
	return host.OpenDocument(ctx, entry.Identity, content, true)
}

// openVirtual reopens any other scheme the same way as untitled content:
// the scheme's own provider resolves the identity, the snapshot seeds it.
func openVirtual(ctx context.Context, host core.Host, entry core.EntryInfo, content string) (core.Document, error) {
	return host.OpenDocument(ctx, entry.Identity, content, true)
}

var openers = map[core.Kind]opener{
	core.KindUntitled: openUntitled,
	core.KindFile:     openFileBacked,
	core.KindVirtual:  openVirtual,
}

// Restorer replays the backup store into the editor host once at startup.
// Re-runnable on demand; it never deletes the entries it restores from.
type Restorer struct {
	store  core.Store
	host   core.Host
	logger *slog.Logger
}

// Option defines a functional option for configuring the Restorer.
type Option func(*Restorer)

// WithLogger sets the logger for the restorer.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Restorer) {
		r.logger = logger
	}
}

// New creates a restorer over the given store and editor host.
func New(store core.Store, host core.Host, opts ...Option) *Restorer {
	r := &Restorer{store: store, host: host}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run enumerates the store and opens or attaches a dirty document for every
// restorable entry. Per-entry failures are isolated: one corrupt entry never
// aborts the rest. Total store unavailability yields an empty result and a
// single warning, not an error — the user sees "no backups", not a crash.
//
// The returned identities are those successfully opened or attached; callers
// use them for the "N unsaved files were restored" notice.
func (r *Restorer) Run(ctx context.Context) ([]core.Identity, error) {
	entries, err := r.store.List(ctx)
	if err != nil {
		if errors.Is(err, core.ErrStoreUnavailable) {
			if r.logger != nil {
				r.logger.Warn("backup store unavailable; no backups restored", "error", err)
			}
			return nil, nil
		}
		return nil, err
	}

	var restored []core.Identity
	for _, entry := range entries {
		id, ok := r.restoreEntry(ctx, entry)
		if ok {
			restored = append(restored, id)
		}
	}

	if r.logger != nil && len(restored) > 0 {
		r.logger.Info("restored unsaved documents", "count", len(restored))
	}
	return restored, nil
}

// restoreEntry opens or attaches one entry. Failures are logged and skipped.
func (r *Restorer) restoreEntry(ctx context.Context, entry core.EntryInfo) (core.Identity, bool) {
	content, err := r.store.Get(ctx, entry.Key)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("skipping unreadable backup entry", "key", entry.Key, "error", err)
		}
		return core.Identity{}, false
	}

	// No-duplicate-open: if session restore already reopened this
	// identity, the host merges the snapshot into the existing document.
	if _, alreadyOpen := r.host.LookupDocument(entry.Identity); alreadyOpen {
		if r.logger != nil {
			r.logger.Debug("attaching backup to already-open document", "identity", entry.Identity.String())
		}
	}

	open := openers[entry.Identity.Kind()]
	doc, err := open(ctx, r.host, entry, string(content))
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("failed to reopen backed-up document",
				"identity", entry.Identity.String(), "error", err)
		}
		return core.Identity{}, false
	}

	return doc.Identity(), true
}
