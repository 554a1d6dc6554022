// Package hosttest provides an in-memory editor host and document model for
// exercising the tracker and restorer without a real editor.
package hosttest

import (
	"context"
	"sync"

	"github.com/stanza-editor/stash/pkg/core"
)

// Document is a fake open document. Test code drives it with Edit, Save and
// Close; the tracker observes it through the core.Document interface.
type Document struct {
	mu      sync.Mutex
	id      core.Identity
	content string
	saved   string
	dirty   bool
	hint    string
	closed  bool
	events  chan core.DocumentEvent
}

var _ core.Document = (*Document)(nil)

// NewDocument creates a clean document with the given content.
func NewDocument(id core.Identity, content string) *Document {
	return &Document{
		id:      id,
		content: content,
		saved:   content,
		events:  make(chan core.DocumentEvent, 16),
	}
}

func (d *Document) Identity() core.Identity { return d.id }

func (d *Document) Snapshot() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content
}

func (d *Document) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

func (d *Document) Hint() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hint
}

func (d *Document) Events() <-chan core.DocumentEvent {
	return d.events
}

func (d *Document) emit(ev core.DocumentEvent) {
	select {
	case d.events <- ev:
	default:
		// Test documents never produce more unconsumed events than the
		// buffer holds; dropping here would hide a test bug, so panic.
		panic("hosttest: event buffer full")
	}
}

// Edit replaces the content and marks the document dirty.
func (d *Document) Edit(content string) {
	d.mu.Lock()
	d.content = content
	d.dirty = true
	d.mu.Unlock()

	// Every edit signals, not just the first: the tracker resets its
	// debounce timer on each one.
	d.emit(core.DocumentEvent{Type: core.DocDirtyChanged, Dirty: true})
}

// Save marks the current content as persisted and the document clean.
func (d *Document) Save() {
	d.mu.Lock()
	d.saved = d.content
	wasDirty := d.dirty
	d.dirty = false
	d.mu.Unlock()

	if wasDirty {
		d.emit(core.DocumentEvent{Type: core.DocDirtyChanged, Dirty: false})
	}
}

// Revert restores the saved content and marks the document clean.
func (d *Document) Revert() {
	d.mu.Lock()
	d.content = d.saved
	wasDirty := d.dirty
	d.dirty = false
	d.mu.Unlock()

	if wasDirty {
		d.emit(core.DocumentEvent{Type: core.DocDirtyChanged, Dirty: false})
	}
}

// Close signals closure and closes the event stream.
func (d *Document) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.emit(core.DocumentEvent{Type: core.DocClosed})
	close(d.events)
}

// seed applies restored backup content, optionally forcing the dirty flag.
func (d *Document) seed(content string, forceDirty bool) {
	d.mu.Lock()
	d.content = content
	if forceDirty {
		d.dirty = true
	}
	d.mu.Unlock()
}

// Host is a fake editor host. It honors the no-duplicate-open invariant:
// opening an identity that is already open seeds the existing document
// instead of creating a second one.
type Host struct {
	mu   sync.Mutex
	docs map[string]*Document
}

var _ core.Host = (*Host)(nil)

func NewHost() *Host {
	return &Host{docs: make(map[string]*Document)}
}

// OpenDocument implements core.Host.
func (h *Host) OpenDocument(ctx context.Context, id core.Identity, seed string, forceDirty bool) (core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.docs[id.Canonical()]; ok {
		existing.seed(seed, forceDirty)
		return existing, nil
	}

	d := NewDocument(id, seed)
	if forceDirty {
		d.dirty = true
	}
	h.docs[id.Canonical()] = d
	return d, nil
}

// LookupDocument implements core.Host.
func (h *Host) LookupDocument(id core.Identity) (core.Document, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	d, ok := h.docs[id.Canonical()]
	if !ok {
		return nil, false
	}
	return d, true
}

// PreOpen registers an already-open clean document, as a resumed session
// would before the restorer runs.
func (h *Host) PreOpen(id core.Identity, content string) *Document {
	h.mu.Lock()
	defer h.mu.Unlock()

	d := NewDocument(id, content)
	h.docs[id.Canonical()] = d
	return d
}

// OpenCount returns the number of open documents.
func (h *Host) OpenCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.docs)
}

// Get returns the concrete fake document for assertions.
func (h *Host) Get(id core.Identity) (*Document, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	d, ok := h.docs[id.Canonical()]
	return d, ok
}
