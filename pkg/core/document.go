package core

import "context"

// DocumentEventType is the kind of lifecycle signal a document emits.
type DocumentEventType int

const (
	// DocDirtyChanged fires when the document's dirty flag flips either way.
	DocDirtyChanged DocumentEventType = iota
	// DocClosed fires once when the document is closed.
	DocClosed
)

// DocumentEvent is one signal from an open document's event stream.
type DocumentEvent struct {
	Type  DocumentEventType
	Dirty bool
}

// Document is a live handle to an open document in the editor host. The
// tracker reads snapshots from it and subscribes to its event stream; it
// never mutates the document.
type Document interface {
	// Identity returns the document's logical address.
	Identity() Identity

	// Snapshot returns the current in-memory content.
	Snapshot() string

	// Dirty reports whether the content differs from its saved state.
	Dirty() bool

	// Hint returns the document's line-ending/encoding hint, or "".
	Hint() string

	// Events streams dirty transitions and the closing signal. The channel
	// is closed after DocClosed is delivered.
	Events() <-chan DocumentEvent
}

// Host is the editor host surface the restorer drives. It is an external
// collaborator; this package only specifies the contract.
type Host interface {
	// OpenDocument opens (or creates) a document for the identity, seeded
	// with the given content instead of the original file. Opening an
	// identity that is already open must seed the existing document and
	// return it, never create a second one: every open identity has
	// exactly one live Document. When forceDirty is set the document
	// reports itself modified immediately.
	OpenDocument(ctx context.Context, id Identity, seed string, forceDirty bool) (Document, error)

	// LookupDocument returns the already-open document for an identity, if
	// any.
	LookupDocument(id Identity) (Document, bool)
}
