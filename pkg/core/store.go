package core

import "context"

// EntryInfo describes one backup entry as seen by enumeration. Content is
// fetched separately via Get; List never reads snapshots.
type EntryInfo struct {
	Key      Key
	Identity Identity
	// Hint optionally records the line-ending/encoding of the snapshot so
	// the host can seed the restored document faithfully.
	Hint string
	// Ordinal increases with every overwrite of the same key and orders
	// writes for diagnostics.
	Ordinal uint64
}

// Store is the contract for the durable backup area of one workspace
// session. Adhering to this interface keeps the tracker and restorer
// independent of the underlying medium (flat files, BadgerDB, ...).
type Store interface {
	// Put upserts the snapshot for an identity and returns its key.
	// Atomic with respect to partial writes: a crash mid-write must never
	// leave an entry that looks valid on the next read.
	Put(ctx context.Context, id Identity, content []byte, hint string) (Key, error)

	// Get retrieves the snapshot for a key. Missing keys wrap ErrNotFound.
	Get(ctx context.Context, key Key) ([]byte, error)

	// List enumerates all entries of the workspace. Order is stable within
	// one call but carries no meaning.
	List(ctx context.Context) ([]EntryInfo, error)

	// Delete removes an entry. Deleting a nonexistent key is not an error.
	Delete(ctx context.Context, key Key) error

	// Clear deletes every entry of the workspace (clean shutdown, or
	// explicit discard-all).
	Clear(ctx context.Context) error

	// Close releases the underlying medium.
	Close() error
}

// EventType represents the type of change observed in a backup area.
type EventType string

const (
	EventCreated EventType = "CREATED"
	EventUpdated EventType = "UPDATED"
	EventDeleted EventType = "DELETED"
)

// Event represents a change to one entry in the backup area.
type Event struct {
	Type      EventType
	Key       Key
	Timestamp int64 // Unix timestamp
}

// String renders the event for logs; it also satisfies the lifecycle Event
// interface for hosts that bridge the backup area into a supervision tree.
func (e Event) String() string {
	return string(e.Type) + " " + string(e.Key)
}

// Watchable is implemented by stores that can report live changes to their
// backup area, e.g. for the CLI's watch view.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}
