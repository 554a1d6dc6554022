package core

import "errors"

// Common errors.
var (
	// ErrStoreUnavailable signals the backup medium cannot be read or
	// written right now (disk full, permission denied). Recoverable; the
	// tracker retries on a later tick.
	ErrStoreUnavailable = errors.New("backup store unavailable")

	// ErrNotFound signals a lookup for a key with no entry.
	ErrNotFound = errors.New("backup entry not found")

	// ErrCorruptEntry signals an entry whose metadata cannot be
	// reconstructed. Callers skip and log; never fatal.
	ErrCorruptEntry = errors.New("corrupt backup entry")
)
