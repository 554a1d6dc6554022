package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"path/filepath"
	"runtime"
	"strings"
)

// Scheme distinguishes how a document identity is backed.
type Scheme string

const (
	// SchemeFile identifies documents backed by a file on disk.
	SchemeFile Scheme = "file"
	// SchemeUntitled identifies in-memory documents that were never saved.
	SchemeUntitled Scheme = "untitled"
)

// Kind is the closed set of identity categories the restorer dispatches on.
type Kind int

const (
	KindFile Kind = iota
	KindUntitled
	KindVirtual
)

// Identity is the logical address of an open document: a scheme plus a path
// or fragment. Two identities are the same document iff their canonical
// forms match.
type Identity struct {
	Scheme Scheme
	Path   string
}

// FileIdentity builds a file-scheme identity for a path on disk.
func FileIdentity(p string) Identity {
	return Identity{Scheme: SchemeFile, Path: p}
}

// UntitledIdentity builds an identity for an unsaved in-memory document.
func UntitledIdentity(name string) Identity {
	return Identity{Scheme: SchemeUntitled, Path: name}
}

// Kind classifies the identity for scheme-specific handling.
func (id Identity) Kind() Kind {
	switch id.Scheme {
	case SchemeFile:
		return KindFile
	case SchemeUntitled:
		return KindUntitled
	default:
		return KindVirtual
	}
}

// caseInsensitiveFS reports whether file paths on this platform compare
// case-insensitively.
func caseInsensitiveFS() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}

// Canonical returns the normalized form of the identity used for equality
// and key derivation. File paths are slash-normalized, cleaned, stripped of
// trailing separators and casefolded on case-insensitive platforms. Virtual
// and untitled fragments are taken verbatim.
func (id Identity) Canonical() string {
	p := id.Path
	if id.Scheme == SchemeFile {
		p = filepath.ToSlash(p)
		p = path.Clean(p)
		if len(p) > 1 {
			p = strings.TrimSuffix(p, "/")
		}
		if caseInsensitiveFS() {
			p = strings.ToLower(p)
		}
	}
	return string(id.Scheme) + "://" + p
}

// String renders the identity for logs and the index file.
func (id Identity) String() string {
	return string(id.Scheme) + "://" + id.Path
}

// Equal reports whether two identities address the same document.
func (id Identity) Equal(other Identity) bool {
	return id.Canonical() == other.Canonical()
}

// ParseIdentity reconstructs an identity from its String form, as stored in
// the index. Malformed input wraps ErrCorruptEntry so callers can skip the
// entry rather than abort.
func ParseIdentity(s string) (Identity, error) {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok || scheme == "" {
		return Identity{}, fmt.Errorf("malformed identity %q: %w", s, ErrCorruptEntry)
	}
	return Identity{Scheme: Scheme(scheme), Path: rest}, nil
}

// Key is the fixed-length storage key derived from an identity. It is stable
// across process restarts.
type Key string

// HashKey derives the storage key for an identity. Deterministic: the same
// logical document always maps to the same key regardless of how its path
// string was spelled.
func HashKey(id Identity) Key {
	sum := sha256.Sum256([]byte(id.Canonical()))
	return Key(hex.EncodeToString(sum[:]))
}

// WorkspaceKey derives the per-workspace namespace key from the workspace
// root path, so two workspaces never share a backup area.
func WorkspaceKey(root string) Key {
	return HashKey(FileIdentity(root))
}
