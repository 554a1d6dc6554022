package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// indexEntry maps one entry hash back to the metadata needed to reconstruct
// its identity without re-deriving from the hash.
type indexEntry struct {
	Identity string `json:"identity"`
	Hint     string `json:"hint,omitempty"`
	Ordinal  uint64 `json:"ordinal"`
}

// index is the persistent state of the identity map.
type index struct {
	Version int                    `json:"version"`
	Entries map[string]*indexEntry `json:"entries"` // key is the entry hash
	dirty   bool
	mu      sync.RWMutex
}

// indexFile manages loading, updating, and saving the index alongside the
// entry content files.
type indexFile struct {
	Path  string // Path to <workspace dir>/index.json
	index *index
}

// newIndexFile initializes an index rooted in the workspace backup dir.
func newIndexFile(workspaceDir string) *indexFile {
	return &indexFile{
		Path: filepath.Join(workspaceDir, "index.json"),
		index: &index{
			Version: 1,
			Entries: make(map[string]*indexEntry),
		},
	}
}

// Load reads the index from disk. A missing file starts fresh; a corrupted
// file is treated as empty so the store can self-heal.
func (x *indexFile) Load() error {
	x.index.mu.Lock()
	defer x.index.mu.Unlock()

	data, err := os.ReadFile(x.Path)
	if os.IsNotExist(err) {
		return nil // Start fresh
	}
	if err != nil {
		return fmt.Errorf("failed to read index: %w", err)
	}

	if err := json.Unmarshal(data, x.index); err != nil {
		x.index.Entries = make(map[string]*indexEntry)
		return nil
	}
	if x.index.Entries == nil {
		x.index.Entries = make(map[string]*indexEntry)
	}

	x.index.dirty = false
	return nil
}

// Save persists the index to disk if it changed since the last save.
func (x *indexFile) Save() error {
	x.index.mu.Lock()
	defer x.index.mu.Unlock()

	if !x.index.dirty {
		return nil
	}

	data, err := json.MarshalIndent(x.index, "", "  ")
	if err != nil {
		return err
	}

	if err := writeFileAtomic(x.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}

	x.index.dirty = false
	return nil
}

// Get returns the entry for a hash, if present.
func (x *indexFile) Get(key string) (indexEntry, bool) {
	x.index.mu.RLock()
	defer x.index.mu.RUnlock()

	e, ok := x.index.Entries[key]
	if !ok {
		return indexEntry{}, false
	}
	return *e, true
}

// Set inserts or replaces the entry for a hash.
func (x *indexFile) Set(key string, e indexEntry) {
	x.index.mu.Lock()
	defer x.index.mu.Unlock()

	x.index.Entries[key] = &e
	x.index.dirty = true
}

// Remove drops the entry for a hash. Removing an absent hash is a no-op.
func (x *indexFile) Remove(key string) {
	x.index.mu.Lock()
	defer x.index.mu.Unlock()

	if _, ok := x.index.Entries[key]; ok {
		delete(x.index.Entries, key)
		x.index.dirty = true
	}
}

// Keys returns all entry hashes in a stable (sorted) order.
func (x *indexFile) Keys() []string {
	x.index.mu.RLock()
	defer x.index.mu.RUnlock()

	keys := make([]string, 0, len(x.index.Entries))
	for k := range x.index.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of indexed entries.
func (x *indexFile) Len() int {
	x.index.mu.RLock()
	defer x.index.mu.RUnlock()
	return len(x.index.Entries)
}

// Reset drops every entry.
func (x *indexFile) Reset() {
	x.index.mu.Lock()
	defer x.index.mu.Unlock()

	if len(x.index.Entries) > 0 {
		x.index.dirty = true
	}
	x.index.Entries = make(map[string]*indexEntry)
}
