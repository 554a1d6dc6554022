package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stanza-editor/stash/pkg/core"
)

// Config holds the configuration for the file-backed store.
type Config struct {
	// Root is the backup home shared by all workspaces
	// (e.g. ~/.local/share/stash/backups).
	Root string
	// WorkspaceRoot is the workspace this session serves. Its hash
	// namespaces the entries so two workspaces never collide.
	WorkspaceRoot string
	Logger        *slog.Logger
}

// Store implements core.Store on a flat directory of content files plus a
// JSON index mapping entry hashes back to identities.
type Store struct {
	dir          string // Root/<workspace hash>
	workspaceKey core.Key
	sessionID    string
	idx          *indexFile
	config       Config

	mu            sync.RWMutex
	watcherActive bool
}

var _ core.Store = (*Store)(nil)

// NewStore opens (creating if needed) the backup area for the configured
// workspace. Leftover temp files from a crashed predecessor are swept here,
// before any entry is read.
func NewStore(config Config) (*Store, error) {
	wsKey := core.WorkspaceKey(config.WorkspaceRoot)
	dir := filepath.Join(config.Root, string(wsKey))

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create backup dir: %v", core.ErrStoreUnavailable, err)
	}

	s := &Store{
		dir:          dir,
		workspaceKey: wsKey,
		sessionID:    uuid.NewString(),
		idx:          newIndexFile(dir),
		config:       config,
	}

	s.sweepTempFiles()

	if err := s.idx.Load(); err != nil {
		return nil, fmt.Errorf("%w: load index: %v", core.ErrStoreUnavailable, err)
	}

	if config.Logger != nil {
		config.Logger.Debug("backup store opened",
			"dir", dir, "session", s.sessionID, "entries", s.idx.Len())
	}

	return s, nil
}

// sweepTempFiles removes abandoned atomic-write temp files. Failures are
// harmless; the files are inert.
func (s *Store) sweepTempFiles() {
	matches, err := filepath.Glob(filepath.Join(s.dir, TempFilePrefix+"*"))
	if err != nil {
		return
	}
	for _, m := range matches {
		_ = os.Remove(m)
	}
}

// entryPath returns the content file for a key.
func (s *Store) entryPath(key core.Key) string {
	return filepath.Join(s.dir, string(key))
}

// Put upserts the snapshot for an identity, content file first, index
// second. An entry is only visible to List once both writes landed, so a
// crash between them leaves at worst an orphaned content file.
func (s *Store) Put(ctx context.Context, id core.Identity, content []byte, hint string) (core.Key, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := core.HashKey(id)

	prior, existed := s.idx.Get(string(key))
	if existed && prior.Identity != id.String() {
		// Distinct identity strings mapping to one key: either the same
		// document spelled differently, or a genuine hash near-miss.
		prevID, err := core.ParseIdentity(prior.Identity)
		if err != nil || !prevID.Equal(id) {
			if s.config.Logger != nil {
				s.config.Logger.Warn("identity collision on backup key; second write wins",
					"key", key, "previous", prior.Identity, "current", id.String())
			}
		}
	}

	if err := writeFileAtomic(s.entryPath(key), content, 0600); err != nil {
		return "", fmt.Errorf("%w: write entry %s: %v", core.ErrStoreUnavailable, key, err)
	}

	s.idx.Set(string(key), indexEntry{
		Identity: id.String(),
		Hint:     hint,
		Ordinal:  prior.Ordinal + 1,
	})
	if err := s.idx.Save(); err != nil {
		return "", fmt.Errorf("%w: save index: %v", core.ErrStoreUnavailable, err)
	}

	if s.config.Logger != nil {
		s.config.Logger.Debug("backup written", "identity", id.String(), "key", key, "bytes", len(content))
	}

	return key, nil
}

// Get retrieves the snapshot for a key.
func (s *Store) Get(ctx context.Context, key core.Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.entryPath(key))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("entry %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read entry %s: %v", core.ErrStoreUnavailable, key, err)
	}
	return data, nil
}

// List enumerates the workspace's entries in stable (key-sorted) order.
// Entries whose identity cannot be reconstructed, or whose content file is
// missing, are skipped and logged rather than aborting the enumeration.
func (s *Store) List(ctx context.Context) ([]core.EntryInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var infos []core.EntryInfo
	for _, k := range s.idx.Keys() {
		e, ok := s.idx.Get(k)
		if !ok {
			continue
		}

		id, err := core.ParseIdentity(e.Identity)
		if err != nil {
			if s.config.Logger != nil {
				s.config.Logger.Warn("skipping corrupt backup entry", "key", k, "error", err)
			}
			continue
		}

		if _, err := os.Stat(filepath.Join(s.dir, k)); err != nil {
			if s.config.Logger != nil {
				s.config.Logger.Warn("skipping backup entry without content", "key", k, "error", err)
			}
			continue
		}

		infos = append(infos, core.EntryInfo{
			Key:      core.Key(k),
			Identity: id,
			Hint:     e.Hint,
			Ordinal:  e.Ordinal,
		})
	}
	return infos, nil
}

// Delete removes an entry. Deleting a nonexistent key is not an error.
func (s *Store) Delete(ctx context.Context, key core.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.entryPath(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: delete entry %s: %v", core.ErrStoreUnavailable, key, err)
	}

	s.idx.Remove(string(key))
	if err := s.idx.Save(); err != nil {
		return fmt.Errorf("%w: save index: %v", core.ErrStoreUnavailable, err)
	}

	if s.config.Logger != nil {
		s.config.Logger.Debug("backup deleted", "key", key)
	}
	return nil
}

// Clear deletes every entry of the workspace.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, k := range s.idx.Keys() {
		if err := os.Remove(filepath.Join(s.dir, k)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%w: clear entry %s: %v", core.ErrStoreUnavailable, k, err)
		}
	}

	s.idx.Reset()
	if err := s.idx.Save(); err != nil {
		return fmt.Errorf("%w: save index: %v", core.ErrStoreUnavailable, err)
	}

	if s.config.Logger != nil {
		s.config.Logger.Info("backup area cleared", "workspace", s.workspaceKey)
	}
	return nil
}

// Close flushes the index. The store holds no open file handles otherwise.
func (s *Store) Close() error {
	return s.idx.Save()
}

// isEntryFile reports whether a path inside the backup dir is an entry
// content file (not the index, not a temp file).
func (s *Store) isEntryFile(path string) bool {
	base := filepath.Base(path)
	if base == "index.json" || strings.HasPrefix(base, TempFilePrefix) {
		return false
	}
	return filepath.Dir(path) == s.dir
}

// now is the event timestamp source, overridable in tests.
var now = func() int64 { return time.Now().Unix() }
