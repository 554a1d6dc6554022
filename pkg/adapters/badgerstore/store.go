// Package badgerstore implements the backup store on an embedded BadgerDB.
//
// The flat-file adapter is the default; this adapter exists for hosts that
// already embed Badger and prefer a single storage engine for all local
// state. Entry snapshots and their identity metadata live under prefixed
// keys, namespaced by the workspace hash.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/stanza-editor/stash/pkg/core"
)

const (
	prefixEntry = "entry:"
	prefixMeta  = "meta:"
)

// Config holds configuration for the Badger-backed store.
type Config struct {
	// Path is the directory for BadgerDB files. Ignored when InMemory.
	Path string
	// InMemory enables in-memory mode (no disk persistence). Testing only;
	// an in-memory backup store cannot survive a crash.
	InMemory bool
	// SyncWrites enables synchronous writes. On for production; a backup
	// that only lives in the OS page cache defeats its purpose.
	SyncWrites bool
	// WorkspaceRoot is the workspace this session serves.
	WorkspaceRoot string
	Logger        *slog.Logger
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// metaRecord is the stored identity metadata for one entry.
type metaRecord struct {
	Identity string `json:"identity"`
	Hint     string `json:"hint,omitempty"`
	Ordinal  uint64 `json:"ordinal"`
}

// Store implements core.Store on BadgerDB.
type Store struct {
	db           *badger.DB
	workspaceKey core.Key
	config       Config
}

var _ core.Store = (*Store)(nil)

// Open creates and opens a Badger-backed store for the configured workspace.
func Open(config Config) (*Store, error) {
	opts := badger.DefaultOptions(config.Path).
		WithInMemory(config.InMemory).
		WithSyncWrites(config.SyncWrites)

	if config.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: config.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger: %v", core.ErrStoreUnavailable, err)
	}

	return &Store{
		db:           db,
		workspaceKey: core.WorkspaceKey(config.WorkspaceRoot),
		config:       config,
	}, nil
}

func (s *Store) entryKey(key core.Key) []byte {
	return []byte(prefixEntry + string(s.workspaceKey) + ":" + string(key))
}

func (s *Store) metaKey(key core.Key) []byte {
	return []byte(prefixMeta + string(s.workspaceKey) + ":" + string(key))
}

// Put upserts snapshot and metadata in one transaction.
func (s *Store) Put(ctx context.Context, id core.Identity, content []byte, hint string) (core.Key, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := core.HashKey(id)

	err := s.db.Update(func(txn *badger.Txn) error {
		var prior metaRecord
		if item, err := txn.Get(s.metaKey(key)); err == nil {
			_ = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &prior)
			})
			if prior.Identity != "" && prior.Identity != id.String() {
				prevID, perr := core.ParseIdentity(prior.Identity)
				if perr != nil || !prevID.Equal(id) {
					if s.config.Logger != nil {
						s.config.Logger.Warn("identity collision on backup key; second write wins",
							"key", key, "previous", prior.Identity, "current", id.String())
					}
				}
			}
		}

		meta, err := json.Marshal(metaRecord{
			Identity: id.String(),
			Hint:     hint,
			Ordinal:  prior.Ordinal + 1,
		})
		if err != nil {
			return err
		}

		if err := txn.Set(s.entryKey(key), content); err != nil {
			return err
		}
		return txn.Set(s.metaKey(key), meta)
	})
	if err != nil {
		return "", fmt.Errorf("%w: write entry %s: %v", core.ErrStoreUnavailable, key, err)
	}

	return key, nil
}

// Get retrieves the snapshot for a key.
func (s *Store) Get(ctx context.Context, key core.Key) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var content []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.entryKey(key))
		if err != nil {
			return err
		}
		content, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("entry %s: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read entry %s: %v", core.ErrStoreUnavailable, key, err)
	}
	return content, nil
}

// List enumerates the workspace's entries by scanning the metadata prefix.
// Corrupt metadata is skipped and logged, never fatal.
func (s *Store) List(ctx context.Context) ([]core.EntryInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := []byte(prefixMeta + string(s.workspaceKey) + ":")
	var infos []core.EntryInfo

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			entryHash := string(item.Key()[len(prefix):])

			var meta metaRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			}); err != nil {
				if s.config.Logger != nil {
					s.config.Logger.Warn("skipping corrupt backup entry", "key", entryHash, "error", err)
				}
				continue
			}

			id, err := core.ParseIdentity(meta.Identity)
			if err != nil {
				if s.config.Logger != nil {
					s.config.Logger.Warn("skipping corrupt backup entry", "key", entryHash, "error", err)
				}
				continue
			}

			infos = append(infos, core.EntryInfo{
				Key:      core.Key(entryHash),
				Identity: id,
				Hint:     meta.Hint,
				Ordinal:  meta.Ordinal,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list entries: %v", core.ErrStoreUnavailable, err)
	}
	return infos, nil
}

// Delete removes an entry. Deleting a nonexistent key is not an error.
func (s *Store) Delete(ctx context.Context, key core.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(s.entryKey(key)); err != nil {
			return err
		}
		return txn.Delete(s.metaKey(key))
	})
	if err != nil {
		return fmt.Errorf("%w: delete entry %s: %v", core.ErrStoreUnavailable, key, err)
	}
	return nil
}

// Clear deletes every entry of the workspace.
func (s *Store) Clear(ctx context.Context) error {
	infos, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, info := range infos {
		if err := s.Delete(ctx, info.Key); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
