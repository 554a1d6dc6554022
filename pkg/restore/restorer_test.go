package restore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanza-editor/stash/internal/hosttest"
	"github.com/stanza-editor/stash/pkg/adapters/fs"
	"github.com/stanza-editor/stash/pkg/core"
)

func newStore(t *testing.T) *fs.Store {
	t.Helper()
	s, err := fs.NewStore(fs.Config{
		Root:          t.TempDir(),
		WorkspaceRoot: "/ws",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRestorer_ReopensAllEntriesDirty(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// Two untitled and two file-backed documents went down with unsaved
	// changes.
	backups := map[core.Identity]string{
		core.UntitledIdentity("Untitled-1"): "untitled-1",
		core.UntitledIdentity("Untitled-2"): "untitled-2",
		core.FileIdentity("/ws/Foo"):        "fooFile",
		core.FileIdentity("/ws/Bar"):        "barFile",
	}
	for id, content := range backups {
		_, err := store.Put(ctx, id, []byte(content), "")
		require.NoError(t, err)
	}

	host := hosttest.NewHost()
	r := New(store, host)

	restored, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Len(t, restored, 4)
	assert.Equal(t, 4, host.OpenCount())

	for id, content := range backups {
		doc, ok := host.Get(id)
		require.True(t, ok, "document %s not reopened", id)
		assert.True(t, doc.Dirty(), "restored document %s must report dirty", id)
		assert.Equal(t, content, doc.Snapshot())
	}
}

func TestRestorer_NoDuplicateOpen(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	id := core.FileIdentity("/ws/notes.md")
	_, err := store.Put(ctx, id, []byte("unsaved edits"), "")
	require.NoError(t, err)

	// Session restore already reopened the editor from disk before the
	// restorer ran.
	host := hosttest.NewHost()
	existing := host.PreOpen(id, "stale disk content")

	restored, err := New(store, host).Run(ctx)
	require.NoError(t, err)

	assert.Len(t, restored, 1)
	assert.Equal(t, 1, host.OpenCount(), "restorer must attach, not open a second editor")
	assert.True(t, existing.Dirty())
	assert.Equal(t, "unsaved edits", existing.Snapshot(), "snapshot wins over disk content")
}

func TestRestorer_SkipsCorruptEntries(t *testing.T) {
	root := t.TempDir()
	store, err := fs.NewStore(fs.Config{Root: root, WorkspaceRoot: "/ws"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	good := core.UntitledIdentity("Untitled-1")
	_, err = store.Put(ctx, good, []byte("survivor"), "")
	require.NoError(t, err)

	// An indexed entry whose content file vanished behind the store's
	// back: present in metadata, unreadable on restore.
	ghost := core.UntitledIdentity("ghost")
	ghostKey, err := store.Put(ctx, ghost, []byte("doomed"), "")
	require.NoError(t, err)
	ghostPath := filepath.Join(root, string(core.WorkspaceKey("/ws")), string(ghostKey))
	require.NoError(t, os.Remove(ghostPath))

	host := hosttest.NewHost()
	restored, err := New(store, host).Run(ctx)
	require.NoError(t, err, "one bad entry must not abort restoration")

	assert.Len(t, restored, 1)
	assert.True(t, restored[0].Equal(good))
}

func TestRestorer_DoesNotDeleteRestoredEntries(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, core.UntitledIdentity("Untitled-1"), []byte("keep me"), "")
	require.NoError(t, err)

	_, err = New(store, hosttest.NewHost()).Run(ctx)
	require.NoError(t, err)

	infos, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 1, "restoration must not consume the backup entry")
}

func TestRestorer_EmptyStore(t *testing.T) {
	store := newStore(t)
	host := hosttest.NewHost()

	restored, err := New(store, host).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, restored)
	assert.Equal(t, 0, host.OpenCount())
}

func TestRestorer_RerunIsStable(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, core.UntitledIdentity("Untitled-1"), []byte("once"), "")
	require.NoError(t, err)

	host := hosttest.NewHost()
	r := New(store, host)

	first, err := r.Run(ctx)
	require.NoError(t, err)
	second, err := r.Run(ctx)
	require.NoError(t, err)

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
	assert.Equal(t, 1, host.OpenCount(), "rerun must merge, not duplicate")
}
