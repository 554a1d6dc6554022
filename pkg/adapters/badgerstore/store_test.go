package badgerstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanza-editor/stash/pkg/core"
)

func newTestStore(t *testing.T, workspace string) *Store {
	t.Helper()
	s, err := Open(Config{
		InMemory:      true,
		WorkspaceRoot: workspace,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBadgerStore_PutGetRoundTrip(t *testing.T) {
	s := newTestStore(t, "/ws")
	ctx := context.Background()

	id := core.FileIdentity("/ws/notes.txt")
	key, err := s.Put(ctx, id, []byte("unsaved"), "\r\n")
	require.NoError(t, err)
	assert.Equal(t, core.HashKey(id), key)

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "unsaved", string(got))
}

func TestBadgerStore_GetMissing(t *testing.T) {
	s := newTestStore(t, "/ws")

	_, err := s.Get(context.Background(), core.HashKey(core.UntitledIdentity("nope")))
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestBadgerStore_ListAndOrdinals(t *testing.T) {
	s := newTestStore(t, "/ws")
	ctx := context.Background()
	id := core.UntitledIdentity("Untitled-1")

	_, err := s.Put(ctx, id, []byte("v1"), "")
	require.NoError(t, err)
	_, err = s.Put(ctx, id, []byte("v2"), "")
	require.NoError(t, err)

	infos, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.True(t, infos[0].Identity.Equal(id))
	assert.Equal(t, uint64(2), infos[0].Ordinal)
	assert.Equal(t, "", infos[0].Hint)
}

func TestBadgerStore_DeleteIdempotent(t *testing.T) {
	s := newTestStore(t, "/ws")
	ctx := context.Background()

	key, err := s.Put(ctx, core.UntitledIdentity("Untitled-1"), []byte("x"), "")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))

	infos, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestBadgerStore_WorkspaceIsolation(t *testing.T) {
	// One DB, two workspace namespaces.
	s, err := Open(Config{InMemory: true, WorkspaceRoot: "/ws-a"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	other := &Store{db: s.db, workspaceKey: core.WorkspaceKey("/ws-b"), config: s.config}

	ctx := context.Background()
	_, err = s.Put(ctx, core.UntitledIdentity("Untitled-1"), []byte("a"), "")
	require.NoError(t, err)

	infos, err := other.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestBadgerStore_Clear(t *testing.T) {
	s := newTestStore(t, "/ws")
	ctx := context.Background()

	for _, name := range []string{"Untitled-1", "Untitled-2", "Untitled-3"} {
		_, err := s.Put(ctx, core.UntitledIdentity(name), []byte(name), "")
		require.NoError(t, err)
	}

	require.NoError(t, s.Clear(ctx))

	infos, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}
