package hosttest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanza-editor/stash/pkg/core"
)

func TestOpenDocumentMergesIntoExisting(t *testing.T) {
	ctx := context.Background()
	host := NewHost()
	id := core.FileIdentity("/ws/notes.md")

	existing := host.PreOpen(id, "on disk")

	// Reopening the same identity must seed the live document, never
	// create a second one.
	doc, err := host.OpenDocument(ctx, id, "recovered draft", true)
	require.NoError(t, err)
	assert.Same(t, existing, doc.(*Document))
	assert.Equal(t, 1, host.OpenCount())
	assert.True(t, existing.Dirty())
	assert.Equal(t, "recovered draft", existing.Snapshot())
}

func TestOpenDocumentMergesAcrossPathSpellings(t *testing.T) {
	ctx := context.Background()
	host := NewHost()

	host.PreOpen(core.FileIdentity("/ws/sub/../notes.md"), "on disk")
	doc, err := host.OpenDocument(ctx, core.FileIdentity("/ws/notes.md"), "draft", true)
	require.NoError(t, err)

	assert.Equal(t, 1, host.OpenCount())
	assert.Equal(t, "draft", doc.Snapshot())
}
