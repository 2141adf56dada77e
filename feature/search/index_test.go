package search

import (
	"context"
	"testing"

	"ogre/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIndex(t *testing.T) *Index {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	idx := NewIndex(db)
	require.NoError(t, idx.Migrate(context.Background()))
	return idx
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument("e1", "H C", "Alice", true, false, true)
	assert.Equal(t, []string{FlagDeDRM, FlagNonFiction}, []string(doc.Flags))
	assert.True(t, doc.HasFlag(FlagNonFiction))
	assert.False(t, doc.HasFlag(FlagCurated))

	empty := NewDocument("e2", "A", "B", false, false, false)
	assert.Empty(t, empty.Flags)
}

func TestIndex_UpsertKeepsFlags(t *testing.T) {
	ctx := context.Background()
	idx := setupIndex(t)

	require.NoError(t, idx.Index(ctx, NewDocument("e1", "H C", "Alice", false, false, true)))
	require.NoError(t, idx.Index(ctx, NewDocument("e1", "H C", "Alice Returns", false, true, false)))

	docs, err := idx.Search(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Alice Returns", docs[0].Title)
	assert.Equal(t, []string{FlagCurated, FlagDeDRM}, []string(docs[0].Flags))
}

func TestIndex_Search(t *testing.T) {
	ctx := context.Background()
	idx := setupIndex(t)

	require.NoError(t, idx.Index(ctx,
		NewDocument("e1", "Lewis Carroll", "Alice in Wonderland", false, false, false),
		NewDocument("e2", "Lewis Carroll", "Through the Looking-Glass", false, false, false),
		NewDocument("e3", "Jane Austen", "Emma", false, false, false),
	))

	docs, err := idx.Search(ctx, "  CARROLL ", 10)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = idx.Search(ctx, "carroll alice", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "e1", docs[0].EbookID)

	docs, err = idx.Search(ctx, "tolstoy", 10)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestIndex_Empty(t *testing.T) {
	idx := setupIndex(t)
	assert.NoError(t, idx.Index(context.Background()))
}
