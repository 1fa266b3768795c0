package badger

import (
	"context"
	"testing"

	"github.com/poiesic/talentscout/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingRepository_SaveAndReplace(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	recs := []*core.EmbeddingRecord{
		{OwnerID: 1, Kind: core.EmbeddingKindPost, RefID: 2, Model: "hash-emb-2", Dim: 2, Vector: []float32{0, 1}},
		{OwnerID: 1, Kind: core.EmbeddingKindPost, RefID: 1, Model: "hash-emb-2", Dim: 2, Vector: []float32{1, 0}},
		{OwnerID: 2, Kind: core.EmbeddingKindPost, RefID: 3, Model: "hash-emb-2", Dim: 2, Vector: []float32{1, 0}},
	}
	require.NoError(t, store.Embeddings.SaveEmbeddings(ctx, recs...))

	got, err := store.Embeddings.GetEmbeddings(ctx, 1, core.EmbeddingKindPost)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, core.ID(1), got[0].RefID, "ordered by ref")
	assert.Equal(t, []float32{1, 0}, got[0].Vector)

	firstID := got[0].Id
	replacement := &core.EmbeddingRecord{OwnerID: 1, Kind: core.EmbeddingKindPost, RefID: 1, Model: "hash-emb-3", Dim: 3, Vector: []float32{0, 0, 1}}
	require.NoError(t, store.Embeddings.SaveEmbeddings(ctx, replacement))

	got, err = store.Embeddings.GetEmbeddings(ctx, 1, core.EmbeddingKindPost)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, firstID, got[0].Id)
	assert.Equal(t, 3, got[0].Dim)

	profile, err := store.Embeddings.GetEmbeddings(ctx, 1, core.EmbeddingKindProfile)
	require.NoError(t, err)
	assert.Empty(t, profile)
}

func TestEmbeddingRepository_RejectsDimMismatch(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	err = store.Embeddings.SaveEmbeddings(context.Background(), &core.EmbeddingRecord{OwnerID: 1, Kind: core.EmbeddingKindPost, Dim: 3, Vector: []float32{1}})
	assert.ErrorIs(t, err, core.ErrInvalidEmbedding)
}
