package badger

import (
	"context"
	"testing"

	"github.com/poiesic/talentscout/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_DedupesByPostID(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	added, err := store.Posts.AddPosts(ctx, 1,
		&core.SocialPost{Source: "x", PostID: "100", Text: "first"},
		&core.SocialPost{Source: "x", PostID: "101", Text: "second"},
	)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.NotZero(t, added[0].Id)
	assert.Equal(t, core.ID(1), added[0].CandidateID)

	added, err = store.Posts.AddPosts(ctx, 1,
		&core.SocialPost{Source: "x", PostID: "101", Text: "second again"},
		&core.SocialPost{Source: "x", PostID: "102", Text: "third"},
	)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "102", added[0].PostID)

	posts, err := store.Posts.GetPosts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{posts[0].Text, posts[1].Text, posts[2].Text})

	_, err = store.Posts.AddPosts(ctx, 2, &core.SocialPost{PostID: "100", Text: "same id, other candidate"})
	require.NoError(t, err)

	all, err := store.Posts.AllPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
