package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService(t *testing.T) {
	env := newTestEnv(t)
	follower := env.user(t, "follower")
	author := env.user(t, "author")

	isFollowing := func() bool {
		ok, err := env.Follows.IsFollowing(follower, author)
		require.NoError(t, err)
		return ok
	}

	t.Run("follow", func(t *testing.T) {
		require.NoError(t, env.Follows.Follow(follower, "author"))
		assert.True(t, isFollowing())
		assert.Equal(t, 1, env.metrics.follows["follow"])
	})

	t.Run("duplicate follow is a no-op", func(t *testing.T) {
		require.NoError(t, env.Follows.Follow(follower, "author"))
		count, err := env.Follows.FollowerCount(author.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		assert.Equal(t, 1, env.metrics.follows["follow"])
	})

	t.Run("self follow is a no-op", func(t *testing.T) {
		require.NoError(t, env.Follows.Follow(author, "author"))
		count, err := env.Follows.FollowingCount(author.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("unknown author", func(t *testing.T) {
		assert.ErrorIs(t, env.Follows.Follow(follower, "ghost"), ErrNotFound)
		assert.ErrorIs(t, env.Follows.Unfollow(follower, "ghost"), ErrNotFound)
	})

	t.Run("anonymous follows nobody", func(t *testing.T) {
		ok, err := env.Follows.IsFollowing(nil, author)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unfollow", func(t *testing.T) {
		require.NoError(t, env.Follows.Unfollow(follower, "author"))
		assert.False(t, isFollowing())
		assert.Equal(t, 1, env.metrics.follows["unfollow"])

		require.NoError(t, env.Follows.Unfollow(follower, "author"))
		assert.Equal(t, 1, env.metrics.follows["unfollow"])
	})
}
