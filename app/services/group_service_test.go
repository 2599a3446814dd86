package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupService(t *testing.T) {
	env := newTestEnv(t)

	t.Run("create", func(t *testing.T) {
		group, err := env.Groups.Create(" cats ", " Cats ", "All about cats")
		require.NoError(t, err)
		assert.Equal(t, "cats", group.Slug)
		assert.Equal(t, "Cats", group.Title)
		assert.Equal(t, "Cats", group.String())

		_, err = env.Groups.Create("cats", "Other cats", "")
		assert.ErrorIs(t, err, ErrSlugTaken)

		_, err = env.Groups.Create("not a slug", "Broken", "")
		assert.Error(t, err)
	})

	t.Run("lookup", func(t *testing.T) {
		group, err := env.Groups.GetBySlug("cats")
		require.NoError(t, err)
		assert.Equal(t, "Cats", group.Title)

		_, err = env.Groups.GetBySlug("dogs")
		assert.ErrorIs(t, err, ErrNotFound)

		groups, err := env.Groups.List()
		require.NoError(t, err)
		assert.Len(t, groups, 1)
	})

	t.Run("delete keeps posts", func(t *testing.T) {
		author := env.user(t, "author")
		group, err := env.Groups.GetBySlug("cats")
		require.NoError(t, err)
		post := env.post(t, author, "Meow", group)

		page, err := env.Posts.Index("")
		require.NoError(t, err)
		require.NotNil(t, page.Items[0].Group)

		require.NoError(t, env.Groups.Delete("cats"))

		_, err = env.Groups.GetBySlug("cats")
		assert.ErrorIs(t, err, ErrNotFound)

		stored, err := env.Posts.Get(post.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.GroupID)
		assert.Nil(t, stored.Group)

		page, err = env.Posts.Index("")
		require.NoError(t, err)
		assert.Nil(t, page.Items[0].Group, "cached index is dropped")

		assert.ErrorIs(t, env.Groups.Delete("cats"), ErrNotFound)
	})
}
