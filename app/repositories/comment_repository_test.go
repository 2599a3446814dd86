package repositories

import (
	"testing"
	"time"

	"yatube/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository(t *testing.T) {
	repo := newTestRepository(t)
	author := createUser(t, repo, "author")
	reader := createUser(t, repo, "reader")

	post := &models.Post{Text: "Test post", AuthorID: author.ID, PubDate: time.Now()}
	require.NoError(t, repo.Posts.Create(post))
	otherPost := &models.Post{Text: "Another post", AuthorID: author.ID, PubDate: time.Now()}
	require.NoError(t, repo.Posts.Create(otherPost))

	t.Run("create and get comment", func(t *testing.T) {
		comment := &models.Comment{PostID: post.ID, AuthorID: reader.ID, Text: "First!", Created: time.Now()}
		require.NoError(t, repo.Comments.Create(comment))
		assert.Greater(t, comment.ID, 0)

		retrieved, err := repo.Comments.GetByID(comment.ID)
		require.NoError(t, err)
		assert.Equal(t, "First!", retrieved.Text)
		assert.Equal(t, post.ID, retrieved.PostID)
		assert.Equal(t, reader.ID, retrieved.AuthorID)
	})

	t.Run("list comments by post oldest first", func(t *testing.T) {
		second := &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "Thanks", Created: time.Now()}
		require.NoError(t, repo.Comments.Create(second))
		require.NoError(t, repo.Comments.Create(&models.Comment{PostID: otherPost.ID, AuthorID: reader.ID, Text: "Elsewhere", Created: time.Now()}))

		comments, err := repo.Comments.ListByPost(post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "First!", comments[0].Text)
		assert.Equal(t, "Thanks", comments[1].Text)
	})

	t.Run("update comment", func(t *testing.T) {
		comments, err := repo.Comments.ListByPost(post.ID)
		require.NoError(t, err)
		comment := comments[0]
		comment.Text = "Edited"
		require.NoError(t, repo.Comments.Update(comment))

		updated, err := repo.Comments.GetByID(comment.ID)
		require.NoError(t, err)
		assert.Equal(t, "Edited", updated.Text)

		assert.ErrorIs(t, repo.Comments.Update(&models.Comment{ID: 999}), ErrNotFound)
	})

	t.Run("delete by author", func(t *testing.T) {
		require.NoError(t, repo.Comments.DeleteByAuthor(reader.ID))

		comments, err := repo.Comments.ListByPost(post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, author.ID, comments[0].AuthorID)

		comments, err = repo.Comments.ListByPost(otherPost.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("delete by post", func(t *testing.T) {
		comments, err := repo.Comments.ListByPost(post.ID)
		require.NoError(t, err)
		require.NotEmpty(t, comments)

		require.NoError(t, repo.Comments.DeleteByPost(post.ID))
		remaining, err := repo.Comments.ListByPost(post.ID)
		require.NoError(t, err)
		assert.Empty(t, remaining)

		_, err = repo.Comments.GetByID(comments[0].ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete comment", func(t *testing.T) {
		comment := &models.Comment{PostID: otherPost.ID, AuthorID: author.ID, Text: "Bye", Created: time.Now()}
		require.NoError(t, repo.Comments.Create(comment))
		require.NoError(t, repo.Comments.Delete(comment.ID))

		_, err := repo.Comments.GetByID(comment.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repo.Comments.Delete(comment.ID), ErrNotFound)
	})
}
