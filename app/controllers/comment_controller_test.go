package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentController(t *testing.T) {
	f := setupFixture(t)
	author := f.user(t, "auth")
	post := f.post(t, author, "Commented post", nil)
	path := fmt.Sprintf("/posts/%d/comment/", post.ID)
	detail := fmt.Sprintf("/posts/%d/", post.ID)

	comments := func() int {
		list, err := f.repos.Comments.ListByPost(post.ID)
		require.NoError(t, err)
		return len(list)
	}

	t.Run("anonymous is sent to login", func(t *testing.T) {
		w := f.postForm(path, url.Values{"text": {"Anonymous"}}, nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/auth/login/?next="+path, w.Header().Get("Location"))
		assert.Zero(t, comments())
	})

	t.Run("GET creates nothing", func(t *testing.T) {
		w := f.get(path, author)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detail, w.Header().Get("Location"))
		assert.Zero(t, comments())
	})

	t.Run("blank comment creates nothing", func(t *testing.T) {
		w := f.postForm(path, url.Values{"text": {"  "}}, author)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Zero(t, comments())
	})

	t.Run("comment appears on the post", func(t *testing.T) {
		w := f.postForm(path, url.Values{"text": {"Test comment"}}, author)
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detail, w.Header().Get("Location"))
		assert.Equal(t, 1, comments())

		f.get(detail, nil)
		ctx := f.renderer.Last().Context
		assert.Len(t, ctx["comments"], 1)
	})

	t.Run("missing post", func(t *testing.T) {
		w := f.postForm("/posts/999/comment/", url.Values{"text": {"Lost"}}, author)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
