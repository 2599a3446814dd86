package controllers

import (
	"net/http"

	"yatube/app/auth"
	"yatube/app/forms"
	"yatube/app/services"
	"yatube/app/views"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	Controller
	posts    *services.PostService
	comments *services.CommentService
}

// NewCommentController creates a new CommentController
func NewCommentController(renderer views.Renderer, svc *services.Services) *CommentController {
	return &CommentController{
		Controller: Controller{renderer: renderer},
		posts:      svc.Posts,
		comments:   svc.Comments,
	}
}

// Index lists the comments of a post, oldest first
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		cc.notFound(w, r)
		return
	}

	post, err := cc.posts.Detail(id)
	if err != nil {
		cc.fail(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post.Comments)
}

// Create adds a comment and always returns to the post. Invalid or GET
// submissions create nothing.
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		cc.notFound(w, r)
		return
	}

	if _, err := cc.posts.Get(id); err != nil {
		cc.fail(w, r, err)
		return
	}

	if r.Method == http.MethodPost {
		form := forms.ParseCommentForm(r)
		if form.Validate() {
			if _, err := cc.comments.Add(auth.UserFromContext(r.Context()), id, form.Text); err != nil {
				cc.fail(w, r, err)
				return
			}
		}
	}
	redirect(w, r, postURL(id))
}
