package controllers

import (
	"net/http"

	"yatube/app/auth"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
)

// FollowController handles subscriptions and the feed of followed authors
type FollowController struct {
	Controller
	posts   *services.PostService
	follows *services.FollowService
}

// NewFollowController creates a new FollowController
func NewFollowController(renderer views.Renderer, svc *services.Services) *FollowController {
	return &FollowController{
		Controller: Controller{renderer: renderer},
		posts:      svc.Posts,
		follows:    svc.Follows,
	}
}

// Index shows posts by the authors the current user follows
func (fc *FollowController) Index(w http.ResponseWriter, r *http.Request) {
	page, err := fc.posts.Feed(auth.UserFromContext(r.Context()), r.URL.Query().Get("page"))
	if err != nil {
		fc.serverError(w, r, err)
		return
	}
	fc.render(w, r, http.StatusOK, "posts/follow.html", views.Context{"page_obj": page})
}

// Follow subscribes to an author and returns to their profile
func (fc *FollowController) Follow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := fc.follows.Follow(auth.UserFromContext(r.Context()), username); err != nil {
		fc.fail(w, r, err)
		return
	}
	redirect(w, r, profileURL(username))
}

// Unfollow drops a subscription and returns to the profile
func (fc *FollowController) Unfollow(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if err := fc.follows.Unfollow(auth.UserFromContext(r.Context()), username); err != nil {
		fc.fail(w, r, err)
		return
	}
	redirect(w, r, profileURL(username))
}
