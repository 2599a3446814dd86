package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"yatube/app/auth"
	"yatube/app/forms"
	"yatube/app/models"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	Controller
	posts   *services.PostService
	groups  *services.GroupService
	follows *services.FollowService
}

// NewPostController creates a new PostController
func NewPostController(renderer views.Renderer, svc *services.Services) *PostController {
	return &PostController{
		Controller: Controller{renderer: renderer},
		posts:      svc.Posts,
		groups:     svc.Groups,
		follows:    svc.Follows,
	}
}

// postPage is the JSON shape of a post listing
type postPage struct {
	Posts       []*models.Post `json:"posts"`
	Page        int            `json:"page"`
	NumPages    int            `json:"num_pages"`
	Count       int            `json:"count"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

func newPostPage(page *services.PostPage) postPage {
	return postPage{
		Posts:       page.Items,
		Page:        page.Number,
		NumPages:    page.Paginator.NumPages(),
		Count:       page.Paginator.Count,
		HasNext:     page.HasNext(),
		HasPrevious: page.HasPrevious(),
	}
}

// Index handles listing all posts
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	page, err := pc.posts.Index(r.URL.Query().Get("page"))
	if err != nil {
		pc.serverError(w, r, err)
		return
	}

	if isAPI(r) {
		sendJSON(w, http.StatusOK, newPostPage(page))
		return
	}
	pc.render(w, r, http.StatusOK, "posts/index.html", views.Context{"page_obj": page})
}

// GroupPosts lists the posts of one group
func (pc *PostController) GroupPosts(w http.ResponseWriter, r *http.Request) {
	group, page, err := pc.posts.GroupPosts(mux.Vars(r)["slug"], r.URL.Query().Get("page"))
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, "posts/group_list.html", views.Context{
		"group":    group,
		"page_obj": page,
		"title":    fmt.Sprintf("Posts from community %s", group.Title),
	})
}

// Profile lists the posts of one author
func (pc *PostController) Profile(w http.ResponseWriter, r *http.Request) {
	author, page, err := pc.posts.Profile(mux.Vars(r)["username"], r.URL.Query().Get("page"))
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	following, err := pc.follows.IsFollowing(auth.UserFromContext(r.Context()), author)
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	followers, err := pc.follows.FollowerCount(author.ID)
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	followings, err := pc.follows.FollowingCount(author.ID)
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, "posts/profile.html", views.Context{
		"author":          author,
		"page_obj":        page,
		"following":       following,
		"posts_count":     page.Paginator.Count,
		"followers_count": followers,
		"following_count": followings,
	})
}

// Show handles displaying a single post with its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		pc.notFound(w, r)
		return
	}

	post, err := pc.posts.Detail(id)
	if err != nil {
		pc.fail(w, r, err)
		return
	}

	if isAPI(r) {
		sendJSON(w, http.StatusOK, post)
		return
	}

	count, err := pc.posts.CountByAuthor(post.AuthorID)
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, "posts/post_detail.html", views.Context{
		"post":        post,
		"comments":    post.Comments,
		"form":        &forms.CommentForm{},
		"posts_count": count,
	})
}

// Create shows the new post form and publishes submitted posts
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	groups, err := pc.groups.List()
	if err != nil {
		pc.serverError(w, r, err)
		return
	}

	if r.Method != http.MethodPost {
		pc.render(w, r, http.StatusOK, "posts/create_post.html", views.Context{
			"form":   forms.NewPostForm(nil),
			"groups": groups,
		})
		return
	}

	form, err := forms.ParsePostForm(r)
	if err != nil {
		sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !form.Validate(groups) {
		pc.render(w, r, http.StatusOK, "posts/create_post.html", views.Context{
			"form":   form,
			"groups": groups,
		})
		return
	}

	if _, err := pc.posts.Create(user, form); err != nil {
		pc.serverError(w, r, err)
		return
	}
	redirect(w, r, profileURL(user.Username))
}

// Edit shows the edit form for a post and saves submitted changes. Only the
// author may edit; everyone else is sent back to the post.
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		pc.notFound(w, r)
		return
	}
	user := auth.UserFromContext(r.Context())

	post, err := pc.posts.Get(id)
	if err != nil {
		pc.fail(w, r, err)
		return
	}
	if !post.IsAuthor(user) {
		redirect(w, r, postURL(post.ID))
		return
	}

	groups, err := pc.groups.List()
	if err != nil {
		pc.serverError(w, r, err)
		return
	}
	page := views.Context{"post": post, "is_edit": true, "groups": groups}

	if r.Method != http.MethodPost {
		page["form"] = forms.NewPostForm(post)
		pc.render(w, r, http.StatusOK, "posts/create_post.html", page)
		return
	}

	form, err := forms.ParsePostForm(r)
	if err != nil {
		sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !form.Validate(groups) {
		page["form"] = form
		pc.render(w, r, http.StatusOK, "posts/create_post.html", page)
		return
	}

	if _, err := pc.posts.Update(user, post.ID, form); err != nil {
		if errors.Is(err, services.ErrPermissionDenied) {
			redirect(w, r, postURL(post.ID))
			return
		}
		pc.fail(w, r, err)
		return
	}
	redirect(w, r, postURL(post.ID))
}
