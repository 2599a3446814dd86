package services

import (
	"bytes"
	"errors"
	"fmt"

	"yatube/app/cache"
	"yatube/app/forms"
	"yatube/app/logger"
	"yatube/app/models"
	"yatube/app/pagination"
	"yatube/app/repositories"
	"yatube/app/storage"
)

// PostService handles business logic for blog posts
type PostService struct {
	users    repositories.UserRepository
	groups   repositories.GroupRepository
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	follows  repositories.FollowRepository
	images   storage.ImageStorage
	cache    *cache.PageCache[*PostPage]
	metrics  Recorder
}

// NewPostService creates a new PostService
func NewPostService(deps Deps) *PostService {
	return &PostService{
		users:    deps.Users,
		groups:   deps.Groups,
		posts:    deps.Posts,
		comments: deps.Comments,
		follows:  deps.Follows,
		images:   deps.Images,
		cache:    deps.IndexCache,
		metrics:  deps.recorder(),
	}
}

// Index returns a page of every post, newest first. Pages are cached by the raw
// page value until the cache TTL runs out or a post is written through this service.
// A page read while a write invalidated the cache is returned but not stored.
func (s *PostService) Index(rawPage string) (*PostPage, error) {
	if s.cache == nil {
		return s.list(repositories.PostFilter{}, rawPage)
	}
	if page, ok := s.cache.Get(rawPage); ok {
		return page, nil
	}
	gen := s.cache.Generation()
	page, err := s.list(repositories.PostFilter{}, rawPage)
	if err != nil {
		return nil, err
	}
	s.cache.SetAt(gen, rawPage, page)
	return page, nil
}

// GroupPosts returns the group with slug and a page of its posts
func (s *PostService) GroupPosts(slug, rawPage string) (*models.Group, *PostPage, error) {
	group, err := s.groups.GetBySlug(slug)
	if err != nil {
		return nil, nil, fmt.Errorf("group %q: %w", slug, err)
	}
	page, err := s.list(repositories.PostFilter{GroupID: group.ID}, rawPage)
	if err != nil {
		return nil, nil, err
	}
	return group, page, nil
}

// Profile returns the user with username and a page of their posts
func (s *PostService) Profile(username, rawPage string) (*models.User, *PostPage, error) {
	author, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, nil, fmt.Errorf("user %q: %w", username, err)
	}
	page, err := s.list(repositories.PostFilter{AuthorIDs: []int{author.ID}}, rawPage)
	if err != nil {
		return nil, nil, err
	}
	return author, page, nil
}

// Feed returns a page of posts by the authors user follows
func (s *PostService) Feed(user *models.User, rawPage string) (*PostPage, error) {
	authorIDs, err := s.follows.ListAuthorIDs(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list followed authors: %w", err)
	}
	if authorIDs == nil {
		authorIDs = []int{}
	}
	return s.list(repositories.PostFilter{AuthorIDs: authorIDs}, rawPage)
}

// CountByAuthor returns how many posts authorID has written
func (s *PostService) CountByAuthor(authorID int) (int, error) {
	_, total, err := s.posts.List(repositories.PostFilter{AuthorIDs: []int{authorID}}, 1, 0)
	return total, err
}

// Detail returns a post with its author, group and comments
func (s *PostService) Detail(id int) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}
	h := s.hydrator()
	if err := h.post(post); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	for _, comment := range comments {
		if comment.Author, err = h.user(comment.AuthorID); err != nil {
			return nil, err
		}
	}
	post.Comments = comments
	return post, nil
}

// Get returns a post with its author and group
func (s *PostService) Get(id int) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}
	if err := s.hydrator().post(post); err != nil {
		return nil, err
	}
	return post, nil
}

// Create publishes a post from a validated form
func (s *PostService) Create(author *models.User, form *forms.PostForm) (*models.Post, error) {
	post := &models.Post{
		Text:     form.Text,
		AuthorID: author.ID,
		GroupID:  form.GroupID(),
	}
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("invalid post: %w", err)
	}

	if form.HasImage() {
		name, err := s.saveImage(form)
		if err != nil {
			return nil, err
		}
		post.Image = name
	}

	if err := s.posts.Create(post); err != nil {
		s.discardImage(post.Image)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	s.invalidate()
	s.metrics.PostCreated()
	post.Author = author
	return post, nil
}

// Update edits a post; only its author may do so
func (s *PostService) Update(editor *models.User, id int, form *forms.PostForm) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}
	if !post.IsAuthor(editor) {
		return nil, ErrPermissionDenied
	}

	post.Text = form.Text
	post.GroupID = form.GroupID()
	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("invalid post: %w", err)
	}

	oldImage := post.Image
	if form.HasImage() {
		name, err := s.saveImage(form)
		if err != nil {
			return nil, err
		}
		post.Image = name
	}

	if err := s.posts.Update(post); err != nil {
		if post.Image != oldImage {
			s.discardImage(post.Image)
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	if post.Image != oldImage {
		s.discardImage(oldImage)
	}
	s.invalidate()
	post.Author = editor
	return post, nil
}

// Delete removes a post with its comments; only its author may do so
func (s *PostService) Delete(editor *models.User, id int) error {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return fmt.Errorf("post %d: %w", id, err)
	}
	if !post.IsAuthor(editor) {
		return ErrPermissionDenied
	}
	return s.remove(post)
}

// DeleteByAuthor removes every post written by authorID
func (s *PostService) DeleteByAuthor(authorID int) error {
	for {
		posts, _, err := s.posts.List(repositories.PostFilter{AuthorIDs: []int{authorID}}, pagination.PerPage, 0)
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			return nil
		}
		for _, post := range posts {
			if err := s.remove(post); err != nil {
				return err
			}
		}
	}
}

func (s *PostService) remove(post *models.Post) error {
	if err := s.comments.DeleteByPost(post.ID); err != nil {
		return fmt.Errorf("failed to delete comments of post %d: %w", post.ID, err)
	}
	if err := s.posts.Delete(post.ID); err != nil {
		return fmt.Errorf("failed to delete post %d: %w", post.ID, err)
	}
	s.discardImage(post.Image)
	s.invalidate()
	return nil
}

// ClearCache drops every cached index page
func (s *PostService) ClearCache() {
	s.invalidate()
}

func (s *PostService) invalidate() {
	if s.cache != nil {
		s.cache.Clear()
	}
}

func (s *PostService) saveImage(form *forms.PostForm) (string, error) {
	if s.images == nil {
		return "", errors.New("image storage is not configured")
	}
	name, err := s.images.SaveImage(bytes.NewReader(form.Image), form.ImageName)
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return name, nil
}

func (s *PostService) discardImage(name string) {
	if name == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(name); err != nil {
		logger.Warn().Err(err).Str("image", name).Msg("Failed to delete image")
	}
}

// list loads the requested page of filter, clamping past-the-end numbers to the last page.
func (s *PostService) list(filter repositories.PostFilter, rawPage string) (*PostPage, error) {
	number := pagination.Requested(rawPage)
	limit, offset := pagination.New(0).Bounds(number)
	posts, total, err := s.posts.List(filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	paginator := pagination.New(total)
	if clamped := paginator.Number(rawPage); clamped != number {
		number = clamped
		limit, offset = paginator.Bounds(number)
		if posts, total, err = s.posts.List(filter, limit, offset); err != nil {
			return nil, fmt.Errorf("failed to list posts: %w", err)
		}
		paginator = pagination.New(total)
	}

	h := s.hydrator()
	for _, post := range posts {
		if err := h.post(post); err != nil {
			return nil, err
		}
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return pagination.NewPage(posts, number, paginator), nil
}

// hydrator resolves authors and groups, loading each one once per call.
type hydrator struct {
	s      *PostService
	users  map[int]*models.User
	groups map[int]*models.Group
}

func (s *PostService) hydrator() *hydrator {
	return &hydrator{s: s, users: map[int]*models.User{}, groups: map[int]*models.Group{}}
}

func (h *hydrator) user(id int) (*models.User, error) {
	if u, ok := h.users[id]; ok {
		return u, nil
	}
	u, err := h.s.users.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	h.users[id] = u
	return u, nil
}

func (h *hydrator) post(post *models.Post) error {
	author, err := h.user(post.AuthorID)
	if err != nil {
		return err
	}
	post.Author = author

	if post.GroupID == nil {
		return nil
	}
	group, ok := h.groups[*post.GroupID]
	if !ok {
		group, err = h.s.groups.GetByID(*post.GroupID)
		if errors.Is(err, repositories.ErrNotFound) {
			post.GroupID = nil
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load group %d: %w", *post.GroupID, err)
		}
		h.groups[*post.GroupID] = group
	}
	post.Group = group
	return nil
}
