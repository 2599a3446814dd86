package services

import (
	"errors"
	"time"

	"yatube/app/cache"
	"yatube/app/mail"
	"yatube/app/models"
	"yatube/app/pagination"
	"yatube/app/repositories"
	"yatube/app/storage"
)

var (
	ErrNotFound           = repositories.ErrNotFound
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired reset link")
	ErrUsernameTaken      = errors.New("a user with that username already exists")
	ErrSlugTaken          = errors.New("a group with that slug already exists")
)

// PostPage is one page of a post listing.
type PostPage = pagination.Page[*models.Post]

// Recorder receives domain events for metrics.
type Recorder interface {
	PostCreated()
	CommentCreated()
	Followed(action string)
}

type nopRecorder struct{}

func (nopRecorder) PostCreated()    {}
func (nopRecorder) CommentCreated() {}
func (nopRecorder) Followed(string) {}

// DefaultResetTTL is how long a password reset link stays valid.
const DefaultResetTTL = 72 * time.Hour

// Deps carries everything the services are built from. Optional members may be nil.
type Deps struct {
	Users       repositories.UserRepository
	Groups      repositories.GroupRepository
	Posts       repositories.PostRepository
	Comments    repositories.CommentRepository
	Follows     repositories.FollowRepository
	ResetTokens repositories.ResetTokenRepository

	Images     storage.ImageStorage
	IndexCache *cache.PageCache[*PostPage]
	Mailer     mail.Mailer
	Metrics    Recorder
	ResetTTL   time.Duration
}

func (d Deps) recorder() Recorder {
	if d.Metrics == nil {
		return nopRecorder{}
	}
	return d.Metrics
}

// Services bundles every service sharing one set of dependencies.
type Services struct {
	Users    *UserService
	Groups   *GroupService
	Posts    *PostService
	Comments *CommentService
	Follows  *FollowService
}

// New wires the services together.
func New(deps Deps) *Services {
	posts := NewPostService(deps)
	return &Services{
		Users:    NewUserService(deps, posts),
		Groups:   NewGroupService(deps, posts),
		Posts:    posts,
		Comments: NewCommentService(deps),
		Follows:  NewFollowService(deps),
	}
}
