package repositories

import (
	"time"

	"yatube/app/models"
)

// PostFilter narrows a post listing. Zero GroupID matches any group; nil AuthorIDs
// matches any author while an empty, non-nil slice matches nothing.
type PostFilter struct {
	GroupID   int
	AuthorIDs []int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	FindByEmail(email string) ([]*models.User, error)
	Update(user *models.User) error
	Delete(id int) error
	Count() (int, error)
}

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	Create(group *models.Group) error
	GetByID(id int) (*models.Group, error)
	GetBySlug(slug string) (*models.Group, error)
	List() ([]*models.Group, error)
	Update(group *models.Group) error
	Delete(id int) error
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id int) (*models.Post, error)
	List(filter PostFilter, limit, offset int) ([]*models.Post, int, error)
	Update(post *models.Post) error
	Delete(id int) error
	ClearGroup(groupID int) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id int) (*models.Comment, error)
	ListByPost(postID int) ([]*models.Comment, error)
	Update(comment *models.Comment) error
	Delete(id int) error
	DeleteByPost(postID int) error
	DeleteByAuthor(authorID int) error
}

// FollowRepository defines the interface for follow edges
type FollowRepository interface {
	Create(follow *models.Follow) error
	Delete(userID, authorID int) error
	Exists(userID, authorID int) (bool, error)
	ListAuthorIDs(userID int) ([]int, error)
	ListFollowerIDs(authorID int) ([]int, error)
	DeleteAllFor(userID int) error
}

// ResetTokenRepository stores single-use password reset tokens
type ResetTokenRepository interface {
	Create(token string, userID int, ttl time.Duration) error
	Get(token string) (int, error)
	Delete(token string) error
	DeleteAllFor(userID int) error
}
