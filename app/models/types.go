package models

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	validate = validator.New()

	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

func init() {
	RegisterRules(validate)
}

// RegisterRules adds the "username", "slug" and "notblank" rules to v.
func RegisterRules(v *validator.Validate) {
	v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
}

// User is a registered account.
type User struct {
	ID           int       `json:"id" validate:"gte=0"`
	Username     string    `json:"username" validate:"required,max=150,username"`
	FirstName    string    `json:"first_name,omitempty" validate:"max=150"`
	LastName     string    `json:"last_name,omitempty" validate:"max=150"`
	Email        string    `json:"-" validate:"omitempty,email,max=254"`
	PasswordHash string    `json:"-" validate:"required"`
	DateJoined   time.Time `json:"date_joined" validate:"required"`
}

// Group is a named category posts may optionally belong to.
type Group struct {
	ID          int    `json:"id" validate:"gte=0"`
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=50,slug"`
	Description string `json:"description"`
}

// Post is a blog entry written by an author, optionally tagged with a group.
type Post struct {
	ID       int        `json:"id" validate:"gte=0"`
	Text     string     `json:"text" validate:"required,notblank"`
	PubDate  time.Time  `json:"pub_date" validate:"required"`
	AuthorID int        `json:"author_id" validate:"required,gt=0"`
	GroupID  *int       `json:"group_id,omitempty" validate:"omitempty,gt=0"`
	Image    string     `json:"image,omitempty"`
	Author   *User      `json:"author,omitempty" validate:"-"`
	Group    *Group     `json:"group,omitempty" validate:"-"`
	Comments []*Comment `json:"comments,omitempty" validate:"-"`
}

// Comment is a reply to a post.
type Comment struct {
	ID       int       `json:"id" validate:"gte=0"`
	PostID   int       `json:"post_id" validate:"required,gt=0"`
	AuthorID int       `json:"author_id" validate:"required,gt=0"`
	Text     string    `json:"text" validate:"required,notblank"`
	Created  time.Time `json:"created" validate:"required"`
	Author   *User     `json:"author,omitempty" validate:"-"`
}

// Follow is a directed subscription edge from User to Author.
type Follow struct {
	UserID   int       `json:"user_id" validate:"required,gt=0,nefield=AuthorID"`
	AuthorID int       `json:"author_id" validate:"required,gt=0"`
	Created  time.Time `json:"created"`
}
