package models

import (
	"errors"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if p.PubDate.IsZero() {
		return errors.New("pub_date cannot be zero")
	}
	return validate.Struct(p)
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.PubDate.IsZero() {
		p.PubDate = time.Now()
	}
}

// String returns the post text.
func (p *Post) String() string {
	return p.Text
}

// SetGroup tags the post with group, or clears the tag when group is nil.
func (p *Post) SetGroup(group *Group) {
	p.Group = group
	if group == nil {
		p.GroupID = nil
		return
	}
	id := group.ID
	p.GroupID = &id
}

// InGroup reports whether the post is tagged with the group id.
func (p *Post) InGroup(groupID int) bool {
	return p.GroupID != nil && *p.GroupID == groupID
}

// IsAuthor reports whether user wrote the post.
func (p *Post) IsAuthor(user *User) bool {
	return user != nil && user.ID == p.AuthorID
}
