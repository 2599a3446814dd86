package models

import (
	"strings"
	"time"
)

// Validate checks the user fields.
func (u *User) Validate() error {
	return validate.Struct(u)
}

// BeforeCreate stamps the join date.
func (u *User) BeforeCreate() {
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now()
	}
}

// String returns the username.
func (u *User) String() string {
	return u.Username
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
