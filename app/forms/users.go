package forms

import (
	"net/http"
	"strings"
)

// SignupForm registers a new user.
type SignupForm struct {
	Form
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
	Password1 string `form:"password1" validate:"required,min=8,notnumeric"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

func ParseSignupForm(r *http.Request) *SignupForm {
	return &SignupForm{
		FirstName: strings.TrimSpace(value(r, "first_name")),
		LastName:  strings.TrimSpace(value(r, "last_name")),
		Username:  strings.TrimSpace(value(r, "username")),
		Email:     strings.TrimSpace(value(r, "email")),
		Password1: value(r, "password1"),
		Password2: value(r, "password2"),
	}
}

func (f *SignupForm) Validate() bool {
	f.check(f)
	if !f.Errors.Has("password1") && f.Username != "" && strings.EqualFold(f.Password1, f.Username) {
		f.AddError("password1", "The password is too similar to the username.")
	}
	return f.Valid()
}

// LoginForm authenticates a user.
type LoginForm struct {
	Form
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func ParseLoginForm(r *http.Request) *LoginForm {
	return &LoginForm{
		Username: strings.TrimSpace(value(r, "username")),
		Password: value(r, "password"),
	}
}

func (f *LoginForm) Validate() bool {
	f.check(f)
	return f.Valid()
}

// PasswordChangeForm changes the password of a logged in user.
type PasswordChangeForm struct {
	Form
	OldPassword  string `form:"old_password" validate:"required"`
	NewPassword1 string `form:"new_password1" validate:"required,min=8,notnumeric"`
	NewPassword2 string `form:"new_password2" validate:"required,eqfield=NewPassword1"`
}

func ParsePasswordChangeForm(r *http.Request) *PasswordChangeForm {
	return &PasswordChangeForm{
		OldPassword:  value(r, "old_password"),
		NewPassword1: value(r, "new_password1"),
		NewPassword2: value(r, "new_password2"),
	}
}

func (f *PasswordChangeForm) Validate() bool {
	f.check(f)
	return f.Valid()
}

// PasswordResetForm requests a reset link by email.
type PasswordResetForm struct {
	Form
	Email string `form:"email" validate:"required,email,max=254"`
}

func ParsePasswordResetForm(r *http.Request) *PasswordResetForm {
	return &PasswordResetForm{Email: strings.TrimSpace(value(r, "email"))}
}

func (f *PasswordResetForm) Validate() bool {
	f.check(f)
	return f.Valid()
}

// SetPasswordForm chooses a new password from a reset link.
type SetPasswordForm struct {
	Form
	NewPassword1 string `form:"new_password1" validate:"required,min=8,notnumeric"`
	NewPassword2 string `form:"new_password2" validate:"required,eqfield=NewPassword1"`
}

func ParseSetPasswordForm(r *http.Request) *SetPasswordForm {
	return &SetPasswordForm{
		NewPassword1: value(r, "new_password1"),
		NewPassword2: value(r, "new_password2"),
	}
}

func (f *SetPasswordForm) Validate() bool {
	f.check(f)
	return f.Valid()
}
