package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"yatube/app/auth"
	"yatube/app/forms"
	"yatube/app/logger"
	"yatube/app/mail"
	"yatube/app/models"
	"yatube/app/repositories"
)

// UserService handles accounts, authentication and password resets
type UserService struct {
	users       repositories.UserRepository
	comments    repositories.CommentRepository
	follows     repositories.FollowRepository
	resetTokens repositories.ResetTokenRepository
	posts       *PostService
	mailer      mail.Mailer
	resetTTL    time.Duration
}

// NewUserService creates a new UserService
func NewUserService(deps Deps, posts *PostService) *UserService {
	ttl := deps.ResetTTL
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	return &UserService{
		users:       deps.Users,
		comments:    deps.Comments,
		follows:     deps.Follows,
		resetTokens: deps.ResetTokens,
		posts:       posts,
		mailer:      deps.Mailer,
		resetTTL:    ttl,
	}
}

// SignUp registers a user from a validated form
func (s *UserService) SignUp(form *forms.SignupForm) (*models.User, error) {
	if _, err := s.users.GetByUsername(form.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := auth.HashPassword(form.Password1)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		Username:     form.Username,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		PasswordHash: hash,
	}
	user.BeforeCreate()
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	logger.Info().Str("username", user.Username).Int("user_id", user.ID).Msg("User signed up")
	return user, nil
}

// Authenticate returns the user when password matches
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID returns a user by id
func (s *UserService) GetByID(id int) (*models.User, error) {
	return s.users.GetByID(id)
}

// GetByUsername returns a user by username
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	return s.users.GetByUsername(username)
}

// ChangePassword replaces the password after checking the old one and returns
// the updated user, whose sessions must be issued afresh.
func (s *UserService) ChangePassword(user *models.User, oldPassword, newPassword string) (*models.User, error) {
	current, err := s.users.GetByID(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !auth.CheckPassword(current.PasswordHash, oldPassword) {
		return nil, ErrInvalidCredentials
	}
	if err := s.setPassword(current, newPassword); err != nil {
		return nil, err
	}
	return current, nil
}

// RequestPasswordReset mails a reset link to every account registered with email.
// Unknown addresses are ignored so the response never reveals which emails exist.
func (s *UserService) RequestPasswordReset(email, baseURL string) error {
	users, err := s.users.FindByEmail(email)
	if err != nil {
		return fmt.Errorf("failed to look up email: %w", err)
	}
	for _, user := range users {
		token := auth.NewResetToken()
		if err := s.resetTokens.Create(token, user.ID, s.resetTTL); err != nil {
			return fmt.Errorf("failed to store reset token: %w", err)
		}
		link := fmt.Sprintf("%s/auth/reset/%s/%s/", strings.TrimRight(baseURL, "/"), auth.EncodeUID(user.ID), token)
		msg := mail.Message{
			To:      user.Email,
			Subject: "Password reset on Yatube",
			Body: fmt.Sprintf("You requested a password reset for the account %s.\n\n"+
				"Follow the link to choose a new password:\n%s\n\n"+
				"If you did not ask for this, ignore this email.\n", user.Username, link),
		}
		if s.mailer == nil {
			logger.Warn().Str("to", user.Email).Msg("No mailer configured, reset email dropped")
			continue
		}
		if err := s.mailer.Send(msg); err != nil {
			return fmt.Errorf("failed to send reset email: %w", err)
		}
	}
	return nil
}

// CheckResetToken returns the user a reset link was issued for
func (s *UserService) CheckResetToken(uidb64, token string) (*models.User, error) {
	id, err := auth.DecodeUID(uidb64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	owner, err := s.resetTokens.Get(token)
	if err != nil || owner != id {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// ResetPassword consumes the token and sets a new password. Every other link
// issued for the user dies with the old password.
func (s *UserService) ResetPassword(uidb64, token, newPassword string) error {
	user, err := s.CheckResetToken(uidb64, token)
	if err != nil {
		return err
	}
	if err := s.resetTokens.Delete(token); err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	return s.setPassword(user, newPassword)
}

// DeleteUser removes a user together with their posts, comments and follow edges
func (s *UserService) DeleteUser(username string) error {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return fmt.Errorf("user %q: %w", username, err)
	}
	if err := s.posts.DeleteByAuthor(user.ID); err != nil {
		return fmt.Errorf("failed to delete posts: %w", err)
	}
	if err := s.comments.DeleteByAuthor(user.ID); err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}
	if err := s.follows.DeleteAllFor(user.ID); err != nil {
		return fmt.Errorf("failed to delete follows: %w", err)
	}
	if err := s.resetTokens.DeleteAllFor(user.ID); err != nil {
		return fmt.Errorf("failed to revoke reset links: %w", err)
	}
	if err := s.users.Delete(user.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	logger.Info().Str("username", username).Msg("User deleted")
	return nil
}

func (s *UserService) setPassword(user *models.User, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("failed to save password: %w", err)
	}
	if err := s.resetTokens.DeleteAllFor(user.ID); err != nil {
		return fmt.Errorf("failed to revoke reset links: %w", err)
	}
	return nil
}
