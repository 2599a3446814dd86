package services

import (
	"errors"
	"fmt"

	"yatube/app/models"
	"yatube/app/repositories"
)

// FollowService manages subscriptions between users
type FollowService struct {
	users   repositories.UserRepository
	follows repositories.FollowRepository
	metrics Recorder
}

// NewFollowService creates a new FollowService
func NewFollowService(deps Deps) *FollowService {
	return &FollowService{users: deps.Users, follows: deps.Follows, metrics: deps.recorder()}
}

// Follow subscribes user to the author named username. Following yourself or
// an author you already follow does nothing.
func (s *FollowService) Follow(user *models.User, username string) error {
	author, err := s.users.GetByUsername(username)
	if err != nil {
		return fmt.Errorf("user %q: %w", username, err)
	}
	if author.ID == user.ID {
		return nil
	}

	follow := &models.Follow{UserID: user.ID, AuthorID: author.ID}
	follow.BeforeCreate()
	if err := follow.Validate(); err != nil {
		return fmt.Errorf("invalid follow: %w", err)
	}
	if err := s.follows.Create(follow); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("failed to follow: %w", err)
	}
	s.metrics.Followed("follow")
	return nil
}

// Unfollow removes the subscription if there is one
func (s *FollowService) Unfollow(user *models.User, username string) error {
	author, err := s.users.GetByUsername(username)
	if err != nil {
		return fmt.Errorf("user %q: %w", username, err)
	}
	if err := s.follows.Delete(user.ID, author.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to unfollow: %w", err)
	}
	s.metrics.Followed("unfollow")
	return nil
}

// IsFollowing reports whether user follows author; anonymous users follow nobody
func (s *FollowService) IsFollowing(user, author *models.User) (bool, error) {
	if user == nil || author == nil {
		return false, nil
	}
	return s.follows.Exists(user.ID, author.ID)
}

func (s *FollowService) FollowerCount(authorID int) (int, error) {
	ids, err := s.follows.ListFollowerIDs(authorID)
	return len(ids), err
}

func (s *FollowService) FollowingCount(userID int) (int, error) {
	ids, err := s.follows.ListAuthorIDs(userID)
	return len(ids), err
}
