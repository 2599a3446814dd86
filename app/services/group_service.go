package services

import (
	"errors"
	"fmt"
	"strings"

	"yatube/app/models"
	"yatube/app/repositories"
)

// GroupService manages groups
type GroupService struct {
	groups      repositories.GroupRepository
	posts       repositories.PostRepository
	postService *PostService
}

// NewGroupService creates a new GroupService
func NewGroupService(deps Deps, posts *PostService) *GroupService {
	return &GroupService{groups: deps.Groups, posts: deps.Posts, postService: posts}
}

// Create adds a group
func (s *GroupService) Create(slug, title, description string) (*models.Group, error) {
	group := &models.Group{
		Slug:        strings.TrimSpace(slug),
		Title:       strings.TrimSpace(title),
		Description: description,
	}
	if err := group.Validate(); err != nil {
		return nil, fmt.Errorf("invalid group: %w", err)
	}
	if err := s.groups.Create(group); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

func (s *GroupService) GetBySlug(slug string) (*models.Group, error) {
	return s.groups.GetBySlug(slug)
}

// List returns every group ordered by title
func (s *GroupService) List() ([]*models.Group, error) {
	return s.groups.List()
}

// Delete removes a group; its posts stay but lose their group
func (s *GroupService) Delete(slug string) error {
	group, err := s.groups.GetBySlug(slug)
	if err != nil {
		return fmt.Errorf("group %q: %w", slug, err)
	}
	if err := s.posts.ClearGroup(group.ID); err != nil {
		return fmt.Errorf("failed to detach posts: %w", err)
	}
	if err := s.groups.Delete(group.ID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	s.postService.ClearCache()
	return nil
}
