package services

import (
	"fmt"

	"yatube/app/models"
	"yatube/app/repositories"
)

// CommentService handles comments on posts
type CommentService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	metrics  Recorder
}

// NewCommentService creates a new CommentService
func NewCommentService(deps Deps) *CommentService {
	return &CommentService{posts: deps.Posts, comments: deps.Comments, metrics: deps.recorder()}
}

// Add comments on postID as author
func (s *CommentService) Add(author *models.User, postID int, text string) (*models.Comment, error) {
	post, err := s.posts.GetByID(postID)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", postID, err)
	}

	comment := &models.Comment{AuthorID: author.ID, Text: text}
	if err := comment.SetPost(post); err != nil {
		return nil, err
	}
	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return nil, fmt.Errorf("invalid comment: %w", err)
	}

	if err := s.comments.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	s.metrics.CommentCreated()
	comment.Author = author
	return comment, nil
}

// ListByPost returns the comments under a post, oldest first
func (s *CommentService) ListByPost(postID int) ([]*models.Comment, error) {
	return s.comments.ListByPost(postID)
}
