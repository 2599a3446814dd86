package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"yatube/app/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxImageSize caps an uploaded image.
const MaxImageSize = 10 << 20

// PostsDir is the media subdirectory holding post images.
const PostsDir = "posts"

var (
	ErrNotImage = errors.New("uploaded file is not an image")
	ErrTooLarge = errors.New("uploaded file is too large")
)

// ImageStorage saves and removes uploaded images
type ImageStorage interface {
	SaveImage(r io.Reader, filename string) (string, error)
	Delete(name string) error
}

// LocalStorage keeps uploads under a media root on the local filesystem.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates the media root when missing.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if err := os.MkdirAll(filepath.Join(root, PostsDir), 0755); err != nil {
		logger.Error().Err(err).Str("path", root).Msg("Failed to create media directory")
		return nil, fmt.Errorf("failed to create media directory %s: %w", root, err)
	}
	return &LocalStorage{root: root}, nil
}

// Root returns the media root directory.
func (s *LocalStorage) Root() string {
	return s.root
}

// SaveImage stores r under posts/<uuid><ext> and returns that media-relative
// name. Content whose detected type is not image/* is rejected.
func (s *LocalStorage) SaveImage(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxImageSize {
		return "", ErrTooLarge
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		logger.Warn().Str("filename", filename).Str("mime", mtype.String()).Msg("Rejected upload")
		return "", ErrNotImage
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = mtype.Extension()
	}
	name := path.Join(PostsDir, uuid.New().String()+ext)
	dst := filepath.Join(s.root, filepath.FromSlash(name))

	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	logger.Info().Str("filename", filename).Str("saved_as", name).Msg("Image saved")
	return name, nil
}

// Delete removes a stored image. Missing files are not an error.
func (s *LocalStorage) Delete(name string) error {
	if name == "" {
		return nil
	}
	clean := path.Clean("/" + name)[1:]
	if clean == "" || clean == PostsDir {
		return fmt.Errorf("invalid media path: %s", name)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// IsImage reports whether data sniffs as an image.
func IsImage(data []byte) bool {
	return strings.HasPrefix(mimetype.Detect(data).String(), "image/")
}
