package forms

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"yatube/app/models"
	"yatube/app/storage"
)

// PostForm creates or edits a post.
type PostForm struct {
	Form
	Text      string `form:"text" validate:"required,notblank"`
	Group     string `form:"group"`
	ImageName string `form:"-"`
	Image     []byte `form:"-"`

	groupID *int
}

// NewPostForm returns an empty form, or one prefilled from post.
func NewPostForm(post *models.Post) *PostForm {
	f := &PostForm{}
	if post != nil {
		f.Text = post.Text
		if post.GroupID != nil {
			f.Group = strconv.Itoa(*post.GroupID)
		}
	}
	return f
}

// ParsePostForm reads a urlencoded or multipart post submission.
func ParsePostForm(r *http.Request) (*PostForm, error) {
	f := &PostForm{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(storage.MaxImageSize); err != nil {
			return nil, fmt.Errorf("failed to parse multipart form: %w", err)
		}
		file, header, err := r.FormFile("image")
		switch {
		case err == nil:
			defer file.Close()
			data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageSize+1))
			if err != nil {
				return nil, fmt.Errorf("failed to read image: %w", err)
			}
			f.Image = data
			f.ImageName = header.Filename
		case !errors.Is(err, http.ErrMissingFile):
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
	}
	f.Text = value(r, "text")
	f.Group = strings.TrimSpace(value(r, "group"))
	return f, nil
}

// Validate checks the form; the group must be one of groups or empty.
func (f *PostForm) Validate(groups []*models.Group) bool {
	f.check(f)

	f.groupID = nil
	if f.Group != "" {
		id, err := strconv.Atoi(f.Group)
		found := false
		if err == nil {
			for _, g := range groups {
				if g.ID == id {
					found = true
					break
				}
			}
		}
		if !found {
			f.AddError("group", "Select a valid choice. That choice is not one of the available choices.")
		} else {
			f.groupID = &id
		}
	}

	if len(f.Image) > 0 {
		if len(f.Image) > storage.MaxImageSize {
			f.AddError("image", "The uploaded file is too large.")
		} else if !storage.IsImage(f.Image) {
			f.AddError("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		}
	}
	return f.Valid()
}

// GroupID returns the validated group selection.
func (f *PostForm) GroupID() *int {
	return f.groupID
}

// HasImage reports whether an image was uploaded.
func (f *PostForm) HasImage() bool {
	return len(f.Image) > 0
}

// Selected reports whether groupID is the chosen group, for rendering the select box.
func (f *PostForm) Selected(groupID int) bool {
	return f.Group == strconv.Itoa(groupID)
}

// CommentForm adds a comment to a post.
type CommentForm struct {
	Form
	Text string `form:"text" validate:"required,notblank"`
}

func ParseCommentForm(r *http.Request) *CommentForm {
	return &CommentForm{Text: value(r, "text")}
}

func (f *CommentForm) Validate() bool {
	f.check(f)
	return f.Valid()
}
