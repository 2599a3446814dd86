package services

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"yatube/app/auth"
	"yatube/app/cache"
	"yatube/app/forms"
	"yatube/app/mail"
	"yatube/app/models"
	"yatube/app/repositories/mock"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	auth.BcryptCost = bcrypt.MinCost
}

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

type memoryImages struct {
	mu    sync.Mutex
	files map[string][]byte
	seq   int
}

func (m *memoryImages) SaveImage(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	name := fmt.Sprintf("posts/%d-%s", m.seq, filename)
	m.files[name] = data
	return name, nil
}

func (m *memoryImages) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, name)
	return nil
}

func (m *memoryImages) has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[name]
	return ok
}

type countingRecorder struct {
	mu       sync.Mutex
	posts    int
	comments int
	follows  map[string]int
}

func (c *countingRecorder) PostCreated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.posts++
}

func (c *countingRecorder) CommentCreated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.comments++
}

func (c *countingRecorder) Followed(action string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.follows[action]++
}

type testEnv struct {
	*Services
	repos   *mock.Repositories
	images  *memoryImages
	outbox  *mail.Outbox
	metrics *countingRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	indexCache, err := cache.New[*PostPage](cache.DefaultTTL)
	require.NoError(t, err)
	t.Cleanup(indexCache.Close)

	env := &testEnv{
		repos:   mock.NewRepositories(),
		images:  &memoryImages{files: map[string][]byte{}},
		outbox:  &mail.Outbox{},
		metrics: &countingRecorder{follows: map[string]int{}},
	}
	env.Services = New(Deps{
		Users:       env.repos.Users,
		Groups:      env.repos.Groups,
		Posts:       env.repos.Posts,
		Comments:    env.repos.Comments,
		Follows:     env.repos.Follows,
		ResetTokens: env.repos.ResetTokens,
		Images:      env.images,
		IndexCache:  indexCache,
		Mailer:      env.outbox,
		Metrics:     env.metrics,
		ResetTTL:    time.Hour,
	})
	return env
}

func (e *testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := e.Users.SignUp(&forms.SignupForm{
		Username:  username,
		Email:     username + "@example.com",
		Password1: "test-password",
		Password2: "test-password",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) group(t *testing.T, slug string) *models.Group {
	t.Helper()
	group, err := e.Groups.Create(slug, "Group "+slug, "")
	require.NoError(t, err)
	return group
}

// postForm builds a validated post form the way a controller would.
func (e *testEnv) postForm(t *testing.T, text string, group *models.Group, image []byte) *forms.PostForm {
	t.Helper()
	values := url.Values{"text": {text}}
	if group != nil {
		values.Set("group", fmt.Sprint(group.ID))
	}
	req, err := http.NewRequest(http.MethodPost, "/create/", strings.NewReader(values.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	form, err := forms.ParsePostForm(req)
	require.NoError(t, err)
	if image != nil {
		form.Image = image
		form.ImageName = "small.gif"
	}
	groups, err := e.Groups.List()
	require.NoError(t, err)
	require.True(t, form.Validate(groups), form.Errors)
	return form
}

func (e *testEnv) post(t *testing.T, author *models.User, text string, group *models.Group) *models.Post {
	t.Helper()
	post, err := e.Posts.Create(author, e.postForm(t, text, group, nil))
	require.NoError(t, err)
	return post
}
