package routes

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"yatube/app/auth"
	"yatube/app/cache"
	"yatube/app/forms"
	"yatube/app/mail"
	"yatube/app/metrics"
	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/services"
	"yatube/app/storage"
	"yatube/app/views"

	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/mux"
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

type testApp struct {
	router   *mux.Router
	repo     *repositories.Repository
	svc      *services.Services
	sessions *auth.SessionManager
	outbox   *mail.Outbox
	metrics  *metrics.Metrics
	mediaDir string
}

func setupTestDB(t *testing.T) *badger.DB {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	repo := repositories.NewRepositoryWithDB(setupTestDB(t))

	mediaDir := t.TempDir()
	images, err := storage.NewLocalStorage(mediaDir)
	require.NoError(t, err)
	indexCache, err := cache.New[*services.PostPage](cache.DefaultTTL)
	require.NoError(t, err)
	t.Cleanup(indexCache.Close)
	renderer, err := views.NewTemplateRenderer()
	require.NoError(t, err)

	app := &testApp{
		repo:     repo,
		sessions: auth.NewSessionManager(auth.SessionConfig{Secret: "test-secret", TTL: time.Hour}),
		outbox:   &mail.Outbox{},
		metrics:  metrics.New(),
		mediaDir: mediaDir,
	}
	app.svc = services.New(services.Deps{
		Users:       repo.Users,
		Groups:      repo.Groups,
		Posts:       repo.Posts,
		Comments:    repo.Comments,
		Follows:     repo.Follows,
		ResetTokens: repo.ResetTokens,
		Images:      images,
		IndexCache:  indexCache,
		Mailer:      app.outbox,
		Metrics:     app.metrics,
	})
	app.router = SetupRoutes(Deps{
		Services: app.svc,
		Renderer: renderer,
		Sessions: app.sessions,
		Metrics:  app.metrics,
		MediaDir: mediaDir,
		BaseURL:  "http://testserver",
	})
	return app
}

func (a *testApp) user(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := a.svc.Users.SignUp(&forms.SignupForm{
		Username:  username,
		Email:     username + "@example.com",
		Password1: "test-password",
		Password2: "test-password",
	})
	require.NoError(t, err)
	return user
}

func (a *testApp) group(t *testing.T, slug string) *models.Group {
	t.Helper()
	group, err := a.svc.Groups.Create(slug, "Test group", "Test description")
	require.NoError(t, err)
	return group
}

// insertPost writes a post straight to storage, bypassing the service layer.
func (a *testApp) insertPost(t *testing.T, author *models.User, text string, group *models.Group) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID}
	post.SetGroup(group)
	post.BeforeCreate()
	require.NoError(t, a.repo.Posts.Create(post))
	return post
}

// serve runs req through the router, logged in as user unless user is nil.
func (a *testApp) serve(t *testing.T, req *http.Request, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	if user != nil {
		token, err := a.sessions.Issue(user)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: a.sessions.CookieName(), Value: token})
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(t *testing.T, path string, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	return a.serve(t, httptest.NewRequest(http.MethodGet, path, nil), user)
}

func (a *testApp) postForm(t *testing.T, path string, values url.Values, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.serve(t, req, user)
}

func (a *testApp) postMultipart(t *testing.T, path string, values url.Values, image []byte, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, vals := range values {
		for _, v := range vals {
			require.NoError(t, writer.WriteField(key, v))
		}
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "small.gif")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return a.serve(t, req, user)
}
