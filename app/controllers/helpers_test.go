package controllers

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
	"yatube/app/middleware"
	"yatube/app/models"
	"yatube/app/repositories"
	"yatube/app/repositories/mock"
	"yatube/app/services"
	"yatube/app/storage"
	viewsmock "yatube/app/views/mock"

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

type fixture struct {
	renderer *viewsmock.Renderer
	repos    *mock.Repositories
	svc      *services.Services
	sessions *auth.SessionManager
	outbox   *mail.Outbox
	router   *mux.Router
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	images, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	indexCache, err := cache.New[*services.PostPage](cache.DefaultTTL)
	require.NoError(t, err)
	t.Cleanup(indexCache.Close)

	f := &fixture{
		renderer: viewsmock.NewRenderer(),
		repos:    mock.NewRepositories(),
		sessions: auth.NewSessionManager(auth.SessionConfig{Secret: "test-secret", TTL: time.Hour}),
		outbox:   &mail.Outbox{},
	}
	f.svc = services.New(services.Deps{
		Users:       f.repos.Users,
		Groups:      f.repos.Groups,
		Posts:       f.repos.Posts,
		Comments:    f.repos.Comments,
		Follows:     f.repos.Follows,
		ResetTokens: f.repos.ResetTokens,
		Images:      images,
		IndexCache:  indexCache,
		Mailer:      f.outbox,
	})
	f.router = setupRouter(f)
	return f
}

// setupRouter registers the controllers the way the application does, minus
// the session middleware; tests put the user straight into the context.
func setupRouter(f *fixture) *mux.Router {
	postController := NewPostController(f.renderer, f.svc)
	commentController := NewCommentController(f.renderer, f.svc)
	followController := NewFollowController(f.renderer, f.svc)
	authController := NewAuthController(f.renderer, f.svc, f.sessions, "http://testserver")
	pageController := NewPageController(f.renderer)
	login := middleware.RequireLogin

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(pageController.NotFound)
	router.HandleFunc("/", postController.Index).Methods("GET")
	router.HandleFunc("/group/{slug}/", postController.GroupPosts).Methods("GET")
	router.HandleFunc("/profile/{username}/", postController.Profile).Methods("GET")
	router.HandleFunc("/profile/{username}/follow/", login(followController.Follow)).Methods("GET")
	router.HandleFunc("/profile/{username}/unfollow/", login(followController.Unfollow)).Methods("GET")
	router.HandleFunc("/follow/", login(followController.Index)).Methods("GET")
	router.HandleFunc("/create/", login(postController.Create)).Methods("GET", "POST")
	router.HandleFunc("/posts/{id:[0-9]+}/", postController.Show).Methods("GET")
	router.HandleFunc("/posts/{id:[0-9]+}/edit/", login(postController.Edit)).Methods("GET", "POST")
	router.HandleFunc("/posts/{id:[0-9]+}/comment/", login(commentController.Create)).Methods("GET", "POST")
	router.HandleFunc("/auth/signup/", authController.SignUp).Methods("GET", "POST")
	router.HandleFunc("/auth/login/", authController.Login).Methods("GET", "POST")
	router.HandleFunc("/auth/logout/", authController.Logout).Methods("GET")
	router.HandleFunc("/auth/password_change/", login(authController.PasswordChange)).Methods("GET", "POST")
	router.HandleFunc("/auth/password_change/done/", login(authController.PasswordChangeDone)).Methods("GET")
	router.HandleFunc("/auth/password_reset/", authController.PasswordReset).Methods("GET", "POST")
	router.HandleFunc("/auth/password_reset/done/", authController.PasswordResetDone).Methods("GET")
	router.HandleFunc("/auth/reset/done/", authController.PasswordResetComplete).Methods("GET")
	router.HandleFunc("/auth/reset/{uidb64}/{token}/", authController.PasswordResetConfirm).Methods("GET", "POST")
	router.HandleFunc("/about/author/", pageController.Author).Methods("GET")
	router.HandleFunc("/about/tech/", pageController.Tech).Methods("GET")
	router.HandleFunc("/api/posts", postController.Index).Methods("GET")
	router.HandleFunc("/api/posts/{id:[0-9]+}", postController.Show).Methods("GET")
	router.HandleFunc("/api/posts/{id:[0-9]+}/comments", commentController.Index).Methods("GET")
	return router
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := f.svc.Users.SignUp(&forms.SignupForm{
		Username:  username,
		Email:     username + "@example.com",
		Password1: "test-password",
		Password2: "test-password",
	})
	require.NoError(t, err)
	return user
}

func (f *fixture) group(t *testing.T, slug string) *models.Group {
	t.Helper()
	group, err := f.svc.Groups.Create(slug, "Test group", "Test description")
	require.NoError(t, err)
	return group
}

func (f *fixture) post(t *testing.T, author *models.User, text string, group *models.Group) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		post.SetGroup(group)
	}
	post.BeforeCreate()
	require.NoError(t, f.repos.Posts.Create(post))
	f.svc.Posts.ClearCache()
	return post
}

// do serves a request as user; a nil user is anonymous.
func (f *fixture) do(req *http.Request, user *models.User) *httptest.ResponseRecorder {
	if user != nil {
		req = req.WithContext(auth.WithUser(req.Context(), user))
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) get(path string, user *models.User) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, path, nil), user)
}

func (f *fixture) postForm(path string, values url.Values, user *models.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(req, user)
}

func multipartRequest(t *testing.T, path string, values url.Values, image []byte) *http.Request {
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
	return req
}

var allPosts = repositories.PostFilter{}
