package routes

import (
	"net/http"

	"yatube/app/auth"
	"yatube/app/controllers"
	"yatube/app/metrics"
	"yatube/app/middleware"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/mux"
)

// Deps is everything the router is built from. Metrics and MediaDir are optional.
type Deps struct {
	Services *services.Services
	Renderer views.Renderer
	Sessions *auth.SessionManager
	Metrics  *metrics.Metrics
	MediaDir string
	BaseURL  string
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Deps) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)

	postController := controllers.NewPostController(deps.Renderer, deps.Services)
	commentController := controllers.NewCommentController(deps.Renderer, deps.Services)
	followController := controllers.NewFollowController(deps.Renderer, deps.Services)
	authController := controllers.NewAuthController(deps.Renderer, deps.Services, deps.Sessions, deps.BaseURL)
	pageController := controllers.NewPageController(deps.Renderer)

	session := middleware.Session(deps.Sessions, deps.Services.Users)
	recoverer := middleware.Recoverer(session(http.HandlerFunc(pageController.ServerError)))

	// Apply global middleware
	router.Use(recoverer)
	router.Use(middleware.Logger)
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}
	router.Use(session)

	// Unmatched requests skip router middleware, so the 404 handler is wrapped by hand
	router.NotFoundHandler = recoverer(middleware.Logger(session(http.HandlerFunc(pageController.NotFound))))

	// Static files and uploads
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", views.StaticHandler()))
	if deps.MediaDir != "" {
		router.PathPrefix("/media/").Handler(http.StripPrefix("/media/", http.FileServer(http.Dir(deps.MediaDir))))
	}
	if deps.Metrics != nil {
		router.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
	}

	login := middleware.RequireLogin

	// Posts
	router.HandleFunc("/", postController.Index).Methods("GET")
	router.HandleFunc("/group/{slug}/", postController.GroupPosts).Methods("GET")
	router.HandleFunc("/profile/{username}/", postController.Profile).Methods("GET")
	router.HandleFunc("/profile/{username}/follow/", login(followController.Follow)).Methods("GET")
	router.HandleFunc("/profile/{username}/unfollow/", login(followController.Unfollow)).Methods("GET")
	router.HandleFunc("/follow/", login(followController.Index)).Methods("GET")
	router.HandleFunc("/create/", login(postController.Create)).Methods("GET", "POST")

	posts := router.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("/{id:[0-9]+}/", postController.Show).Methods("GET")
	posts.HandleFunc("/{id:[0-9]+}/edit/", login(postController.Edit)).Methods("GET", "POST")
	posts.HandleFunc("/{id:[0-9]+}/comment/", login(commentController.Create)).Methods("GET", "POST")

	// Accounts
	users := router.PathPrefix("/auth").Subrouter()
	users.HandleFunc("/signup/", authController.SignUp).Methods("GET", "POST")
	users.HandleFunc("/login/", authController.Login).Methods("GET", "POST")
	users.HandleFunc("/logout/", authController.Logout).Methods("GET", "POST")
	users.HandleFunc("/password_change/", login(authController.PasswordChange)).Methods("GET", "POST")
	users.HandleFunc("/password_change/done/", login(authController.PasswordChangeDone)).Methods("GET")
	users.HandleFunc("/password_reset/", authController.PasswordReset).Methods("GET", "POST")
	users.HandleFunc("/password_reset/done/", authController.PasswordResetDone).Methods("GET")
	users.HandleFunc("/reset/done/", authController.PasswordResetComplete).Methods("GET")
	users.HandleFunc("/reset/{uidb64}/{token}/", authController.PasswordResetConfirm).Methods("GET", "POST")

	// About
	router.HandleFunc("/about/author/", pageController.Author).Methods("GET")
	router.HandleFunc("/about/tech/", pageController.Tech).Methods("GET")

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	apiPosts := api.PathPrefix("/posts").Subrouter()
	apiPosts.HandleFunc("", postController.Index).Methods("GET")
	apiPosts.HandleFunc("/{id:[0-9]+}", postController.Show).Methods("GET")
	apiPosts.HandleFunc("/{id:[0-9]+}/comments", commentController.Index).Methods("GET")

	return router
}
