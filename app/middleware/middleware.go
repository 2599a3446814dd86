package middleware

import (
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"yatube/app/auth"
	"yatube/app/logger"
	"yatube/app/models"

	"github.com/gorilla/mux"
)

// LoginURL is where anonymous users are sent by RequireLogin
const LoginURL = "/auth/login/"

// statusRecorder remembers the status code written by the wrapped handler
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

func record(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// Logger logs information about each request
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := record(w)
		next.ServeHTTP(rec, r)

		event := logger.Info()
		if rec.status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("Request")
	})
}

// Recoverer recovers from panics, logs them and answers with fallback
func Recoverer(fallback http.Handler) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := record(w)
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error().
						Interface("panic", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Bytes("stack", debug.Stack()).
						Msg("Recovered from panic")
					if rec.wroteHeader {
						return
					}
					if fallback == nil {
						http.Error(rec, "Internal Server Error", http.StatusInternalServerError)
						return
					}
					fallback.ServeHTTP(rec, r)
				}
			}()
			next.ServeHTTP(rec, r)
		})
	}
}

// ContentTypeJSON sets the Content-Type header to application/json for API routes
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api") {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequestObserver receives one observation per served request
type RequestObserver interface {
	ObserveRequest(method, route string, code int, elapsed time.Duration)
}

// Metrics reports each request under its route template, so /posts/1/ and
// /posts/2/ share one series
func Metrics(observer RequestObserver) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := record(w)
			next.ServeHTTP(rec, r)
			observer.ObserveRequest(r.Method, routeName(r), rec.status, time.Since(start))
		})
	}
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

// UserLoader finds the account a session belongs to
type UserLoader interface {
	GetByID(id int) (*models.User, error)
}

// Session puts the user of a valid session cookie into the request context.
// Missing, invalid or stale sessions leave the request anonymous.
func Session(sessions *auth.SessionManager, users UserLoader) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.UserFromContext(r.Context()) != nil {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := sessions.FromRequest(r)
			if err != nil {
				if err != auth.ErrNoSession {
					logger.Debug().Err(err).Msg("Ignoring session cookie")
					sessions.Logout(w)
				}
				next.ServeHTTP(w, r)
				return
			}
			user, err := users.GetByID(claims.UserID)
			if err != nil || !sessions.Matches(claims, user) {
				logger.Debug().Int("user_id", claims.UserID).Msg("Session user is gone")
				sessions.Logout(w)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// RequireLogin redirects anonymous users to the login page, remembering where
// they were going
func RequireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.UserFromContext(r.Context()) == nil {
			http.Redirect(w, r, LoginRedirect(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next(w, r)
	}
}

// LoginRedirect returns the login URL that continues to next
func LoginRedirect(next string) string {
	return LoginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}
