package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"yatube/app/auth"
	"yatube/app/logger"
	"yatube/app/repositories"
	"yatube/app/views"

	"github.com/gorilla/mux"
)

// Controller holds what every controller needs to answer a request
type Controller struct {
	renderer views.Renderer
}

// render writes a page with the current user added to its context
func (c *Controller) render(w http.ResponseWriter, r *http.Request, status int, name string, ctx views.Context) {
	if ctx == nil {
		ctx = views.Context{}
	}
	ctx["user"] = auth.UserFromContext(r.Context())
	if err := c.renderer.Render(w, status, name, ctx); err != nil {
		logger.Error().Err(err).Str("template", name).Str("path", r.URL.Path).Msg("Template error")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (c *Controller) notFound(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		sendError(w, r, "Not found", http.StatusNotFound)
		return
	}
	c.render(w, r, http.StatusNotFound, "core/404.html", views.Context{"path": r.URL.Path})
}

func (c *Controller) serverError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Request failed")
	if isAPI(r) {
		sendError(w, r, "Internal server error", http.StatusInternalServerError)
		return
	}
	c.render(w, r, http.StatusInternalServerError, "core/500.html", nil)
}

// fail answers with 404 for missing objects and 500 for everything else
func (c *Controller) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		c.notFound(w, r)
		return
	}
	c.serverError(w, r, err)
}

// isAPI reports whether the client wants JSON
func isAPI(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json" || strings.HasPrefix(r.URL.Path, "/api")
}

// pathID reads a numeric route variable
func pathID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusFound)
}

func postURL(id int) string {
	return "/posts/" + strconv.Itoa(id) + "/"
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if isAPI(r) {
		sendJSON(w, status, map[string]string{"error": message})
		return
	}
	http.Error(w, message, status)
}
