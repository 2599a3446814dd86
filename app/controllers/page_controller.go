package controllers

import (
	"net/http"

	"yatube/app/views"
)

// PageController serves the static about pages and the error pages
type PageController struct {
	Controller
}

func NewPageController(renderer views.Renderer) *PageController {
	return &PageController{Controller: Controller{renderer: renderer}}
}

func (pc *PageController) Author(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, http.StatusOK, "about/author.html", nil)
}

func (pc *PageController) Tech(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, http.StatusOK, "about/tech.html", nil)
}

// NotFound answers unknown routes
func (pc *PageController) NotFound(w http.ResponseWriter, r *http.Request) {
	pc.notFound(w, r)
}

// ServerError answers requests that panicked
func (pc *PageController) ServerError(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		sendError(w, r, "Internal server error", http.StatusInternalServerError)
		return
	}
	pc.render(w, r, http.StatusInternalServerError, "core/500.html", nil)
}
