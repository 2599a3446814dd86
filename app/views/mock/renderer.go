package mock

import (
	"fmt"
	"net/http"
	"sync"

	"yatube/app/views"
)

// Call is one recorded Render invocation.
type Call struct {
	Status  int
	Name    string
	Context views.Context
}

// Renderer records what would have been rendered and writes a short marker body.
type Renderer struct {
	mu    sync.Mutex
	calls []Call
}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(w http.ResponseWriter, status int, name string, ctx views.Context) error {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Status: status, Name: name, Context: ctx})
	r.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := fmt.Fprintf(w, "<!-- %s -->", name)
	return err
}

// Calls returns every recorded render.
func (r *Renderer) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Last returns the most recent render, or an empty Call when nothing rendered.
func (r *Renderer) Last() Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Call{}
	}
	return r.calls[len(r.calls)-1]
}

// Reset forgets recorded calls.
func (r *Renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
