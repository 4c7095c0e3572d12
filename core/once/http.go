package once

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/codewandler/onceform-go/core/effects"
)

// Renderer writes an outcome to the response.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, out Outcome)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(w http.ResponseWriter, r *http.Request, out Outcome)

func (f RendererFunc) Render(w http.ResponseWriter, r *http.Request, out Outcome) { f(w, r, out) }

// JSONRenderer renders outcomes as JSON, and redirects as HTTP redirects.
type JSONRenderer struct{}

func (JSONRenderer) Render(w http.ResponseWriter, r *http.Request, out Outcome) {
	switch o := out.(type) {
	case Success:
		if o.Payload == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, o.Payload)
	case ValidationFailure:
		writeJSON(w, o.Status, o.Payload)
	case RedirectSignal:
		http.Redirect(w, r, o.Location, o.Status)
	default:
		writeJSON(w, http.StatusInternalServerError, Message{Message: "internal error"})
	}
}

// HTTPHandler serves h guarded by g. Cookies written by the handler go to
// the response of the owning request and are replayed onto every duplicate
// before render is called. A nil render uses JSONRenderer.
func (g *Guard) HTTPHandler(h Handler, render Renderer) http.Handler {
	guarded := g.Wrap(h)
	if render == nil {
		render = JSONRenderer{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out, err := guarded(r.Context(), &Request{HTTP: r, Cookies: effects.Writer(w)})
		if out == nil {
			// the client went away while waiting on a duplicate
			g.log.Debug("form request abandoned", slog.Any("error", err))
			return
		}
		render.Render(w, r, out)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
