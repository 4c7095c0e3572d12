package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	promadapter "github.com/codewandler/onceform-go/adapters/prometheus"
	"github.com/codewandler/onceform-go/core/once"
	"github.com/codewandler/onceform-go/core/token"
)

const lastSubmissionCookie = "last_submission"

const formPage = `<!doctype html>
<form method="post">
  <textarea name="message"></textarea>
  <button type="submit">Send</button>
</form>
`

type app struct {
	log       *slog.Logger
	tokens    token.Transport
	guard     *once.Guard
	metrics   *prometheus.Registry
	work      func(ctx context.Context) error
	submitted atomic.Int64
}

func newApp(cfg Config, log *slog.Logger, ledger *token.Ledger) *app {
	reg := prometheus.NewRegistry()
	tokens := token.Transport{Secure: cfg.SecureCookies, Ledger: ledger, Log: log}

	a := &app{
		log:     log,
		tokens:  tokens,
		metrics: reg,
		guard: once.New(
			once.WithTokenSource(tokens),
			once.WithLogger(log),
			once.WithMetrics(promadapter.NewOnceMetrics(reg)),
			once.WithJobTimeout(cfg.JobTimeout),
		),
	}
	a.work = func(ctx context.Context) error {
		select {
		case <-time.After(cfg.SubmitDelay):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return a
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{}))

	r.Get("/", a.renderForm)
	r.Method(http.MethodPost, "/", a.guard.HTTPHandler(a.submit, nil))
	r.Get("/thanks", a.thanks)
	return r
}

func (a *app) renderForm(w http.ResponseWriter, r *http.Request) {
	if _, err := a.tokens.Issue(w, r); err != nil {
		a.log.Error("issue form token", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprint(w, formPage)
}

// submit is the form action. It runs once per token; the cookie it sets is
// replayed to duplicate submissions.
func (a *app) submit(ctx context.Context, req *once.Request) (once.Outcome, error) {
	message := strings.TrimSpace(req.HTTP.PostFormValue("message"))
	if message == "" {
		return once.Fail(http.StatusUnprocessableEntity, "message is required"), nil
	}

	if err := a.work(ctx); err != nil {
		return nil, fmt.Errorf("store submission: %w", err)
	}

	n := a.submitted.Add(1)
	req.SetCookie(&http.Cookie{
		Name:     lastSubmissionCookie,
		Value:    strconv.FormatInt(n, 10),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	a.log.Info("submission stored", slog.Int64("n", n), slog.Int("length", len(message)))
	return once.Redirect("/thanks"), nil
}

func (a *app) thanks(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(lastSubmissionCookie)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	_, _ = fmt.Fprintf(w, "submission #%s received\n", c.Value)
}

func (a *app) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.log.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("took", time.Since(start)),
		)
	})
}
