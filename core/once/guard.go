package once

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/codewandler/onceform-go/core/effects"
	"github.com/codewandler/onceform-go/core/registry"
	"github.com/codewandler/onceform-go/core/token"
	"github.com/codewandler/onceform-go/internal/fingerprint"
)

// Request is what a Handler sees of the incoming submission.
type Request struct {
	HTTP *http.Request
	// Cookies is the response cookie sink. Handlers must write cookies
	// through it (or SetCookie) for them to reach duplicate callers.
	Cookies effects.CookieSink
}

// SetCookie writes c through the request's cookie sink.
func (r *Request) SetCookie(c *http.Cookie) {
	if r.Cookies != nil {
		r.Cookies.SetCookie(c)
	}
}

// Handler performs a form action.
type Handler func(ctx context.Context, req *Request) (Outcome, error)

// TokenSource extracts the form token from a request. ok is false when the
// request carries no usable token; err reports a failure to find out.
type TokenSource interface {
	Token(r *http.Request) (tok string, ok bool, err error)
}

// Option configures a Guard.
type Option func(*config)

type config struct {
	registry   *registry.Registry[Outcome]
	tokens     TokenSource
	log        *slog.Logger
	metrics    Metrics
	jobTimeout time.Duration
}

// WithRegistry makes the guard use r instead of a private registry.
// Guards sharing a registry deduplicate against each other. The in-flight
// gauge belongs to whoever builds r: create it with
// registry.WithSizeObserver(m.InFlight) to report it.
func WithRegistry(r *registry.Registry[Outcome]) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithTokenSource sets how tokens are read (default: token.Transport{}).
func WithTokenSource(src TokenSource) Option {
	return func(c *config) {
		if src != nil {
			c.tokens = src
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithMetrics sets the metrics implementation (default: NopMetrics()).
func WithMetrics(m Metrics) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithJobTimeout bounds how long a handler may run before its context is
// cancelled (default: token.Lifetime). Zero disables the deadline.
func WithJobTimeout(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.jobTimeout = d
		}
	}
}

// Guard wraps handlers so that each token runs them at most once at a time.
type Guard struct {
	registry   *registry.Registry[Outcome]
	tokens     TokenSource
	log        *slog.Logger
	metrics    Metrics
	jobTimeout time.Duration
}

// New creates a Guard. Without WithRegistry it owns a fresh registry whose
// size is reported through Metrics.InFlight.
func New(opts ...Option) *Guard {
	cfg := &config{
		tokens:     token.Transport{},
		log:        slog.Default(),
		metrics:    NopMetrics(),
		jobTimeout: token.Lifetime,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.registry == nil {
		cfg.registry = registry.New[Outcome](
			registry.WithLogger(cfg.log),
			registry.WithSizeObserver(cfg.metrics.InFlight),
		)
	}
	return &Guard{
		registry:   cfg.registry,
		tokens:     cfg.tokens,
		log:        cfg.log,
		metrics:    cfg.metrics,
		jobTimeout: cfg.jobTimeout,
	}
}

// Registry returns the registry the guard coordinates through.
func (g *Guard) Registry() *registry.Registry[Outcome] { return g.registry }

// Wrap returns the guarded version of h.
//
// The guarded handler returns a non-nil error only when the outcome is a
// *HandlerError (then both values are the same pointer) or when a duplicate
// caller's ctx ends before the job settles (then the outcome is nil).
func (g *Guard) Wrap(h Handler) Handler {
	return func(ctx context.Context, req *Request) (Outcome, error) {
		var httpReq *http.Request
		if req != nil {
			httpReq = req.HTTP
		} else {
			req = &Request{}
		}

		tok, ok, err := g.tokens.Token(httpReq)
		if err != nil {
			g.log.Error("read form token", slog.Any("error", err))
			herr := &HandlerError{Cause: fmt.Errorf("%w: %w", ErrTokenSource, err)}
			return herr, herr
		}
		if !ok {
			g.metrics.TokenMissing()
			g.log.Debug("form token missing")
			return TokenMissing, nil
		}

		log := g.log.With(slog.String("token", fingerprint.Short(tok)))

		job, owner := g.registry.AcquireOrCreate(tok, func() *registry.Job[Outcome] {
			job := registry.NewJob[Outcome]()
			ownerReq := &Request{
				HTTP:    httpReq,
				Cookies: effects.WrapInto(req.Cookies, job.Buffer()),
			}
			g.metrics.JobStarted()
			g.registry.Run(tok, job, func() Outcome {
				return g.execute(ctx, log, h, ownerReq)
			})
			return job
		})

		if owner {
			log.Debug("form job started")
			// The handler writes to the owner's response from its own
			// goroutine, so the owner must not return before it settles.
			out, _ := job.Wait(context.Background())
			return result(out)
		}

		g.metrics.JobJoined()
		log.Debug("joined in-flight form job")

		out, err := job.Wait(ctx)
		if err != nil {
			log.Debug("duplicate gave up waiting", slog.Any("error", err))
			return nil, err
		}

		n := effects.Replay(job.Effects(), req.Cookies)
		g.metrics.EffectsReplayed(n)
		return result(out)
	}
}

// execute runs h once for the owner and converts every failure into a
// HandlerError. The handler context keeps the owner's values but not its
// cancellation, since duplicates depend on the result.
func (g *Guard) execute(ctx context.Context, log *slog.Logger, h Handler, req *Request) (out Outcome) {
	timer := g.metrics.JobDuration()
	defer timer.ObserveDuration()

	defer func() {
		if r := recover(); r != nil {
			log.Error("form handler panicked", slog.Any("recovered", r), slog.String("stack", string(debug.Stack())))
			out = &HandlerError{Cause: fmt.Errorf("%w: %v", ErrHandlerPanic, r)}
		}
		g.metrics.JobSettled(out.Kind())
		log.Debug("form job settled", slog.String("outcome", out.Kind()))
	}()

	ctx = context.WithoutCancel(ctx)
	if g.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.jobTimeout)
		defer cancel()
	}

	o, err := h(ctx, req)
	switch {
	case err != nil:
		log.Warn("form handler failed", slog.Any("error", err))
		return &HandlerError{Cause: err}
	case o == nil:
		return &HandlerError{Cause: ErrNilOutcome}
	}
	return o
}

func result(out Outcome) (Outcome, error) {
	if herr, ok := out.(*HandlerError); ok {
		return herr, herr
	}
	return out, nil
}
