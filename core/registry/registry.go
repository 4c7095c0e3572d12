package registry

import (
	"fmt"
	"log/slog"
	"sync"
)

// Option configures a Registry.
type Option func(*config)

type config struct {
	log          *slog.Logger
	onSizeChange func(n int)
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithSizeObserver registers fn to be called with the number of in-flight
// jobs after every insert and removal. fn runs under the registry lock and
// must not block or call back into the registry.
func WithSizeObserver(fn func(n int)) Option {
	return func(c *config) {
		c.onSizeChange = fn
	}
}

// Registry maps tokens to their in-flight job.
type Registry[T any] struct {
	mu           sync.Mutex
	jobs         map[string]*Job[T]
	log          *slog.Logger
	onSizeChange func(n int)
}

// New creates an empty Registry.
func New[T any](opts ...Option) *Registry[T] {
	cfg := &config{log: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Registry[T]{
		jobs:         make(map[string]*Job[T]),
		log:          cfg.log,
		onSizeChange: cfg.onSizeChange,
	}
}

// AcquireOrCreate returns the job registered for token with owner=false, or
// calls factory, registers the job it returns and reports owner=true.
//
// The lookup, factory call and registration form a single critical section.
// factory must not block; it typically allocates the job and starts its
// execution with Run.
func (r *Registry[T]) AcquireOrCreate(token string, factory func() *Job[T]) (job *Job[T], owner bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job, ok := r.jobs[token]; ok {
		return job, false
	}

	job = factory()
	if job == nil {
		panic(fmt.Errorf("%w: factory returned nil job", ErrInvariantViolation))
	}
	r.jobs[token] = job
	r.sizeChangedLocked()
	return job, true
}

// Remove deletes the entry for token. It must be called exactly once per
// job; removing a job that is not the registered one panics with
// ErrInvariantViolation.
func (r *Registry[T]) Remove(token string, job *Job[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.jobs[token]
	if !ok || cur != job {
		r.log.Error("registry invariant violated on remove", slog.Bool("present", ok))
		panic(fmt.Errorf("%w: job for token is not the registered one", ErrInvariantViolation))
	}
	delete(r.jobs, token)
	r.sizeChangedLocked()
}

// Run executes fn in a new goroutine on behalf of job. When fn returns the
// entry for token is removed and the job is settled with fn's result, in
// that order, so a present entry always refers to an unsettled job. If fn
// panics the job is settled with the zero value before the panic continues;
// callers that need to survive panics recover inside fn.
func (r *Registry[T]) Run(token string, job *Job[T], fn func() T) {
	go func() {
		var out T
		defer func() {
			r.Remove(token, job)
			job.Settle(out)
		}()
		out = fn()
	}()
}

// Has reports whether a job is in flight for token.
func (r *Registry[T]) Has(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.jobs[token]
	return ok
}

// Len returns the number of in-flight jobs.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

func (r *Registry[T]) sizeChangedLocked() {
	if r.onSizeChange != nil {
		r.onSizeChange(len(r.jobs))
	}
}
