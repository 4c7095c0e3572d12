package registry

import (
	"context"
	"sync"

	"github.com/codewandler/onceform-go/core/effects"
)

// Job is the in-flight unit of work for one token.
type Job[T any] struct {
	done    chan struct{}
	once    sync.Once
	val     T
	buf     *effects.Buffer
	effects []effects.Op
}

// NewJob creates an unsettled job with an empty effects buffer.
func NewJob[T any]() *Job[T] {
	return &Job[T]{
		done: make(chan struct{}),
		buf:  effects.NewBuffer(),
	}
}

// Buffer returns the buffer the owner records side effects into.
func (j *Job[T]) Buffer() *effects.Buffer { return j.buf }

// Settle stores v, freezes the effects buffer and wakes all waiters.
// Only the first call has an effect; it reports whether it settled the job.
func (j *Job[T]) Settle(v T) bool {
	settled := false
	j.once.Do(func() {
		j.val = v
		j.effects = j.buf.Freeze()
		settled = true
		close(j.done)
	})
	return settled
}

// Done is closed once the job has settled.
func (j *Job[T]) Done() <-chan struct{} { return j.done }

// Settled reports whether the job has settled.
func (j *Job[T]) Settled() bool {
	select {
	case <-j.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the job settles or ctx is done.
func (j *Job[T]) Wait(ctx context.Context) (out T, err error) {
	select {
	case <-j.done:
		return j.val, nil
	case <-ctx.Done():
		return out, ctx.Err()
	}
}

// Effects returns the side effects recorded during execution. It is nil
// until the job has settled.
func (j *Job[T]) Effects() []effects.Op {
	if !j.Settled() {
		return nil
	}
	return j.effects
}
