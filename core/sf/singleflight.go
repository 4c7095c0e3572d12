package sf

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Group deduplicates concurrent function calls with the same key.
type Group[T any] struct {
	group singleflight.Group
}

// New creates a new Group for type T.
func New[T any]() *Group[T] {
	return &Group[T]{}
}

// Do executes fn for key unless a call for key is already in flight, in
// which case it waits for that call and returns its result. fn receives a
// context detached from the caller's cancellation since its result may be
// shared with other callers.
func (g *Group[T]) Do(ctx context.Context, key string, fn func(ctx context.Context) (T, error)) (out T, err error) {
	callCtx := context.WithoutCancel(ctx)
	ch := g.group.DoChan(key, func() (any, error) {
		return fn(callCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return out, res.Err
		}
		out, _ = res.Val.(T)
		return out, nil
	case <-ctx.Done():
		return out, ctx.Err()
	}
}

// Forget drops key so the next Do executes fn even if a call is in flight.
func (g *Group[T]) Forget(key string) {
	g.group.Forget(key)
}
