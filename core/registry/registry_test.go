package registry

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/onceform-go/core/effects"
)

func TestRegistry_AcquireOrCreate_SingleOwner(t *testing.T) {
	r := New[int]()

	var owners atomic.Int32
	var factoryCalls atomic.Int32
	jobs := make([]*Job[int], 100)

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			job, owner := r.AcquireOrCreate("abc123", func() *Job[int] {
				factoryCalls.Add(1)
				return NewJob[int]()
			})
			if owner {
				owners.Add(1)
			}
			jobs[i] = job
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, int32(1), owners.Load())
	require.Equal(t, int32(1), factoryCalls.Load())
	for _, j := range jobs {
		require.Same(t, jobs[0], j)
	}
	require.True(t, r.Has("abc123"))
	require.Equal(t, 1, r.Len())
}

func TestRegistry_Run_RemovesThenSettles(t *testing.T) {
	r := New[string]()
	release := make(chan struct{})

	job, owner := r.AcquireOrCreate("t1", func() *Job[string] {
		j := NewJob[string]()
		r.Run("t1", j, func() string {
			<-release
			return "done"
		})
		return j
	})
	require.True(t, owner)
	require.True(t, r.Has("t1"))
	require.False(t, job.Settled())

	close(release)
	v, err := job.Wait(t.Context())
	require.NoError(t, err)
	require.Equal(t, "done", v)
	require.False(t, r.Has("t1"))
	require.Zero(t, r.Len())
}

func TestRegistry_ExecutionsMatchOwners(t *testing.T) {
	r := New[int]()
	var owners, executions atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			job, owner := r.AcquireOrCreate("hot", func() *Job[int] {
				j := NewJob[int]()
				r.Run("hot", j, func() int { return int(executions.Add(1)) })
				return j
			})
			if owner {
				owners.Add(1)
			}
			_, err := job.Wait(context.Background())
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, owners.Load(), executions.Load())
	require.Zero(t, r.Len())
}

func TestRegistry_Run_NewJobAfterSettlement(t *testing.T) {
	r := New[int]()
	var calls atomic.Int32

	run := func() (*Job[int], bool) {
		return r.AcquireOrCreate("reuse", func() *Job[int] {
			j := NewJob[int]()
			r.Run("reuse", j, func() int { return int(calls.Add(1)) })
			return j
		})
	}

	j1, owner1 := run()
	v1, _ := j1.Wait(t.Context())
	j2, owner2 := run()
	v2, _ := j2.Wait(t.Context())

	require.True(t, owner1)
	require.True(t, owner2)
	require.NotSame(t, j1, j2)
	require.Equal(t, 1, v1)
	require.Equal(t, 2, v2)
}

func TestRegistry_Remove_InvariantViolation(t *testing.T) {
	r := New[int]()
	job, _ := r.AcquireOrCreate("t", func() *Job[int] { return NewJob[int]() })

	require.PanicsWithError(t, "registry invariant violation: job for token is not the registered one", func() {
		r.Remove("t", NewJob[int]())
	})

	r.Remove("t", job)
	require.Panics(t, func() { r.Remove("t", job) })
}

func TestRegistry_NilFactory(t *testing.T) {
	r := New[int]()
	require.Panics(t, func() {
		r.AcquireOrCreate("t", func() *Job[int] { return nil })
	})
	require.False(t, r.Has("t"))
}

func TestRegistry_SizeObserver(t *testing.T) {
	var sizes []int
	r := New[int](WithSizeObserver(func(n int) { sizes = append(sizes, n) }))

	a, _ := r.AcquireOrCreate("a", func() *Job[int] { return NewJob[int]() })
	b, _ := r.AcquireOrCreate("b", func() *Job[int] { return NewJob[int]() })
	r.AcquireOrCreate("a", func() *Job[int] { return NewJob[int]() })
	r.Remove("a", a)
	r.Remove("b", b)

	require.Equal(t, []int{1, 2, 1, 0}, sizes)
}

func TestJob_SettleOnce(t *testing.T) {
	j := NewJob[int]()
	require.Nil(t, j.Effects())

	require.True(t, j.Settle(1))
	require.False(t, j.Settle(2))

	v, err := j.Wait(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, v)
	select {
	case <-j.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestJob_WaitContext(t *testing.T) {
	j := NewJob[int]()
	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()

	_, err := j.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.False(t, j.Settled())
}

func TestJob_EffectsFrozenOnSettle(t *testing.T) {
	j := NewJob[int]()
	rec := effects.WrapInto(nil, j.Buffer())
	rec.SetCookie(&http.Cookie{Name: "op1", Value: "a"})
	rec.SetCookie(&http.Cookie{Name: "op2", Value: "b"})

	j.Settle(0)
	rec.SetCookie(&http.Cookie{Name: "late", Value: "c"})

	ops := j.Effects()
	require.Len(t, ops, 2)
	require.Equal(t, "op1", ops[0].Name)
	require.Equal(t, "op2", ops[1].Name)
}
