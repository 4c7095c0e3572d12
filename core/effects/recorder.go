package effects

import (
	"net/http"
	"sync"
)

// CookieSink is the response mutation capability handlers write through.
type CookieSink interface {
	SetCookie(c *http.Cookie)
}

// SinkFunc adapts a function to CookieSink.
type SinkFunc func(c *http.Cookie)

func (f SinkFunc) SetCookie(c *http.Cookie) { f(c) }

type responseSink struct {
	w http.ResponseWriter
}

func (s responseSink) SetCookie(c *http.Cookie) { http.SetCookie(s.w, c) }

// Writer returns a CookieSink that sets cookies on w.
func Writer(w http.ResponseWriter) CookieSink {
	return responseSink{w: w}
}

// Buffer is an append-only list of ops. After Freeze it is immutable.
type Buffer struct {
	mu     sync.Mutex
	ops    []Op
	frozen bool
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) append(op Op) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frozen {
		return false
	}
	b.ops = append(b.ops, op)
	return true
}

// Freeze ends the append phase and returns the recorded ops. Writes that
// arrive afterwards still reach the real sink but are not recorded.
func (b *Buffer) Freeze() []Op {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frozen = true
	return b.ops
}

// Ops returns a copy of the ops recorded so far.
func (b *Buffer) Ops() []Op {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Op, len(b.ops))
	copy(out, b.ops)
	return out
}

// Len returns the number of recorded ops.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ops)
}

// Recorder is a CookieSink that forwards every write to an underlying sink
// and records it in a Buffer.
type Recorder struct {
	sink CookieSink
	buf  *Buffer
}

// Wrap returns a Recorder around sink together with its fresh Buffer.
// A nil sink records without forwarding.
func Wrap(sink CookieSink) (*Recorder, *Buffer) {
	buf := NewBuffer()
	return WrapInto(sink, buf), buf
}

// WrapInto is like Wrap but records into an existing buffer.
func WrapInto(sink CookieSink, buf *Buffer) *Recorder {
	return &Recorder{sink: sink, buf: buf}
}

func (r *Recorder) SetCookie(c *http.Cookie) {
	if c == nil {
		return
	}
	if r.sink != nil {
		r.sink.SetCookie(c)
	}
	r.buf.append(FromCookie(c))
}

// Replay applies ops in order to target and returns how many were applied.
// A target without the CookieSink capability receives nothing. Every op is
// handed to the target as recorded, so the target applies the same
// sanitizing rules the owner's sink did.
func Replay(ops []Op, target any) int {
	sink, ok := target.(CookieSink)
	if !ok || sink == nil {
		return 0
	}
	for _, op := range ops {
		sink.SetCookie(op.Cookie())
	}
	return len(ops)
}

var (
	_ CookieSink = (*Recorder)(nil)
	_ CookieSink = SinkFunc(nil)
	_ CookieSink = responseSink{}
)
