package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/codewandler/onceform-go/core/token"
	"github.com/codewandler/onceform-go/ports/kv"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s, err := NewStore(Config{Client: client, Prefix: "test:"})
	require.NoError(t, err)
	return s, mr
}

func TestStore(t *testing.T) {
	s, mr := newTestStore(t)

	_, err := s.Get(t.Context(), "missing")
	require.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, s.Put(t.Context(), "k", kv.Entry{Data: []byte(`{"a":1}`)}, kv.PutOptions{}))
	require.True(t, mr.Exists("test:k"))

	e, err := s.Get(t.Context(), "k")
	require.NoError(t, err)
	require.Equal(t, []byte(`{"a":1}`), e.Data)

	require.NoError(t, s.Delete(t.Context(), "k"))
	_, err = s.Get(t.Context(), "k")
	require.ErrorIs(t, err, kv.ErrNotFound)
}

func TestStore_TTL(t *testing.T) {
	s, mr := newTestStore(t)

	require.NoError(t, s.Put(t.Context(), "k", kv.Entry{Data: []byte(`1`)}, kv.PutOptions{TTL: time.Minute}))
	require.Equal(t, time.Minute, mr.TTL("test:k"))

	mr.FastForward(time.Minute)
	_, err := s.Get(t.Context(), "k")
	require.ErrorIs(t, err, kv.ErrNotFound)
}

func TestStore_Ledger(t *testing.T) {
	s, _ := newTestStore(t)
	l := token.NewLedger(s)

	require.NoError(t, l.Record(t.Context(), "abc123", "/login"))
	rec, err := l.Verify(t.Context(), "abc123")
	require.NoError(t, err)
	require.Equal(t, "/login", rec.Path)

	_, err = l.Verify(t.Context(), "other")
	require.ErrorIs(t, err, token.ErrUnknownToken)
}

func TestStore_ClientRequired(t *testing.T) {
	_, err := NewStore(Config{})
	require.Error(t, err)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := Connect(t.Context(), mr.Addr())
	require.NoError(t, err)
	require.NoError(t, c.Close())

	mr.Close()
	_, err = Connect(t.Context(), mr.Addr())
	require.Error(t, err)
}
