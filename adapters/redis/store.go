// Package redis provides a kv.Store on Redis, so issued form tokens can be
// recorded by one process and verified by another.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/codewandler/onceform-go/ports/kv"
)

type Config struct {
	Client goredis.UniversalClient
	// Prefix is prepended to every key.
	Prefix string
}

type Store struct {
	client goredis.UniversalClient
	prefix string
}

func NewStore(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis client is required")
	}
	return &Store{client: cfg.Client, prefix: cfg.Prefix}, nil
}

// Connect creates a client for addr and verifies it with PING.
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	c := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return c, nil
}

func (s *Store) Put(ctx context.Context, key string, entry kv.Entry, opts kv.PutOptions) error {
	if err := s.client.Set(ctx, s.prefix+key, entry.Data, opts.TTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (kv.Entry, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return kv.Entry{}, kv.ErrNotFound
	}
	if err != nil {
		return kv.Entry{}, fmt.Errorf("redis get %s: %w", key, err)
	}
	return kv.Entry{Data: data}, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

var _ kv.Store = (*Store)(nil)
