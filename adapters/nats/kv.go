// Package nats provides a kv.Store on NATS JetStream key/value buckets.
package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/codewandler/onceform-go/ports/kv"
)

const defaultBucket = "onceform_tokens"

// ErrTTLMismatch is returned by Put when the entry TTL differs from the
// bucket TTL.
var ErrTTLMismatch = errors.New("entry ttl must equal bucket ttl")

type KvConfig struct {
	Connect Connector
	Bucket  string
	// TTL is the bucket-wide entry lifetime. JetStream buckets expire
	// entries per bucket, so Put only accepts entries with exactly this
	// TTL. Zero keeps entries forever.
	TTL time.Duration
}

type KvStore struct {
	kv    jetstream.KeyValue
	ttl   time.Duration
	close closeFunc
}

func NewKvStore(ctx context.Context, cfg KvConfig) (*KvStore, error) {
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = defaultBucket
	}

	doConnect := cfg.Connect
	if doConnect == nil {
		doConnect = ConnectDefault()
	}

	nc, closeConn, err := doConnect()
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		closeConn()
		return nil, err
	}

	bkt, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:   bucket,
		TTL:      cfg.TTL,
		Storage:  jetstream.FileStorage,
		MaxBytes: 64 * 1024 * 1024,
	})
	if err != nil {
		closeConn()
		return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
	}

	return &KvStore{kv: bkt, ttl: cfg.TTL, close: closeConn}, nil
}

func (k *KvStore) Put(ctx context.Context, key string, entry kv.Entry, opts kv.PutOptions) error {
	if opts.TTL != k.ttl {
		return fmt.Errorf("put %s with ttl %s, bucket ttl %s: %w", key, opts.TTL, k.ttl, ErrTTLMismatch)
	}
	if _, err := k.kv.Put(ctx, key, entry.Data); err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func (k *KvStore) Get(ctx context.Context, key string) (kv.Entry, error) {
	v, err := k.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return kv.Entry{}, kv.ErrNotFound
		}
		return kv.Entry{}, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return kv.Entry{Data: v.Value()}, nil
}

func (k *KvStore) Delete(ctx context.Context, key string) error {
	if err := k.kv.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection.
func (k *KvStore) Close() {
	if k.close != nil {
		k.close()
	}
}

var _ kv.Store = (*KvStore)(nil)
