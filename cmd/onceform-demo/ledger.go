package main

import (
	"context"
	"fmt"
	"log/slog"

	natsadapter "github.com/codewandler/onceform-go/adapters/nats"
	redisadapter "github.com/codewandler/onceform-go/adapters/redis"
	"github.com/codewandler/onceform-go/core/token"
	"github.com/codewandler/onceform-go/ports/kv"
)

// openLedger builds the token ledger selected by cfg. The returned close
// function is never nil.
func openLedger(ctx context.Context, cfg Config, log *slog.Logger) (*token.Ledger, func(), error) {
	noop := func() {}

	switch cfg.Ledger {
	case "", "none":
		return nil, noop, nil

	case "memory":
		return token.NewLedger(kv.NewMemStore()), noop, nil

	case "redis":
		client, err := redisadapter.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, noop, err
		}
		store, err := redisadapter.NewStore(redisadapter.Config{Client: client, Prefix: "onceform:"})
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		log.Info("token ledger on redis", slog.String("addr", cfg.RedisAddr))
		return token.NewLedger(store), func() { _ = client.Close() }, nil

	case "nats":
		store, err := natsadapter.NewKvStore(ctx, natsadapter.KvConfig{
			Connect: natsadapter.ReuseConnection(natsadapter.ConnectURL(cfg.NATSURL)),
			TTL:     token.Lifetime,
		})
		if err != nil {
			return nil, noop, err
		}
		log.Info("token ledger on nats", slog.String("url", cfg.NATSURL))
		return token.NewLedger(store), store.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown ledger %q", cfg.Ledger)
	}
}
