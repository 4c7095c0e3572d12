package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codewandler/onceform-go/core/sf"
	"github.com/codewandler/onceform-go/internal/fingerprint"
	"github.com/codewandler/onceform-go/ports/kv"
)

// ErrUnknownToken is returned for tokens that were never issued or have
// expired.
var ErrUnknownToken = errors.New("unknown form token")

const keyPrefix = "form_once."

// Issued is the ledger record of an issued token.
type Issued struct {
	Path     string    `json:"path"`
	IssuedAt time.Time `json:"issued_at"`
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithTTL overrides how long issued tokens are remembered (default:
// Lifetime).
func WithTTL(ttl time.Duration) LedgerOption {
	return func(l *Ledger) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithNow replaces the clock used to stamp records.
func WithNow(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// Ledger records issued tokens in a kv.Store under their fingerprint, so the
// store never sees the raw token. Duplicate requests verify the same token
// concurrently; those lookups are coalesced into one store read.
type Ledger struct {
	store   kv.Store
	ttl     time.Duration
	now     func() time.Time
	lookups *sf.Group[Issued]
}

// NewLedger creates a Ledger backed by store.
func NewLedger(store kv.Store, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		store:   store,
		ttl:     Lifetime,
		now:     time.Now,
		lookups: sf.New[Issued](),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record stores tok as issued for path.
func (l *Ledger) Record(ctx context.Context, tok, path string) error {
	rec := Issued{Path: path, IssuedAt: l.now().UTC()}
	if err := kv.Put(ctx, l.store, ledgerKey(tok), rec, kv.PutOptions{TTL: l.ttl}); err != nil {
		return fmt.Errorf("record form token: %w", err)
	}
	return nil
}

// Verify returns the record for tok, or ErrUnknownToken.
func (l *Ledger) Verify(ctx context.Context, tok string) (Issued, error) {
	key := ledgerKey(tok)
	rec, err := l.lookups.Do(ctx, key, func(ctx context.Context) (Issued, error) {
		return kv.Get[Issued](ctx, l.store, key)
	})
	if errors.Is(err, kv.ErrNotFound) {
		return Issued{}, ErrUnknownToken
	}
	if err != nil {
		return Issued{}, fmt.Errorf("verify form token: %w", err)
	}
	return rec, nil
}

// Revoke forgets tok.
func (l *Ledger) Revoke(ctx context.Context, tok string) error {
	if err := l.store.Delete(ctx, ledgerKey(tok)); err != nil {
		return fmt.Errorf("revoke form token: %w", err)
	}
	return nil
}

func ledgerKey(tok string) string {
	return keyPrefix + fingerprint.Key(tok)
}
