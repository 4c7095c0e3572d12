// Package token issues and reads the per-submission form token.
//
// The token travels in the form_once cookie, set once per page load on the
// path of the page that renders the form. It is HttpOnly and expires after
// MaxAge seconds. An optional Ledger remembers issued tokens so that
// fabricated tokens are treated as absent.
package token

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/onceform-go/internal/fingerprint"
)

const (
	// CookieName is the cookie carrying the form token.
	CookieName = "form_once"
	// MaxAge is the token cookie lifetime in seconds.
	MaxAge = 600
	// Length is the number of characters in a generated token.
	Length = 32
)

// Lifetime is MaxAge as a duration.
const Lifetime = MaxAge * time.Second

// New generates a fresh, unguessable token.
func New() (string, error) {
	tok, err := gonanoid.New(Length)
	if err != nil {
		return "", fmt.Errorf("generate form token: %w", err)
	}
	return tok, nil
}

// Transport moves tokens through the form_once cookie.
type Transport struct {
	// Secure marks the cookie Secure.
	Secure bool
	// Ledger, when set, records issued tokens and rejects unknown ones.
	Ledger *Ledger
	// Log defaults to slog.Default().
	Log *slog.Logger
}

// Issue generates a token and sets it as a cookie scoped to the request
// path.
func (t Transport) Issue(w http.ResponseWriter, r *http.Request) (string, error) {
	tok, err := New()
	if err != nil {
		return "", err
	}

	path := r.URL.Path
	if path == "" {
		path = "/"
	}

	if t.Ledger != nil {
		if err := t.Ledger.Record(r.Context(), tok, path); err != nil {
			return "", err
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tok,
		Path:     path,
		MaxAge:   MaxAge,
		HttpOnly: true,
		Secure:   t.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return tok, nil
}

// Token returns the token carried by r. A missing or blank cookie, or a
// token the ledger does not know, reports false. A ledger failure is
// returned as an error.
func (t Transport) Token(r *http.Request) (string, bool, error) {
	if r == nil {
		return "", false, nil
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie == nil {
		return "", false, nil
	}
	tok := strings.TrimSpace(cookie.Value)
	if tok == "" {
		return "", false, nil
	}

	if t.Ledger != nil {
		if _, err := t.Ledger.Verify(r.Context(), tok); err != nil {
			if errors.Is(err, ErrUnknownToken) {
				return "", false, nil
			}
			t.logger().Warn("form token verification failed",
				slog.String("token", fingerprint.Short(tok)),
				slog.Any("error", err),
			)
			return "", false, err
		}
	}
	return tok, true, nil
}

func (t Transport) logger() *slog.Logger {
	if t.Log != nil {
		return t.Log
	}
	return slog.Default()
}
