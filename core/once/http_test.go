package once

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/onceform-go/core/token"
)

func TestJSONRenderer(t *testing.T) {
	tests := []struct {
		name     string
		out      Outcome
		status   int
		body     string
		location string
	}{
		{name: "success", out: Success{Payload: map[string]int{"id": 1}}, status: 200, body: `{"id":1}`},
		{name: "empty success", out: Success{}, status: 204},
		{name: "validation", out: TokenMissing, status: 400, body: `{"message":"Form token missing"}`},
		{name: "redirect", out: Redirect("/done"), status: 303, location: "/done"},
		{name: "handler error", out: &HandlerError{Cause: errors.New("secret detail")}, status: 500, body: `{"message":"internal error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			JSONRenderer{}.Render(w, httptest.NewRequest(http.MethodPost, "/", nil), tt.out)

			require.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				require.JSONEq(t, tt.body, w.Body.String())
			}
			if tt.location != "" {
				require.Equal(t, tt.location, w.Header().Get("Location"))
			}
		})
	}
}

func TestHTTPHandler_DuplicatesReceiveCookies(t *testing.T) {
	m := &testMetrics{}
	g := New(WithMetrics(m))

	release := make(chan struct{})
	h := g.HTTPHandler(func(ctx context.Context, req *Request) (Outcome, error) {
		<-release
		req.SetCookie(&http.Cookie{Name: "session", Value: "s-1", Path: "/", HttpOnly: true})
		return Redirect("/"), nil
	}, nil)

	srv := httptest.NewServer(h)
	defer srv.Close()

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}

	const n = 3
	responses := make([]*http.Response, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := http.NewRequest(http.MethodPost, srv.URL+"/login", nil)
			require.NoError(t, err)
			req.AddCookie(&http.Cookie{Name: token.CookieName, Value: "abc123"})
			resp, err := client.Do(req)
			require.NoError(t, err)
			responses[i] = resp
		}()
	}
	require.Eventually(t, func() bool { return m.joined.Load() == n-1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	for _, resp := range responses {
		_ = resp.Body.Close()
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)
		require.Equal(t, "/", resp.Header.Get("Location"))
		cookies := resp.Cookies()
		require.Len(t, cookies, 1)
		require.Equal(t, "session", cookies[0].Name)
		require.Equal(t, "s-1", cookies[0].Value)
	}
	require.Zero(t, g.Registry().Len())
}

func TestHTTPHandler_DuplicateCookieHeadersMatchOwner(t *testing.T) {
	m := &testMetrics{}
	g := New(WithMetrics(m))

	release := make(chan struct{})
	h := g.HTTPHandler(func(ctx context.Context, req *Request) (Outcome, error) {
		req.SetCookie(&http.Cookie{Name: "pref", Value: "x", Partitioned: true})
		<-release
		req.SetCookie(&http.Cookie{Name: "csv", Value: `a;b`})
		return Success{}, nil
	}, nil)

	const n = 2
	recorders := make([]*httptest.ResponseRecorder, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		recorders[i] = httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/prefs", nil)
		r.AddCookie(&http.Cookie{Name: token.CookieName, Value: "tok-headers"})
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.ServeHTTP(recorders[i], r)
		}()
	}
	require.Eventually(t, func() bool { return m.joined.Load() == n-1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	want := recorders[0].Header().Values("Set-Cookie")
	require.Len(t, want, 2)
	for _, w := range recorders {
		require.Equal(t, http.StatusNoContent, w.Code)
		require.Equal(t, want, w.Header().Values("Set-Cookie"))
	}
}

func TestHTTPHandler_TokenMissing(t *testing.T) {
	g := New()
	h := g.HTTPHandler(func(ctx context.Context, req *Request) (Outcome, error) {
		t.Error("handler must not run")
		return Success{}, nil
	}, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Form token missing", body.Message)
}

func TestHTTPHandler_TokenSourceFailureIsServerError(t *testing.T) {
	g := New(WithTokenSource(brokenTokens{err: errors.New("ledger unreachable")}))
	h := g.HTTPHandler(func(ctx context.Context, req *Request) (Outcome, error) {
		return Success{}, nil
	}, nil)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"message":"internal error"}`, w.Body.String())
}

func TestHTTPHandler_CustomRenderer(t *testing.T) {
	g := New()
	var rendered Outcome
	h := g.HTTPHandler(func(ctx context.Context, req *Request) (Outcome, error) {
		return Success{Payload: "ok"}, nil
	}, RendererFunc(func(w http.ResponseWriter, r *http.Request, out Outcome) {
		rendered = out
		w.WriteHeader(http.StatusAccepted)
	}))

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.AddCookie(&http.Cookie{Name: token.CookieName, Value: "t"})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Equal(t, Success{Payload: "ok"}, rendered)
}
