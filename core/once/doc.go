// Package once guards form actions so that each issued form token runs the
// underlying handler at most once, no matter how many duplicate, retried or
// racing requests carry that token.
//
// # Guarding a handler
//
//	guard := once.New(once.WithLogger(log))
//
//	submit := guard.Wrap(func(ctx context.Context, req *once.Request) (once.Outcome, error) {
//	    if err := createOrder(ctx, req.HTTP); err != nil {
//	        return nil, err
//	    }
//	    req.SetCookie(&http.Cookie{Name: "last_order", Value: id})
//	    return once.Redirect("/orders"), nil
//	})
//
// The first request for a token becomes the owner: a job is registered and
// the handler starts immediately. Requests that arrive while the job is in
// flight join it, wait for the same [Outcome] and get every cookie the
// handler wrote replayed onto their own response. Once the job settles the
// token is forgotten, so a later request with the same token runs again.
//
// A request without a token short-circuits to [TokenMissing] without
// touching the registry.
//
// # Failures
//
// A handler error or panic becomes a [*HandlerError] outcome. The same value
// is delivered, never retried, to the owner and every duplicate.
//
// # HTTP
//
// [Guard.HTTPHandler] adapts a guarded handler to net/http and renders the
// outcome with a [Renderer], [JSONRenderer] by default.
package once
