// Package sf provides a generic single-flight mechanism for deduplicating
// concurrent function calls with the same key.
//
// Single-flight ensures that only one execution of a function is in-flight
// for a given key at a time. If multiple goroutines call [Group.Do] with the
// same key concurrently, only the first call executes the function;
// subsequent callers wait for it and receive the same result. Once the call
// returns the key is forgotten, so a later call executes again.
//
// Waiters honour their own context: a caller whose context ends stops
// waiting and gets the context error, while the shared call keeps running
// for the others.
//
// # Usage
//
//	g := sf.New[*Issued]()
//
//	issued, err := g.Do(ctx, key, func(ctx context.Context) (*Issued, error) {
//	    return kv.Get[*Issued](ctx, store, key)
//	})
package sf
