// Package effects captures response side effects (cookie writes) performed
// by a handler so they can be replayed onto other responses.
//
// A handler that runs once on behalf of many callers only hands its return
// value to the others. Anything it did to its own response, such as setting
// a cookie, would be invisible to them. [Wrap] substitutes the handler's
// cookie sink with a [Recorder] that performs the real write and appends an
// [Op] to a [Buffer]. Once the execution settles the buffer is frozen and
// [Replay] applies the same ops, in the same order, to any other target.
//
// # Usage
//
//	rec, buf := effects.Wrap(effects.Writer(w))
//	handler(rec)
//	ops := buf.Freeze()
//
//	// later, for another caller
//	effects.Replay(ops, effects.Writer(otherW))
//
// Targets that do not implement [CookieSink] are skipped. Ops are replayed
// as recorded, so the target sanitizes them the way the owner's sink did.
// Replay never fails.
package effects
