// Package registry tracks in-flight jobs by token and guarantees that at
// most one job exists per token at any instant.
//
// A [Job] is a broadcast future: one producer settles it once, and any
// number of consumers wait for the same settled value. Each job also owns an
// [effects.Buffer] that collects the side effects of its sole execution.
//
// [Registry.AcquireOrCreate] is the only way to obtain a job. The lookup and
// the registration of a new job happen inside one critical section, so two
// concurrent callers can never both become owner for the same token. The
// owner starts the work with [Registry.Run], which removes the entry and
// settles the job on every exit path.
//
// Per token the registry moves through ABSENT → IN_FLIGHT → ABSENT. A job's
// presence implies it has not settled; absence means it never started or
// has already settled. Settled tokens are forgotten: the registry guards
// against concurrent duplicates, not against reuse over time.
//
// The registry is process-local. Requests for the same token that land on
// different processes are not deduplicated.
package registry
