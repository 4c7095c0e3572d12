// Package metrics defines the backend-neutral metric primitives shared by
// the core packages. Concrete backends live under adapters/.
package metrics

// Timer measures the duration of an operation. Call ObserveDuration when
// the operation completes to record the elapsed time.
type Timer interface {
	// ObserveDuration records the elapsed time since the timer was created.
	ObserveDuration()
}
