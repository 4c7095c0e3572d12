package once

import "github.com/codewandler/onceform-go/core/metrics"

// Metrics defines the instrumentation of a Guard. All methods are
// thread-safe.
type Metrics interface {
	// Jobs
	JobStarted()
	JobJoined()
	JobSettled(kind string)
	JobDuration() metrics.Timer
	InFlight(n int)

	// Requests
	TokenMissing()
	EffectsReplayed(n int)
}

type nopMetrics struct{}

func (nopMetrics) JobStarted()                {}
func (nopMetrics) JobJoined()                 {}
func (nopMetrics) JobSettled(string)          {}
func (nopMetrics) JobDuration() metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) InFlight(int)               {}
func (nopMetrics) TokenMissing()              {}
func (nopMetrics) EffectsReplayed(int)        {}

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
