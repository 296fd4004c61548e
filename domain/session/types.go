package session

import (
	"time"

	"github.com/soocke/pixel-pulse-go/domain/pulse"
)

// State enumerates the phases of one measurement.
type State int

const (
	StateHalt State = iota
	StateWaiting
	StateMeasuring
	StatePaused
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateHalt:
		return "halt"
	case StateWaiting:
		return "waiting"
	case StateMeasuring:
		return "measuring"
	case StatePaused:
		return "paused"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Active reports whether the countdown is running in s.
func (s State) Active() bool {
	return s == StateWaiting || s == StateMeasuring || s == StatePaused
}

// Terminal reports whether s ends a measurement.
func (s State) Terminal() bool { return s == StateComplete || s == StateFailed }

// Failure reasons shown to the user.
const (
	ReasonInsufficientData = "Insufficient data for measurement"
	ReasonLowQuality       = "Pulse signal too weak for measurement"
)

// Result is the outcome of a finished measurement.
type Result struct {
	ID       string
	Metrics  pulse.Metrics
	Err      error
	Reason   string
	Started  time.Time
	Finished time.Time
	Samples  int
}

// OK reports whether the measurement produced metrics.
func (r Result) OK() bool { return r.Err == nil }

// StateListener is called on each state transition.
type StateListener func(prev, next State)

// MetricsListener receives interim (final=false) and final metrics.
type MetricsListener func(m pulse.Metrics, final bool)

// Interface slices for consumers (presenters).
type StateSource interface{ Current() State }
type SampleSink interface {
	FaceFound()
	FaceLost()
	AddSample(pulse.Sample)
}
type Lifecycle interface {
	Start(now time.Time)
	Tick(now time.Time)
	Halt()
	Close()
}
type Timing interface {
	Remaining(now time.Time) time.Duration
	Result() (Result, bool)
	ID() string
}

// Contract aggregate for DI.
type Contract interface {
	StateSource
	SampleSink
	Lifecycle
	Timing
	SampleCount() int
	AddListener(StateListener)
	AddMetricsListener(MetricsListener)
}
