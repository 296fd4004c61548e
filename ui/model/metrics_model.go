package model

import (
	"sync"

	"github.com/soocke/pixel-pulse-go/domain/pulse"
)

// MetricsModel holds the latest interim metrics published by the session
// goroutine and read on the UI tick.
type MetricsModel struct {
	mu      sync.Mutex
	interim pulse.Metrics
	has     bool
}

func NewMetricsModel() *MetricsModel { return &MetricsModel{} }

// OnMetrics is a session metrics listener. Final metrics are shown by the
// results view, so only interim values are kept.
func (m *MetricsModel) OnMetrics(v pulse.Metrics, final bool) {
	if m == nil || final {
		return
	}
	m.mu.Lock()
	m.interim, m.has = v, true
	m.mu.Unlock()
}

// Interim returns the latest interim metrics, if any.
func (m *MetricsModel) Interim() (pulse.Metrics, bool) {
	if m == nil {
		return pulse.Metrics{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interim, m.has
}

// Reset drops interim metrics, for a new measurement.
func (m *MetricsModel) Reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.interim, m.has = pulse.Metrics{}, false
	m.mu.Unlock()
}
