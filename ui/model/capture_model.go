package model

import (
	"sync/atomic"
)

// CaptureModel tracks whether the frame source is enabled. The zero value is
// disabled and usable. Concurrency-safe because UI callbacks, presenter ticks
// and the headless runner may race.
type CaptureModel struct {
	enabled atomic.Bool
	lastErr atomic.Pointer[error]
}

// Enabled reports whether capture is currently enabled.
func (m *CaptureModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the enabled flag. Enabling clears the last error.
func (m *CaptureModel) SetEnabled(b bool) {
	if m == nil {
		return
	}
	if m.enabled.Swap(b) == b {
		return
	}
	if b {
		m.lastErr.Store(nil)
	}
}

// SetError records why capture stopped or failed to start.
func (m *CaptureModel) SetError(err error) {
	if m == nil {
		return
	}
	if err == nil {
		m.lastErr.Store(nil)
		return
	}
	m.lastErr.Store(&err)
}

// Err returns the last recorded capture error.
func (m *CaptureModel) Err() error {
	if m == nil {
		return nil
	}
	if p := m.lastErr.Load(); p != nil {
		return *p
	}
	return nil
}
