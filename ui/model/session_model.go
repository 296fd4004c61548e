package model

import (
	"time"
)

// SessionModel tracks how long capture has been running (current run and
// accumulated) and how many measurements finished. Presenters poll Values()
// and update views. The zero value is ready to use.
type SessionModel struct {
	active              bool
	captureStart        time.Time
	lastSessionDuration time.Duration
	accumulated         time.Duration
	completed           int
	failed              int
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick updates the model using the current capture state and timestamp.
func (m *SessionModel) OnTick(capturing bool, now time.Time) {
	if m == nil {
		return
	}
	if capturing {
		if !m.active {
			m.active = true
			m.captureStart = now
			m.lastSessionDuration = 0
		}
		m.lastSessionDuration = now.Sub(m.captureStart)
	} else if m.active {
		m.lastSessionDuration = now.Sub(m.captureStart)
		m.accumulated += m.lastSessionDuration
		m.active = false
	}
}

// Values returns the current run duration and the total accumulated duration.
// The total includes the ongoing run when active.
func (m *SessionModel) Values() (session, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	session = m.lastSessionDuration
	total = m.accumulated
	if m.active {
		total += session
	}
	return
}

// RecordOutcome counts a finished measurement.
func (m *SessionModel) RecordOutcome(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.completed++
	} else {
		m.failed++
	}
}

// Outcomes returns the number of completed and failed measurements.
func (m *SessionModel) Outcomes() (completed, failed int) {
	if m == nil {
		return 0, 0
	}
	return m.completed, m.failed
}
