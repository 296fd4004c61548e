package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick/ProcessFrame on the sub-presenters and invokes a
// scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Session  *SessionPresenter
	State    *StatePresenter
	Measure  *MeasurePresenter
	Results  *ResultsPresenter
	Ticker   interface{ Tick(now time.Time) } // session clock
	Schedule func()
}

func NewLoop(sess *SessionPresenter, state *StatePresenter, measure *MeasurePresenter, results *ResultsPresenter, clock interface{ Tick(now time.Time) }, schedule func()) *Loop {
	return &Loop{Session: sess, State: state, Measure: measure, Results: results, Ticker: clock, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Ticker != nil {
		l.Ticker.Tick(now)
	}
	if l.State != nil {
		l.State.Tick(now)
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Measure != nil {
		l.Measure.ProcessFrame()
	}
	if l.Results != nil {
		l.Results.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
