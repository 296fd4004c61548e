package presenter

import (
	"time"

	"github.com/soocke/pixel-pulse-go/domain/capture"
	"github.com/soocke/pixel-pulse-go/ui/model"
)

// CaptureEnabledModel reports whether capture is enabled.
type CaptureEnabledModel interface{ Enabled() bool }

// StatsSource exposes capture instrumentation.
type StatsSource interface{ Stats() capture.CaptureStats }

// CountdownSource is the slice of the session used for the stats line.
type CountdownSource interface {
	Remaining(now time.Time) time.Duration
	SampleCount() int
}

// SessionView displays capture uptime and measurement progress.
type SessionView interface {
	SetSession(session, total time.Duration)
	SetMeasurement(remaining time.Duration, samples int, fps float64)
}

// SessionPresenter formats uptime, countdown and sample counts for the view.
type SessionPresenter struct {
	sess      *model.SessionModel
	cap       CaptureEnabledModel
	countdown CountdownSource
	stats     StatsSource
	view      SessionView
}

// NewSessionPresenter returns a new SessionPresenter. countdown and stats may
// be nil; the measurement line then reports zeros.
func NewSessionPresenter(sess *model.SessionModel, cap CaptureEnabledModel, countdown CountdownSource, stats StatsSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, cap: cap, countdown: countdown, stats: stats, view: view}
}

// Tick advances the session model and pushes values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.cap == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.cap.Enabled(), now)
	s, t := p.sess.Values()
	p.view.SetSession(s, t)

	var remaining time.Duration
	samples := 0
	if p.countdown != nil {
		remaining = p.countdown.Remaining(now)
		samples = p.countdown.SampleCount()
	}
	fps := 0.0
	if p.stats != nil && p.cap.Enabled() {
		fps = p.stats.Stats().FPS
	}
	p.view.SetMeasurement(remaining, samples, fps)
}
