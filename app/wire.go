package app

import (
	"github.com/soocke/pixel-pulse-go/domain/session"
	"github.com/soocke/pixel-pulse-go/ui/presenter"
)

// measureRate is the worker's frame budget per second.
const measureRate = 30

// Views is what a front end (window or console) must show.
type Views interface {
	presenter.StateView
	presenter.SessionView
	presenter.ResultsView
}

// Presenters groups the presenters driven by one front end.
type Presenters struct {
	Capture *presenter.CapturePresenter
	State   *presenter.StatePresenter
	Stats   *presenter.SessionPresenter
	Measure *presenter.MeasurePresenter
	Results *presenter.ResultsPresenter
	Watcher *presenter.FrameWatcher
	Loop    *presenter.Loop
}

// Wire builds the presenters for views and registers the session listeners.
// frames and controls may be nil (console). render selects whether the
// results view receives a rendered card.
func (c *AppContainer) Wire(views Views, frames presenter.MeasureView, controls presenter.CaptureView, render bool, schedule func()) *Presenters {
	p := &Presenters{}
	p.Capture = presenter.NewCapturePresenter(c.Capture, c.CaptureSvc, c.Measure, controls, c.Logger)
	p.State = presenter.NewStatePresenter(c.Measure, views)
	p.Stats = presenter.NewSessionPresenter(c.Session, c.Capture, c.Measure, c.CaptureSvc, views)
	p.Measure = presenter.NewMeasurePresenter(c.Capture.Enabled, c.CaptureSvc, c.Locator, c.Measure, c.Metrics, frames, c.Faces, c.Config.ForeheadFraction, measureRate, c.Logger)
	p.Results = presenter.NewResultsPresenter(c.Measure, views, c.Session, render, c.Logger)
	p.Watcher = presenter.NewFrameWatcher(c.Measure, c.CaptureSvc, c.Logger)
	p.Loop = presenter.NewLoop(p.Stats, p.State, p.Measure, p.Results, c.Measure, schedule)

	c.Measure.AddListener(func(prev, next session.State) {
		if next == session.StateWaiting {
			c.Metrics.Reset()
			if c.Tracker != nil {
				c.Tracker.Reset()
			}
		}
		p.State.OnState(prev, next)
		p.Results.OnState(prev, next)
		p.Watcher.OnState(prev, next)
	})
	c.Measure.AddMetricsListener(c.Metrics.OnMetrics)
	c.wired = p
	return p
}
