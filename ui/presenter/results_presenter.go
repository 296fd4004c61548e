package presenter

import (
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/pixel-pulse-go/domain/session"
	"github.com/soocke/pixel-pulse-go/ui/images"
	"github.com/soocke/pixel-pulse-go/ui/model"
)

// ResultsTitle heads the summary card and the console block.
const ResultsTitle = "Cardiovascular Results"

// Results card size.
const (
	ResultsWidth  = 500
	ResultsHeight = 300
)

// ResultSource returns the outcome of the last finished measurement.
type ResultSource interface {
	Result() (session.Result, bool)
}

// ResultsView shows a finished measurement. card is nil when the presenter
// was built without rendering (console).
type ResultsView interface {
	ShowResults(res session.Result, lines []string, card image.Image)
}

// SummaryLines returns the metric lines for a successful result, or the
// failure reason.
func SummaryLines(res session.Result) []string {
	if res.OK() {
		return res.Metrics.Lines()
	}
	reason := res.Reason
	if reason == "" {
		reason = session.ReasonInsufficientData
	}
	return []string{reason}
}

// ResultsPresenter shows the summary once a measurement ends.
type ResultsPresenter struct {
	source ResultSource
	view   ResultsView
	stats  *model.SessionModel
	render bool
	logger *slog.Logger

	mu      sync.Mutex
	pending bool
	lastID  string

	exitAfter time.Duration
	exit      func()
	exitAt    time.Time
}

// NewResultsPresenter constructs a results presenter. With render set the
// view also receives a ResultsCard image.
func NewResultsPresenter(source ResultSource, view ResultsView, stats *model.SessionModel, render bool, logger *slog.Logger) *ResultsPresenter {
	return &ResultsPresenter{source: source, view: view, stats: stats, render: render, logger: logger}
}

// ExitAfterDisplay makes Tick call exit once a summary has been shown for d.
// A new measurement starting before then cancels it.
func (p *ResultsPresenter) ExitAfterDisplay(d time.Duration, exit func()) {
	if p == nil {
		return
	}
	p.exitAfter, p.exit = d, exit
}

// OnState is a session listener; terminal transitions schedule the summary.
func (p *ResultsPresenter) OnState(prev, next session.State) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case next.Terminal():
		p.pending = true
	case next == session.StateWaiting:
		p.exitAt = time.Time{}
	}
}

// Tick shows a pending summary. Each session ID is shown at most once.
func (p *ResultsPresenter) Tick(now time.Time) {
	if p == nil || p.source == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	pending := p.pending
	p.pending = false
	exitAt := p.exitAt
	if !exitAt.IsZero() && !now.Before(exitAt) {
		p.exitAt = time.Time{}
	}
	p.mu.Unlock()
	if !exitAt.IsZero() && !now.Before(exitAt) {
		if p.logger != nil {
			p.logger.Info("results display finished, exiting")
		}
		p.exit()
		return
	}
	if !pending {
		return
	}
	res, ok := p.source.Result()
	if !ok || res.ID == p.lastID {
		return
	}
	p.lastID = res.ID
	p.stats.RecordOutcome(res.OK())
	lines := SummaryLines(res)
	var card image.Image
	if p.render {
		card = images.ResultsCard(ResultsTitle, lines, ResultsWidth, ResultsHeight)
	}
	if p.logger != nil {
		p.logger.Debug("results shown", "session", res.ID, "ok", res.OK())
	}
	p.view.ShowResults(res, lines, card)
	if p.exit != nil {
		p.mu.Lock()
		p.exitAt = now.Add(p.exitAfter)
		p.mu.Unlock()
	}
}
