package view

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/pixel-pulse-go/config"
	"github.com/soocke/pixel-pulse-go/domain/session"
	"github.com/soocke/pixel-pulse-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Session     SessionStats
	ConfigPanel ConfigPanel
	CapturePrev CapturePreview
	Results     *ResultsWindow

	// Widgets
	StateLabel *TLabelWidget
	captureRow int
}

// UI abstracts the subset of view operations needed by presenters, enabling decoupling
// from the concrete RootView implementation.
type UI interface {
	SetStateLabel(text string)
	SetConfigEditable(enabled bool)
	UpdateCapture(img image.Image)
	UpdateForehead(img image.Image)
	SetSession(session, total time.Duration)
	SetMeasurement(remaining time.Duration, samples int, fps float64)
	ShowResults(res session.Result, lines []string, card image.Image)
}

// Handlers are invoked on user actions. Selection may be nil when the frame
// source has no selectable area.
type Handlers struct {
	Restart   func()
	Stop      func()
	Selection func()
	Exit      func()
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout.
func (rv *RootView) Build(h Handlers) {
	if rv == nil {
		return
	}
	// Rows 0-1: stats, state label, buttons frame
	rv.Session = NewSessionStats(nil, 0, 0)
	rv.StateLabel = TLabel(Txt("State: halt"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, Row(0), Column(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Rowspan(2), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	btnRow := 0
	addButton := func(label, style string, fn func()) {
		if fn == nil {
			return
		}
		b := TButton(Txt(label), Style(style), Command(fn))
		Grid(b, In(btnFrame), Row(btnRow), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
		btnRow++
	}
	addButton("Restart", theme.StylePrimaryButton, h.Restart)
	addButton("Stop", theme.StyleDangerButton, h.Stop)
	addButton("Selection", "TButton", h.Selection)
	addButton("Exit", "TButton", h.Exit)

	if h.Exit != nil {
		Bind(App, "<KeyPress-q>", Command(h.Exit))
		Bind(App, "<Escape>", Command(h.Exit))
	}
	Bind(App, "<KeyPress-d>", Command(func() { theme.ToggleDark() }))

	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger)
	rv.captureRow = rv.ConfigPanel.Build(2)
	rv.CapturePrev = NewCapturePreview(rv.captureRow)

	seconds := 5
	if rv.cfg != nil {
		seconds = rv.cfg.ResultsDisplaySeconds
	}
	rv.Results = NewResultsWindow(time.Duration(seconds)*time.Second, rv.logger)
}

// SetStateLabel updates the state label text.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

// SetConfigEditable toggles config panel editability.
func (rv *RootView) SetConfigEditable(enabled bool) {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(enabled)
	}
}

func (rv *RootView) UpdateCapture(img image.Image) {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.UpdateCapture(img)
	}
}

func (rv *RootView) UpdateForehead(img image.Image) {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.UpdateForehead(img)
	}
}

// SetSession updates both session and total capture durations.
func (rv *RootView) SetSession(session, total time.Duration) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetSession(session)
	rv.Session.SetTotal(total)
}

func (rv *RootView) SetMeasurement(remaining time.Duration, samples int, fps float64) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetMeasurement(remaining, samples, fps)
}

// ShowResults opens the results window with the rendered card.
func (rv *RootView) ShowResults(res session.Result, lines []string, card image.Image) {
	if rv == nil || rv.Results == nil {
		return
	}
	rv.Results.Show(card)
}

// PreviewReset clears the capture preview.
func (rv *RootView) PreviewReset() {
	if rv != nil && rv.CapturePrev != nil {
		rv.CapturePrev.Reset()
	}
}

// ConfigEditable redirects to SetConfigEditable to satisfy CaptureView interface.
func (rv *RootView) ConfigEditable(b bool) { rv.SetConfigEditable(b) }

// Close cancels pending timers of child windows.
func (rv *RootView) Close() {
	if rv != nil && rv.Results != nil {
		rv.Results.Close()
	}
}

var _ UI = (*RootView)(nil)
