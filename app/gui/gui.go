// Package gui runs the measurement in a Tk window.
package gui

import (
	"fmt"
	"time"

	tk "modernc.org/tk9.0"

	"github.com/soocke/pixel-pulse-go/app"
	"github.com/soocke/pixel-pulse-go/ui/presenter"
	"github.com/soocke/pixel-pulse-go/ui/theme"
	"github.com/soocke/pixel-pulse-go/ui/view"
)

const tick = 33 * time.Millisecond

// Window is the live measurement window.
type Window struct {
	title         string
	width, height int
	c             *app.AppContainer
	root          *view.RootView
	selection     view.SelectionOverlay
	p             *app.Presenters
	afterID       string
	closing       bool
}

func New(title string, width, height int, c *app.AppContainer) *Window {
	return &Window{title: title, width: width, height: height, c: c}
}

// Run builds the window, opens the frame source and blocks until the window
// is closed. A source that cannot be opened is returned as an error before
// the event loop starts.
func (w *Window) Run() error {
	tk.App.WmTitle(w.title)
	tk.WmProtocol(tk.App, "WM_DELETE_WINDOW", w.exit)
	tk.WmGeometry(tk.App, fmt.Sprintf("%dx%d+100+100", w.width, w.height))
	theme.InitStyles()

	c := w.c
	w.root = view.NewRootView(c.Config, c.ConfigPath, c.Logger)
	handlers := view.Handlers{Restart: w.restart, Stop: w.stop, Exit: w.exit}
	if c.Screen != nil {
		w.selection = view.NewSelectionOverlay(c.Config, c.ConfigPath, c.Logger, c.SelectionChanged)
		c.Screen.SetSelectionProvider(w.selection.ActiveRect)
		handlers.Selection = w.selection.OpenOrFocus
	}
	w.root.Build(handlers)
	w.p = c.Wire(w.root, w.root, w.root, true, w.schedule)
	if c.Config.ExitAfterResults {
		w.p.Results.ExitAfterDisplay(time.Duration(c.Config.ResultsDisplaySeconds)*time.Second, w.exit)
	}

	if err := w.p.Capture.Enable(); err != nil {
		_ = c.Close()
		tk.Destroy(tk.App)
		return err
	}
	w.schedule()
	tk.App.Wait()
	return c.Close()
}

func (w *Window) schedule() {
	if w.closing {
		return
	}
	w.afterID = tk.TclAfter(tick, w.update)
}

// update notices a capture loop that ended by itself, then runs the
// presenter loop (which reschedules).
func (w *Window) update() {
	select {
	case <-w.c.CaptureSvc.Done():
		if err := w.c.CaptureSvc.Err(); err != nil {
			w.p.Capture.CaptureStopped(err)
		}
	default:
	}
	w.p.Loop.Tick()
}

func (w *Window) restart() {
	if err := w.p.Capture.Restart(); err != nil {
		w.root.SetStateLabel("State: capture error")
	}
}

func (w *Window) stop() { w.p.Capture.Disable() }

func (w *Window) exit() {
	if w.closing {
		return
	}
	w.closing = true
	if w.afterID != "" {
		tk.TclAfterCancel(w.afterID)
	}
	w.root.Close()
	tk.Destroy(tk.App)
}

var _ presenter.CaptureView = (*view.RootView)(nil)
