package view

import (
	"image"
	"log/slog"
	"time"

	"github.com/soocke/pixel-pulse-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ResultsWindow is a Toplevel showing the results card. It closes itself
// after a timeout unless pinned.
type ResultsWindow struct {
	timeout time.Duration
	logger  *slog.Logger

	win     *ToplevelWidget
	label   *LabelWidget
	pinBtn  *ButtonWidget
	photo   *Img
	afterID string
	pinned  bool
}

// NewResultsWindow returns a closed results window. timeout <= 0 keeps the
// window open until closed by the user.
func NewResultsWindow(timeout time.Duration, logger *slog.Logger) *ResultsWindow {
	return &ResultsWindow{timeout: timeout, logger: logger}
}

// Show opens (or refreshes) the window with card and restarts the timer.
func (w *ResultsWindow) Show(card image.Image) {
	if w == nil || card == nil {
		return
	}
	if w.win == nil {
		w.build()
	}
	photo := NewPhoto(Data(images.EncodePNG(card)))
	if w.photo != nil {
		w.photo.Delete()
	}
	w.photo = photo
	w.label.Configure(Image(photo))
	w.pinned = false
	w.pinBtn.Configure(Txt("Keep Open"))
	w.schedule()
}

func (w *ResultsWindow) build() {
	win := App.Toplevel()
	win.WmTitle("Results")
	w.win = win
	w.label = win.Label(Borderwidth(0))
	Grid(w.label, Row(0), Column(0), Columnspan(2))
	w.pinBtn = win.Button(Txt("Keep Open"), Command(w.togglePin))
	Grid(w.pinBtn, Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	closeBtn := win.Button(Txt("Close"), Command(w.Close))
	Grid(closeBtn, Row(1), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	WmProtocol(win.Window, "WM_DELETE_WINDOW", w.Close)
	Bind(win, "<Escape>", Command(w.Close))
}

func (w *ResultsWindow) togglePin() {
	w.pinned = !w.pinned
	if w.pinned {
		w.cancel()
		w.pinBtn.Configure(Txt("Unpin"))
		return
	}
	w.pinBtn.Configure(Txt("Keep Open"))
	w.schedule()
}

func (w *ResultsWindow) schedule() {
	w.cancel()
	if w.timeout <= 0 || w.pinned {
		return
	}
	w.afterID = TclAfter(w.timeout, func() {
		w.afterID = ""
		w.Close()
	})
}

func (w *ResultsWindow) cancel() {
	if w.afterID != "" {
		TclAfterCancel(w.afterID)
		w.afterID = ""
	}
}

// Close destroys the window if open.
func (w *ResultsWindow) Close() {
	if w == nil {
		return
	}
	w.cancel()
	if w.photo != nil {
		w.photo.Delete()
		w.photo = nil
	}
	if w.win == nil {
		return
	}
	Destroy(w.win)
	w.win, w.label, w.pinBtn = nil, nil, nil
	if w.logger != nil {
		w.logger.Debug("results window closed")
	}
}
