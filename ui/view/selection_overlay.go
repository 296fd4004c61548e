package view

import (
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/soocke/pixel-pulse-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// SelectionOverlay lets the user frame the part of the screen that shows the
// face (video call, recorded clip) when capturing from the screen.
type SelectionOverlay interface {
	OpenOrFocus()
	Clear()
	ActiveRect() *image.Rectangle
}

type selectionOverlay struct {
	logger    *slog.Logger
	cfg       *config.Config
	cfgPath   string
	selection atomic.Pointer[image.Rectangle]
	onChange  func()
	win       *ToplevelWidget
}

// NewSelectionOverlay creates a new overlay manager. onChange runs on the Tk
// thread after the selection was confirmed or cleared.
func NewSelectionOverlay(cfg *config.Config, cfgPath string, logger *slog.Logger, onChange func()) SelectionOverlay {
	v := &selectionOverlay{logger: logger, cfg: cfg, cfgPath: cfgPath, onChange: onChange}
	if cfg != nil && cfg.SelectionW > 0 && cfg.SelectionH > 0 {
		rect := image.Rect(cfg.SelectionX, cfg.SelectionY, cfg.SelectionX+cfg.SelectionW, cfg.SelectionY+cfg.SelectionH)
		v.selection.Store(&rect)
	}
	return v
}

func (v *selectionOverlay) OpenOrFocus() {
	if v.win != nil {
		WmGeometry(v.win.Window)
		return
	}
	win := App.Toplevel(Borderwidth(2), Background("#008080"))
	win.WmTitle("Measurement Area")
	v.win = win
	x, y, w, h := 480, 240, 640, 480
	if r := v.ActiveRect(); r != nil {
		x, y, w, h = r.Min.X, r.Min.Y, r.Dx(), r.Dy()
	}
	WmGeometry(win.Window, fmt.Sprintf("%dx%d+%d+%d", w, h, x, y))
	WmAttributes(win.Window, "-topmost", 1)
	if runtime.GOOS == "windows" {
		WmAttributes(win.Window, "-toolwindow", true)
		WmAttributes(win.Window, "-transparentcolor", "#008080")
	} else {
		WmAttributes(win.Window, "-alpha", 0.35)
	}
	GridRowConfigure(win.Window, 0, Weight(1))
	GridColumnConfigure(win.Window, 0, Weight(0))
	GridColumnConfigure(win.Window, 1, Weight(1))
	GridColumnConfigure(win.Window, 2, Weight(0))
	left := win.Frame(Width(4), Background("#FFFFFF"))
	Grid(left, Row(0), Column(0), Sticky("ns"))
	center := win.Frame(Background("#008080"))
	Grid(center, Row(0), Column(1), Sticky("nsew"))
	right := win.Frame(Width(4), Background("#FFFFFF"))
	Grid(right, Row(0), Column(2), Sticky("ns"))
	controls := win.Frame()
	Grid(controls, Row(1), Column(0), Columnspan(3), Sticky("we"))
	confirm := win.Button(Txt("Confirm [Enter]"), Command(v.confirm))
	Grid(confirm, In(controls), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	cancel := win.Button(Txt("Cancel [Esc]"), Command(v.destroy))
	Grid(cancel, In(controls), Row(0), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	clear := win.Button(Txt("Whole Screen"), Command(v.Clear))
	Grid(clear, In(controls), Row(0), Column(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Bind(win, "<Return>", Command(v.confirm))
	Bind(win, "<Escape>", Command(v.destroy))
	WmProtocol(win.Window, "WM_DELETE_WINDOW", v.destroy)
}

// Clear drops the selection so the whole screen is captured.
func (v *selectionOverlay) Clear() {
	v.selection.Store(nil)
	if v.cfg != nil {
		v.cfg.SelectionX, v.cfg.SelectionY, v.cfg.SelectionW, v.cfg.SelectionH = 0, 0, 0, 0
		v.save()
	}
	v.destroy()
	if v.onChange != nil {
		v.onChange()
	}
}

func (v *selectionOverlay) confirm() {
	if v.win == nil {
		return
	}
	rect, ok := parseGeometry(WmGeometry(v.win.Window))
	v.destroy()
	if !ok {
		if v.logger != nil {
			v.logger.Warn("selection geometry not understood")
		}
		return
	}
	v.selection.Store(&rect)
	if v.cfg != nil {
		v.cfg.SelectionX, v.cfg.SelectionY = rect.Min.X, rect.Min.Y
		v.cfg.SelectionW, v.cfg.SelectionH = rect.Dx(), rect.Dy()
		v.save()
	}
	if v.logger != nil {
		v.logger.Info("selection set", "rect", rect.String())
	}
	if v.onChange != nil {
		v.onChange()
	}
}

func (v *selectionOverlay) save() {
	if v.cfgPath == "" {
		return
	}
	if err := v.cfg.Save(v.cfgPath); err != nil && v.logger != nil {
		v.logger.Error("config save failed", "error", err)
	}
}

func (v *selectionOverlay) destroy() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
}

// ActiveRect returns the confirmed selection in screen coordinates, or nil.
func (v *selectionOverlay) ActiveRect() *image.Rectangle {
	r := v.selection.Load()
	if r == nil || r.Empty() {
		return nil
	}
	cp := *r
	return &cp
}

// geomRe matches window geometry strings in the format "WIDTHxHEIGHT+X+Y"
var geomRe = regexp.MustCompile(`^(\d+)x(\d+)\+(-?\d+)\+(-?\d+)$`)

// parseGeometry parses a Tk geometry string into a screen rectangle.
func parseGeometry(g string) (image.Rectangle, bool) {
	m := geomRe.FindStringSubmatch(strings.TrimSpace(g))
	if len(m) != 5 {
		return image.Rectangle{}, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, _ := strconv.Atoi(m[3])
	y, _ := strconv.Atoi(m[4])
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}
