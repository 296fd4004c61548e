package capture

import (
	"fmt"
	"image"
	"sync/atomic"

	"github.com/vova616/screenshot"
)

// ScreenGrabber captures the desktop, for measuring a face shown on screen
// (a video call for example). When the selection provider yields a
// non-empty rectangle only that area is captured.
type ScreenGrabber struct {
	selFn  atomic.Pointer[func() *image.Rectangle]
	screen image.Rectangle
	open   bool
}

func NewScreenGrabber(selectionFn func() *image.Rectangle) *ScreenGrabber {
	g := &ScreenGrabber{}
	g.SetSelectionProvider(selectionFn)
	return g
}

// SetSelectionProvider replaces the selection callback. Safe to call while
// the capture loop is running.
func (g *ScreenGrabber) SetSelectionProvider(fn func() *image.Rectangle) {
	if fn == nil {
		g.selFn.Store(nil)
		return
	}
	g.selFn.Store(&fn)
}

func (g *ScreenGrabber) Open() error {
	r, err := screenshot.ScreenRect()
	if err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if r.Empty() {
		return fmt.Errorf("screen: invalid screen size %v", r)
	}
	g.screen = r
	g.open = true
	return nil
}

func (g *ScreenGrabber) Grab() (*image.RGBA, error) {
	if !g.open {
		return nil, ErrNotOpen
	}
	var (
		img *image.RGBA
		err error
	)
	if sel := g.selection(); !sel.Empty() {
		img, err = screenshot.CaptureRect(sel)
	} else {
		img, err = screenshot.CaptureScreen()
	}
	if err != nil {
		return nil, fmt.Errorf("screen: %w", err)
	}
	out := copyFrame(img)
	// screenshot leaves alpha undefined on some platforms
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xFF
	}
	return out, nil
}

// selection returns the user selection clipped to the screen, or an empty
// rectangle when there is none.
func (g *ScreenGrabber) selection() image.Rectangle {
	fn := g.selFn.Load()
	if fn == nil {
		return image.Rectangle{}
	}
	r := (*fn)()
	if r == nil {
		return image.Rectangle{}
	}
	return r.Intersect(g.screen)
}

func (g *ScreenGrabber) Close() error {
	g.open = false
	return nil
}
