package images

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Overlay colours.
var (
	FaceColor     = color.RGBA{R: 255, A: 255}
	ForeheadColor = color.RGBA{G: 255, A: 255}
	TextColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	WarnColor     = color.RGBA{R: 255, G: 200, A: 255}
	cardBG        = color.RGBA{A: 255}
)

const (
	lineHeight = 16
	textMargin = 8
	boxWidth   = 2
)

// Annotation describes what Annotate draws on a frame.
type Annotation struct {
	Face     image.Rectangle
	Forehead image.Rectangle
	Lines    []string // top-left, first line uses Highlight when set
	Footer   []string // bottom-left
	// Highlight colours the first line (countdown or state).
	Highlight color.Color
}

// Annotate returns a copy of frame with the face box, forehead box and text
// lines drawn on it. The frame itself is not modified.
func Annotate(frame *image.RGBA, a Annotation) *image.RGBA {
	if frame == nil {
		return nil
	}
	b := frame.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), frame, b.Min, draw.Src)
	if !a.Face.Empty() {
		DrawRect(out, a.Face.Sub(b.Min), FaceColor, boxWidth)
	}
	if !a.Forehead.Empty() {
		DrawRect(out, a.Forehead.Sub(b.Min), ForeheadColor, boxWidth)
	}
	for i, line := range a.Lines {
		c := color.Color(TextColor)
		if i == 0 && a.Highlight != nil {
			c = a.Highlight
		}
		DrawText(out, textMargin, textMargin+lineHeight*(i+1), line, c)
	}
	for i, line := range a.Footer {
		y := out.Bounds().Dy() - textMargin - lineHeight*(len(a.Footer)-1-i)
		DrawText(out, textMargin, y, line, TextColor)
	}
	return out
}

// ResultsCard renders the summary window content: a title and one line per
// entry on a black canvas of w x h.
func ResultsCard(title string, lines []string, w, h int) *image.RGBA {
	if w < 1 {
		w = 500
	}
	if h < 1 {
		h = 300
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: cardBG}, image.Point{}, draw.Src)
	DrawText(out, 20, 40, title, ForeheadColor)
	for i, line := range lines {
		DrawText(out, 20, 90+i*40, line, TextColor)
	}
	return out
}

// DrawRect strokes r with the given line width, clipped to img.
func DrawRect(img draw.Image, r image.Rectangle, c color.Color, width int) {
	if width < 1 {
		width = 1
	}
	src := &image.Uniform{C: c}
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		e = e.Intersect(img.Bounds())
		if !e.Empty() {
			draw.Draw(img, e, src, image.Point{}, draw.Over)
		}
	}
}

// DrawText draws s with its baseline at (x, y) using the built-in bitmap face.
func DrawText(img draw.Image, x, y int, s string, c color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{C: c},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
