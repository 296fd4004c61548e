package images

import (
	"errors"
	"image"
	"image/draw"
)

// ExtractROI cuts a w x h region centred at (cx, cy), shifted inside the frame
// where possible and clamped to its bounds. It guarantees at least 1x1.
// Returns the ROI image (always *image.RGBA) and the rectangle relative to frame.
func ExtractROI(frame *image.RGBA, cx, cy, w, h int) (*image.RGBA, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	b := frame.Bounds()
	w = max(1, min(w, b.Dx()))
	h = max(1, min(h, b.Dy()))
	x0 := min(max(cx-w/2, b.Min.X), b.Max.X-w)
	y0 := min(max(cy-h/2, b.Min.Y), b.Max.Y-h)
	roi := image.Rect(x0, y0, x0+w, y0+h)
	sub := frame.SubImage(roi)
	if rgba, ok := sub.(*image.RGBA); ok {
		return rgba, roi, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, roi.Dx(), roi.Dy()))
	draw.Draw(out, out.Bounds(), sub, roi.Min, draw.Src)
	return out, roi, nil
}

// ForeheadPreview returns the forehead region with some context around it,
// for the zoomed preview next to the live video.
func ForeheadPreview(frame *image.RGBA, forehead image.Rectangle) (*image.RGBA, bool) {
	if frame == nil || forehead.Empty() {
		return nil, false
	}
	c := image.Pt((forehead.Min.X+forehead.Max.X)/2, (forehead.Min.Y+forehead.Max.Y)/2)
	roi, _, err := ExtractROI(frame, c.X, c.Y, forehead.Dx()*5/4, forehead.Dy()*3/2)
	if err != nil {
		return nil, false
	}
	return roi, true
}
