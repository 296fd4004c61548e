// Package face locates a face in a frame and derives the forehead region the
// pulse signal is read from.
package face

import (
	"errors"
	"image"
)

var (
	// ErrDetectorUnavailable is returned when the cascade backend was not
	// compiled in (nocv builds).
	ErrDetectorUnavailable = errors.New("face detector unavailable")
	// ErrCascadeLoad is returned when the cascade file cannot be loaded.
	ErrCascadeLoad = errors.New("cannot load cascade")
)

// DefaultForeheadFraction is the share of the face box height used as the
// forehead region, measured from the top.
const DefaultForeheadFraction = 1.0 / 3.0

// Locator finds at most one face box in a frame. The box is in frame
// coordinates.
type Locator interface {
	Locate(frame *image.RGBA) (image.Rectangle, bool)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(frame *image.RGBA) (image.Rectangle, bool)

func (f LocatorFunc) Locate(frame *image.RGBA) (image.Rectangle, bool) { return f(frame) }

// Forehead returns the top fraction of the face box with the same horizontal
// extent. Empty boxes yield an empty rectangle.
func Forehead(face image.Rectangle, fraction float64) image.Rectangle {
	if face.Empty() {
		return image.Rectangle{}
	}
	if fraction <= 0 || fraction > 1 {
		fraction = DefaultForeheadFraction
	}
	h := int(float64(face.Dy()) * fraction)
	if h < 1 {
		h = 1
	}
	return image.Rect(face.Min.X, face.Min.Y, face.Max.X, face.Min.Y+h)
}

// CropRGBA returns the part of frame inside r, clamped to the frame bounds.
// The result shares pixels with frame; ok is false when nothing remains.
func CropRGBA(frame *image.RGBA, r image.Rectangle) (*image.RGBA, bool) {
	if frame == nil {
		return nil, false
	}
	r = r.Intersect(frame.Bounds())
	if r.Empty() {
		return nil, false
	}
	return frame.SubImage(r).(*image.RGBA), true
}

// StaticLocator reports a fixed box, clipped to the frame. Used for the
// synthetic source and for screen selections that frame a face already.
type StaticLocator struct {
	Box image.Rectangle
}

func (s StaticLocator) Locate(frame *image.RGBA) (image.Rectangle, bool) {
	if frame == nil {
		return image.Rectangle{}, false
	}
	r := s.Box.Intersect(frame.Bounds())
	return r, !r.Empty()
}
