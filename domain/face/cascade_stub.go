//go:build nocv

package face

import "image"

// CascadeLocator is unavailable in builds without OpenCV.
type CascadeLocator struct{}

func NewCascadeLocator(path string) (*CascadeLocator, error) {
	return nil, ErrDetectorUnavailable
}

func (c *CascadeLocator) Locate(frame *image.RGBA) (image.Rectangle, bool) {
	return image.Rectangle{}, false
}

func (c *CascadeLocator) Close() error { return nil }
