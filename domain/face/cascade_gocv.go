//go:build !nocv

package face

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	cascadeScaleFactor  = 1.1
	cascadeMinNeighbors = 5
)

// CascadeLocator detects faces with an OpenCV Haar cascade on the grayscale
// frame and reports the first box found.
type CascadeLocator struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
	minSize    image.Point
}

// NewCascadeLocator loads the cascade at path (for example
// haarcascade_frontalface_default.xml).
func NewCascadeLocator(path string) (*CascadeLocator, error) {
	c := gocv.NewCascadeClassifier()
	if !c.Load(path) {
		c.Close()
		return nil, fmt.Errorf("%w: %s", ErrCascadeLoad, path)
	}
	return &CascadeLocator{classifier: c, minSize: image.Pt(48, 48)}, nil
}

func (c *CascadeLocator) Locate(frame *image.RGBA) (image.Rectangle, bool) {
	if frame == nil || frame.Rect.Empty() {
		return image.Rectangle{}, false
	}
	src, err := rgbaMat(frame)
	if err != nil {
		return image.Rectangle{}, false
	}
	defer src.Close()
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray)

	c.mu.Lock()
	rects := c.classifier.DetectMultiScaleWithParams(gray, cascadeScaleFactor, cascadeMinNeighbors, 0, c.minSize, image.Point{})
	c.mu.Unlock()
	if len(rects) == 0 {
		return image.Rectangle{}, false
	}
	return rects[0].Add(frame.Rect.Min), true
}

// Close releases the classifier.
func (c *CascadeLocator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.classifier.Close()
}

// rgbaMat wraps frame pixels in a Mat, copying through ImageToMatRGBA when
// the rows are not contiguous.
func rgbaMat(frame *image.RGBA) (gocv.Mat, error) {
	w, h := frame.Rect.Dx(), frame.Rect.Dy()
	if frame.Stride == w*4 && len(frame.Pix) >= w*h*4 {
		off := frame.PixOffset(frame.Rect.Min.X, frame.Rect.Min.Y)
		return gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, frame.Pix[off:off+w*h*4])
	}
	return gocv.ImageToMatRGBA(frame)
}
