//go:build !nocv

package capture

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// CameraGrabber reads frames from a local video device through OpenCV.
type CameraGrabber struct {
	index         int
	width, height int
	vc            *gocv.VideoCapture
	bgr           gocv.Mat
	rgba          gocv.Mat
}

// NewCameraGrabber returns a grabber for device index. Width and height are
// requested from the driver when positive; the device may ignore them.
func NewCameraGrabber(index, width, height int) *CameraGrabber {
	return &CameraGrabber{index: index, width: width, height: height}
}

func (g *CameraGrabber) Open() error {
	if g.vc != nil {
		return nil
	}
	vc, err := gocv.OpenVideoCapture(g.index)
	if err != nil {
		return fmt.Errorf("%w: device %d: %v", ErrCameraUnavailable, g.index, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("%w: device %d", ErrCameraUnavailable, g.index)
	}
	if g.width > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(g.width))
	}
	if g.height > 0 {
		vc.Set(gocv.VideoCaptureFrameHeight, float64(g.height))
	}
	g.vc = vc
	g.bgr = gocv.NewMat()
	g.rgba = gocv.NewMat()
	return nil
}

// Grab reads one frame and converts BGR to a pooled RGBA image.
func (g *CameraGrabber) Grab() (*image.RGBA, error) {
	if g.vc == nil {
		return nil, ErrNotOpen
	}
	if ok := g.vc.Read(&g.bgr); !ok {
		return nil, fmt.Errorf("camera %d: read failed", g.index)
	}
	if g.bgr.Empty() {
		return nil, ErrEmptyFrame
	}
	gocv.CvtColor(g.bgr, &g.rgba, gocv.ColorBGRToRGBA)
	w, h := g.rgba.Cols(), g.rgba.Rows()
	data := g.rgba.ToBytes()
	if len(data) < w*h*4 {
		return nil, fmt.Errorf("camera %d: short frame %d bytes for %dx%d", g.index, len(data), w, h)
	}
	img := acquireFrame(image.Rect(0, 0, w, h))
	copy(img.Pix, data)
	return img, nil
}

// Close releases the device and the conversion buffers.
func (g *CameraGrabber) Close() error {
	if g.vc == nil {
		return nil
	}
	err := g.vc.Close()
	g.vc = nil
	g.bgr.Close()
	g.rgba.Close()
	return err
}
