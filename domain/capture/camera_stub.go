//go:build nocv

package capture

import "image"

// CameraGrabber is unavailable in builds without OpenCV.
type CameraGrabber struct{ index int }

func NewCameraGrabber(index, width, height int) *CameraGrabber {
	return &CameraGrabber{index: index}
}

func (g *CameraGrabber) Open() error                { return ErrBackendUnavailable }
func (g *CameraGrabber) Grab() (*image.RGBA, error) { return nil, ErrBackendUnavailable }
func (g *CameraGrabber) Close() error               { return nil }
