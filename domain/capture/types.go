package capture

import (
	"errors"
	"image"
)

var (
	// ErrBackendUnavailable is returned by grabbers whose native backend was
	// not compiled in (see the nocv build tag).
	ErrBackendUnavailable = errors.New("capture backend unavailable")
	// ErrCameraUnavailable is returned when the device could not be opened.
	ErrCameraUnavailable = errors.New("camera unavailable")
	// ErrEmptyFrame is returned when a read succeeds but yields no pixels.
	ErrEmptyFrame = errors.New("empty frame")
	// ErrNotOpen is returned by Grab before Open or after Close.
	ErrNotOpen = errors.New("grabber not open")
)

// Grabber is a frame source device. Open acquires it, Grab reads one frame
// and Close releases it. Implementations need not be safe for concurrent use;
// the capture service calls them from a single goroutine.
type Grabber interface {
	Open() error
	Grab() (*image.RGBA, error)
	Close() error
}

// FrameSource provides read-only access to captured frames.
// LatestFrame returns the freshest snapshot while Running reports activity.
type FrameSource interface {
	LatestFrame() FrameSnapshot
	Running() bool
}

// SelectionRectProvider returns the current selection rectangle, if any.
type SelectionRectProvider interface{ SelectionRect() *image.Rectangle }

// ServiceContract exposes lifecycle control for capture services.
type ServiceContract interface {
	Start() error
	Stop()
	Running() bool
}
