package app

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/soocke/pixel-pulse-go/domain/capture"
	"github.com/soocke/pixel-pulse-go/ui/console"
)

// Process exit codes.
const (
	ExitOK                = 0
	ExitCaptureFailure    = 1 // device could not be opened or reading failed
	ExitMeasurementFailed = 2
	ExitInterrupted       = 130
)

const headlessTick = 33 * time.Millisecond

// RunHeadless measures once without a window, printing progress to out. It
// returns the process exit code. The capture device is released on every
// return path.
func RunHeadless(ctx context.Context, c *AppContainer, out io.Writer) int {
	view := console.New(out, c.MeasurementDuration())
	p := c.Wire(view, nil, nil, false, nil)
	defer func() {
		if err := c.Close(); err != nil && c.Logger != nil {
			c.Logger.Error("shutdown", "error", err)
		}
	}()

	if err := p.Capture.Enable(); err != nil {
		if errors.Is(err, capture.ErrBackendUnavailable) {
			view.Error("camera support not compiled in")
		} else {
			view.Error("Could not access camera")
		}
		return ExitCaptureFailure
	}
	done := c.CaptureSvc.Done()

	ticker := time.NewTicker(headlessTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if c.Logger != nil {
				c.Logger.Info("interrupted")
			}
			return ExitInterrupted
		case <-done:
			err := c.CaptureSvc.Err()
			p.Capture.CaptureStopped(err)
			view.Error("Error reading camera frame")
			return ExitCaptureFailure
		case res := <-view.Finished():
			if res.OK() {
				return ExitOK
			}
			return ExitMeasurementFailed
		case <-ticker.C:
			p.Loop.Tick()
		}
	}
}
