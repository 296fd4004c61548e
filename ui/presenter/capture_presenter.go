package presenter

import (
	"log/slog"
	"time"
)

// CaptureModel provides enabled state access.
type CaptureModel interface {
	Enabled() bool
	SetEnabled(bool)
	SetError(error)
}

// LifecycleContract narrows what presenter needs from the capture layer.
type LifecycleContract interface {
	Start() error
	Stop()
}

// CaptureSession exposes the measurement lifecycle events the presenter drives.
type CaptureSession interface {
	Start(now time.Time)
	Halt()
}

// CaptureView updates UI elements affected by capture toggling. State label
// updates are owned by StatePresenter.
type CaptureView interface {
	PreviewReset()
	ConfigEditable(bool)
}

// CapturePresenter owns presentation logic for starting and stopping capture
// together with the measurement session.
type CapturePresenter struct {
	model   CaptureModel
	service LifecycleContract
	session CaptureSession
	view    CaptureView
	logger  *slog.Logger
	now     func() time.Time
}

func NewCapturePresenter(model CaptureModel, service LifecycleContract, session CaptureSession, view CaptureView, logger *slog.Logger) *CapturePresenter {
	return &CapturePresenter{model: model, service: service, session: session, view: view, logger: logger, now: time.Now}
}

func (c *CapturePresenter) ready() bool {
	return c != nil && c.model != nil && c.service != nil && c.session != nil
}

// Enable starts the capture service and a new measurement. Idempotent. A
// start failure is recorded on the model and returned.
func (c *CapturePresenter) Enable() error {
	if !c.ready() {
		return nil
	}
	if c.model.Enabled() {
		return nil
	}
	if err := c.service.Start(); err != nil {
		c.model.SetError(err)
		if c.logger != nil {
			c.logger.Error("capture start failed", "error", err)
		}
		return err
	}
	c.model.SetEnabled(true)
	c.session.Start(c.now())
	if c.view != nil {
		c.view.ConfigEditable(false)
	}
	return nil
}

// Disable stops the capture service and halts the session, resetting the
// preview. Idempotent.
func (c *CapturePresenter) Disable() {
	if !c.ready() {
		return
	}
	if !c.model.Enabled() {
		return
	}
	c.service.Stop()
	c.model.SetEnabled(false)
	c.session.Halt()
	if c.view != nil {
		c.view.PreviewReset()
		c.view.ConfigEditable(true)
	}
}

// Toggle flips enabled state delegating to Enable/Disable.
func (c *CapturePresenter) Toggle() error {
	if !c.ready() {
		return nil
	}
	if c.model.Enabled() {
		c.Disable()
		return nil
	}
	return c.Enable()
}

// Restart begins a fresh measurement, starting capture first if needed.
func (c *CapturePresenter) Restart() error {
	if !c.ready() {
		return nil
	}
	if !c.model.Enabled() {
		return c.Enable()
	}
	c.session.Start(c.now())
	return nil
}

// CaptureStopped is called when the capture loop ended on its own (read
// failures). The session is halted and the error kept on the model.
func (c *CapturePresenter) CaptureStopped(err error) {
	if !c.ready() || !c.model.Enabled() {
		return
	}
	c.model.SetEnabled(false)
	c.model.SetError(err)
	c.session.Halt()
	if c.view != nil {
		c.view.ConfigEditable(true)
	}
	if c.logger != nil {
		c.logger.Error("capture stopped unexpectedly", "error", err)
	}
}
