package app

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/soocke/pixel-pulse-go/assets"
	"github.com/soocke/pixel-pulse-go/config"
	"github.com/soocke/pixel-pulse-go/domain/capture"
	"github.com/soocke/pixel-pulse-go/domain/face"
	"github.com/soocke/pixel-pulse-go/domain/pulse"
	"github.com/soocke/pixel-pulse-go/domain/session"
	"github.com/soocke/pixel-pulse-go/ui/model"
)

// AppContainer assembles models, services and the measurement session. Views
// and presenters are attached by Wire.
type AppContainer struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger

	Capture *model.CaptureModel
	Session *model.SessionModel
	Faces   *model.FaceModel
	Metrics *model.MetricsModel

	Grabber    capture.Grabber
	Screen     *capture.ScreenGrabber // set for the screen source only
	CaptureSvc capture.CaptureService
	Locator    face.Locator
	Tracker    *face.TrackingLocator // nil when no detector is tracked
	Estimator  pulse.Estimator
	Measure    *session.Session

	closers []io.Closer
	wired   *Presenters
}

// BuildContainer constructs all components for cfg. Nothing is opened yet;
// the capture device is opened by the capture presenter.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger) (*AppContainer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	c := &AppContainer{Config: cfg, ConfigPath: cfgPath, Logger: logger}
	c.Capture = &model.CaptureModel{}
	c.Session = model.NewSessionModel()
	c.Faces = model.NewFaceModel()
	c.Metrics = model.NewMetricsModel()

	if err := c.buildSource(); err != nil {
		return nil, err
	}
	c.CaptureSvc = capture.NewCaptureService(c.Grabber, logger, cfg.MaxReadFailures)
	c.Estimator = pulse.NewEstimator(cfg, logger)
	c.Measure = session.New(logger, cfg, c.Estimator)
	return c, nil
}

func (c *AppContainer) buildSource() error {
	cfg := c.Config
	switch cfg.Source {
	case config.SourceSynthetic:
		g := capture.NewSyntheticGrabber(cfg.CaptureWidth, cfg.CaptureHeight, cfg.SyntheticBPM, float64(cfg.SyntheticFPS))
		c.Grabber = g
		c.Locator = face.StaticLocator{Box: g.FaceRect()}
		return nil
	case config.SourceScreen:
		c.Screen = capture.NewScreenGrabber(c.selection)
		c.Grabber = c.Screen
	default:
		c.Grabber = capture.NewCameraGrabber(cfg.CameraIndex, cfg.CaptureWidth, cfg.CaptureHeight)
	}

	cascade, err := c.cascadeLocator()
	switch {
	case err == nil:
		c.closers = append(c.closers, cascade)
		c.Tracker = face.NewTrackingLocator(cascade, face.TrackerOptions{
			AnalysisScale: cfg.AnalysisScale,
			Threshold:     cfg.TrackerThreshold,
			HoldFrames:    cfg.TrackerHoldFrames,
		}, c.Logger)
		c.Locator = c.Tracker
	case c.Screen != nil:
		// a selection drawn around the face stands in for detection
		if c.Logger != nil {
			c.Logger.Warn("face detector unavailable, using selection centre", "error", err)
		}
		c.Locator = face.LocatorFunc(centreBox)
	default:
		return fmt.Errorf("face locator: %w", err)
	}
	return nil
}

// cascadeLocator loads the configured cascade. A missing file is looked up
// in the bundled assets, then in the OpenCV install directories.
func (c *AppContainer) cascadeLocator() (*face.CascadeLocator, error) {
	path, err := face.ResolveCascade(c.Config.CascadePath, nil)
	if err != nil {
		name := filepath.Base(c.Config.CascadePath)
		if p, xerr := assets.ExtractCascade(name, filepath.Join(os.TempDir(), "pixel-pulse")); xerr == nil {
			path, err = p, nil
		} else if !errors.Is(xerr, assets.ErrNoCascade) && c.Logger != nil {
			c.Logger.Warn("bundled cascade unusable", "error", xerr)
		}
	}
	if err != nil {
		path, err = face.ResolveCascade(c.Config.CascadePath, face.CascadeDirs())
	}
	if err != nil {
		return nil, err
	}
	if c.Logger != nil {
		c.Logger.Debug("face cascade", "path", path)
	}
	return face.NewCascadeLocator(path)
}

// selection returns the persisted screen selection, or nil for the whole
// screen. The GUI replaces it with the live overlay selection.
func (c *AppContainer) selection() *image.Rectangle {
	cfg := c.Config
	if cfg.SelectionW <= 0 || cfg.SelectionH <= 0 {
		return nil
	}
	r := image.Rect(cfg.SelectionX, cfg.SelectionY, cfg.SelectionX+cfg.SelectionW, cfg.SelectionY+cfg.SelectionH)
	return &r
}

// SelectionChanged drops tracking state after the captured area moved.
func (c *AppContainer) SelectionChanged() {
	if c.Tracker != nil {
		c.Tracker.Reset()
	}
	c.Faces.Clear()
}

// centreBox assumes a face filling the middle of the frame.
func centreBox(frame *image.RGBA) (image.Rectangle, bool) {
	if frame == nil {
		return image.Rectangle{}, false
	}
	b := frame.Bounds()
	dx, dy := b.Dx()/5, b.Dy()/8
	r := image.Rect(b.Min.X+dx, b.Min.Y+dy, b.Max.X-dx, b.Max.Y-dy)
	return r, !r.Empty()
}

// MeasurementDuration is the configured countdown.
func (c *AppContainer) MeasurementDuration() time.Duration {
	return time.Duration(c.Config.MeasurementSeconds) * time.Second
}

// Close stops capture (releasing the device), the worker and the session,
// then frees detector resources. Safe to call more than once.
func (c *AppContainer) Close() error {
	if c == nil {
		return nil
	}
	if c.CaptureSvc != nil {
		c.CaptureSvc.Stop()
	}
	if c.wired != nil {
		c.wired.Measure.Close()
		c.wired.Watcher.Stop()
	}
	if c.Measure != nil {
		c.Measure.Close()
	}
	var errs []error
	for _, cl := range c.closers {
		errs = append(errs, cl.Close())
	}
	c.closers = nil
	return errors.Join(errs...)
}
