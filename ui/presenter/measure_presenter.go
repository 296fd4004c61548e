package presenter

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/soocke/pixel-pulse-go/domain/capture"
	"github.com/soocke/pixel-pulse-go/domain/face"
	"github.com/soocke/pixel-pulse-go/domain/pulse"
	"github.com/soocke/pixel-pulse-go/domain/session"
	"github.com/soocke/pixel-pulse-go/ui/images"
	"github.com/soocke/pixel-pulse-go/ui/model"
)

// DefaultMeasureRate caps how many frames per second are handed to the worker.
const DefaultMeasureRate = 30

const (
	// measureBurst absorbs tick jitter: a UI tick slightly faster than the
	// rate must not cost every other frame.
	measureBurst = 2
	// observationQueue holds per-frame results until the next UI tick. It is
	// far deeper than the frames arriving between two ticks.
	observationQueue = 32
)

// FrameSource supplies the most recent captured frame.
type FrameSource interface {
	Running() bool
	LatestFrame() capture.FrameSnapshot
}

// MeasureSession narrows the session contract to what the worker feeds.
type MeasureSession interface {
	session.StateSource
	session.SampleSink
	Remaining(now time.Time) time.Duration
}

// InterimSource provides the latest interim metrics for the overlay.
type InterimSource interface {
	Interim() (pulse.Metrics, bool)
}

// MeasureView describes the UI surface updated by the presenter. A nil view
// is allowed (headless).
type MeasureView interface {
	UpdateCapture(img image.Image)
	UpdateForehead(img image.Image)
}

type measureTask struct {
	snapshot  capture.FrameSnapshot
	state     session.State
	remaining time.Duration
	interim   pulse.Metrics
	hasMetric bool
	annotate  bool
}

type measureResult struct {
	sequence  uint64
	err       error
	found     bool
	face      image.Rectangle
	forehead  image.Rectangle
	sample    pulse.Sample
	hasSample bool
	annotated image.Image
	preview   image.Image
	duration  time.Duration
}

type measurePreview struct {
	annotated image.Image
	preview   image.Image
}

// MeasurePresenter moves frames from the capture service through a single
// worker that locates the face, crops the forehead and averages it into a
// sample. The work and preview channels hold one item each and newer items
// replace pending ones. Observations (face box and sample) are queued so no
// processed sample is lost.
type MeasurePresenter struct {
	Enabled  func() bool
	Source   FrameSource
	Locator  face.Locator
	Session  MeasureSession
	Interim  InterimSource
	View     MeasureView
	Model    *model.FaceModel
	Fraction float64
	logger   *slog.Logger

	workerOnce sync.Once
	stopOnce   sync.Once
	workCh     chan measureTask
	resultCh   chan measureResult
	previewCh  chan measurePreview
	quit       chan struct{}
	dropped    atomic.Uint64

	limiter *rate.Limiter
	now     func() time.Time
	lastSeq uint64
}

// NewMeasurePresenter constructs a measure presenter. perSecond <= 0 selects
// DefaultMeasureRate.
func NewMeasurePresenter(enabled func() bool, source FrameSource, locator face.Locator, sess MeasureSession, interim InterimSource, view MeasureView, faces *model.FaceModel, fraction float64, perSecond float64, logger *slog.Logger) *MeasurePresenter {
	if perSecond <= 0 {
		perSecond = DefaultMeasureRate
	}
	if fraction <= 0 {
		fraction = face.DefaultForeheadFraction
	}
	return &MeasurePresenter{
		Enabled:  enabled,
		Source:   source,
		Locator:  locator,
		Session:  sess,
		Interim:  interim,
		View:     view,
		Model:    faces,
		Fraction: fraction,
		logger:   logger,
		workCh:    make(chan measureTask, 1),
		resultCh:  make(chan measureResult, observationQueue),
		previewCh: make(chan measurePreview, 1),
		quit:      make(chan struct{}),
		limiter:   rate.NewLimiter(rate.Limit(perSecond), measureBurst),
		now:       time.Now,
	}
}

// ProcessFrame handles finished worker results and dispatches the newest
// frame. Called from the UI tick.
func (p *MeasurePresenter) ProcessFrame() {
	if p == nil || p.Enabled == nil || p.Source == nil || p.Locator == nil || p.Session == nil {
		return
	}
	p.ensureWorker()

	for {
		select {
		case res := <-p.resultCh:
			p.handleResult(res)
		default:
			goto drained
		}
	}

drained:
	select {
	case pv := <-p.previewCh:
		p.showPreview(pv)
	default:
	}
	if !p.Enabled() || !p.Source.Running() {
		return
	}
	snapshot := p.Source.LatestFrame()
	if snapshot.Image == nil {
		return
	}
	now := p.now()
	if !p.admit(snapshot.Sequence, now) {
		return
	}
	task := measureTask{
		snapshot:  snapshot,
		state:     p.Session.Current(),
		remaining: p.Session.Remaining(now),
		annotate:  p.View != nil,
	}
	if p.Interim != nil {
		task.interim, task.hasMetric = p.Interim.Interim()
	}
	p.dispatch(task)
}

// admit reports whether the frame seq goes to the worker at now. Each frame
// is admitted at most once and the rate limit caps the rest.
func (p *MeasurePresenter) admit(seq uint64, now time.Time) bool {
	if seq == 0 || seq == p.lastSeq {
		return false
	}
	if !p.limiter.AllowN(now, 1) {
		return false
	}
	p.lastSeq = seq
	return true
}

// Dropped returns how many observations were discarded because the UI did
// not drain them in time.
func (p *MeasurePresenter) Dropped() uint64 { return p.dropped.Load() }

// Close stops the worker goroutine. Pending work is discarded.
func (p *MeasurePresenter) Close() {
	if p == nil {
		return
	}
	p.stopOnce.Do(func() { close(p.quit) })
}

func (p *MeasurePresenter) ensureWorker() {
	p.workerOnce.Do(func() {
		go p.runWorker()
	})
}

func (p *MeasurePresenter) runWorker() {
	defer func() {
		if r := recover(); r != nil && p.logger != nil {
			p.logger.Error("measure worker panic", "error", r)
		}
	}()
	for {
		var task measureTask
		select {
		case <-p.quit:
			return
		case task = <-p.workCh:
		}
		p.deliver(p.execute(task))
	}
}

// deliver queues the observation and replaces any pending preview.
func (p *MeasurePresenter) deliver(res measureResult) {
	pv := measurePreview{annotated: res.annotated, preview: res.preview}
	res.annotated, res.preview = nil, nil
	select {
	case p.resultCh <- res:
	default:
		// UI stalled for a whole queue of frames; keep the newest
		select {
		case <-p.resultCh:
			if n := p.dropped.Add(1); p.logger != nil && n%observationQueue == 1 {
				p.logger.Warn("measure observations dropped", "dropped", n)
			}
		default:
		}
		select {
		case p.resultCh <- res:
		default:
		}
	}
	if pv.annotated == nil && pv.preview == nil {
		return
	}
	select {
	case p.previewCh <- pv:
	default:
		select {
		case <-p.previewCh:
		default:
		}
		select {
		case p.previewCh <- pv:
		default:
		}
	}
}

func (p *MeasurePresenter) dispatch(task measureTask) {
	select {
	case p.workCh <- task:
	default:
		select {
		case <-p.workCh:
		default:
		}
		select {
		case p.workCh <- task:
		default:
		}
	}
}

func (p *MeasurePresenter) execute(task measureTask) measureResult {
	res := measureResult{sequence: task.snapshot.Sequence}
	frame := task.snapshot.Image
	if frame == nil {
		res.err = errors.New("nil frame")
		return res
	}
	start := time.Now()
	box, ok := p.Locator.Locate(frame)
	if ok {
		res.face = box
		res.forehead = face.Forehead(box, p.Fraction)
		if roi, cropped := face.CropRGBA(frame, res.forehead); cropped {
			res.sample, res.hasSample = pulse.NewSample(roi, task.snapshot.CapturedAt)
			res.found = res.hasSample
		}
	}
	res.duration = time.Since(start)
	if task.annotate {
		res.annotated = images.Annotate(frame, annotationFor(task, res))
		if res.found {
			if zoom, ok := images.ForeheadPreview(frame, res.forehead); ok {
				res.preview = zoom
			}
		}
	}
	return res
}

func annotationFor(task measureTask, res measureResult) images.Annotation {
	a := images.Annotation{Face: res.face, Forehead: res.forehead}
	switch {
	case task.state.Active():
		secs := int((task.remaining + time.Second - 1) / time.Second)
		a.Lines = append(a.Lines, fmt.Sprintf("Measuring: %ds", secs))
		a.Highlight = images.ForeheadColor
		if task.state != session.StateMeasuring {
			a.Lines = append(a.Lines, "State: "+task.state.String())
			a.Highlight = images.WarnColor
		}
	default:
		a.Lines = append(a.Lines, "State: "+task.state.String())
		a.Highlight = color.RGBA{R: 200, G: 200, B: 200, A: 255}
	}
	if task.hasMetric {
		a.Footer = task.interim.Lines()
	}
	return a
}

func (p *MeasurePresenter) handleResult(res measureResult) {
	if res.err != nil {
		if p.logger != nil {
			p.logger.Error("measure", "error", res.err, "sequence", res.sequence)
		}
		return
	}
	state := p.Session.Current()
	if res.found {
		if p.Model != nil {
			p.Model.SetFace(res.face, res.forehead, time.Now())
		}
		if state != session.StateMeasuring {
			p.Session.FaceFound()
		}
		p.Session.AddSample(res.sample)
	} else {
		if p.Model != nil {
			p.Model.Clear()
		}
		if state == session.StateMeasuring {
			p.Session.FaceLost()
		}
	}
}

func (p *MeasurePresenter) showPreview(pv measurePreview) {
	if p.View == nil {
		return
	}
	if pv.annotated != nil {
		p.View.UpdateCapture(pv.annotated)
	}
	if pv.preview != nil {
		p.View.UpdateForehead(pv.preview)
	}
}
