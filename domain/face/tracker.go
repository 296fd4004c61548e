package face

import (
	"image"
	"log/slog"
	"math"
	"sync"

	"github.com/disintegration/gift"
)

// TrackerOptions tunes the TrackingLocator.
type TrackerOptions struct {
	// AnalysisScale downsizes frames before matching (0 < s <= 1).
	AnalysisScale float64
	// Threshold is the minimum NCC score accepted as the same face.
	Threshold float64
	// HoldFrames is how many consecutive detector misses are bridged.
	HoldFrames int
	// SearchRadius is the neighbourhood searched around the last box, as a
	// fraction of its width.
	SearchRadius float64
}

func DefaultTrackerOptions() TrackerOptions {
	return TrackerOptions{AnalysisScale: 0.5, Threshold: 0.70, HoldFrames: 15, SearchRadius: 0.25}
}

var trackerScales = []float64{0.95, 1.0, 1.05}

// TrackingLocator wraps a detector. Detector hits refresh the face patch;
// on a miss the patch is searched near the last box with normalised
// cross-correlation, for at most HoldFrames frames in a row.
type TrackingLocator struct {
	inner  Locator
	opts   TrackerOptions
	logger *slog.Logger

	mu     sync.Mutex
	last   image.Rectangle // analysis coordinates
	tmpl   *patch
	misses int
	hits   uint64
	bridge uint64
}

func NewTrackingLocator(inner Locator, opts TrackerOptions, logger *slog.Logger) *TrackingLocator {
	def := DefaultTrackerOptions()
	if opts.AnalysisScale <= 0 || opts.AnalysisScale > 1 {
		opts.AnalysisScale = def.AnalysisScale
	}
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		opts.Threshold = def.Threshold
	}
	if opts.HoldFrames < 0 {
		opts.HoldFrames = 0
	}
	if opts.SearchRadius <= 0 {
		opts.SearchRadius = def.SearchRadius
	}
	return &TrackingLocator{inner: inner, opts: opts, logger: logger}
}

func (t *TrackingLocator) Locate(frame *image.RGBA) (image.Rectangle, bool) {
	if frame == nil || frame.Rect.Empty() {
		return image.Rectangle{}, false
	}
	gray := t.analysisImage(frame)
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.inner != nil {
		if r, ok := t.inner.Locate(frame); ok {
			t.last = t.toAnalysis(r, frame.Rect.Min)
			t.tmpl = newPatch(gray, t.last)
			t.misses = 0
			t.hits++
			return r, true
		}
	}
	if t.tmpl == nil {
		return image.Rectangle{}, false
	}
	t.misses++
	if t.misses > t.opts.HoldFrames {
		t.reset()
		return image.Rectangle{}, false
	}
	radius := int(math.Round(float64(t.last.Dx()) * t.opts.SearchRadius))
	res := multiScaleMatch(buildGrayPrecomp(gray), t.tmpl, MultiScaleOptions{
		Scales:      trackerScales,
		NCC:         NCCOptions{Threshold: t.opts.Threshold, Stride: 2, Refine: true},
		StopOnScore: 0.97,
		Around:      t.last,
		Radius:      max(radius, 2),
	})
	if !res.Found {
		if t.logger != nil {
			t.logger.Debug("face tracker miss", "score", res.Score, "misses", t.misses)
		}
		return image.Rectangle{}, false
	}
	t.last = res.Box
	t.bridge++
	return t.fromAnalysis(res.Box, frame.Rect.Min).Intersect(frame.Rect), true
}

// Reset forgets the tracked face.
func (t *TrackingLocator) Reset() {
	t.mu.Lock()
	t.reset()
	t.mu.Unlock()
}

func (t *TrackingLocator) reset() {
	t.tmpl = nil
	t.last = image.Rectangle{}
	t.misses = 0
}

// Stats reports detector hits and frames bridged by the tracker.
func (t *TrackingLocator) Stats() (hits, bridged uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hits, t.bridge
}

// analysisImage downsizes frame and converts it to grayscale.
func (t *TrackingLocator) analysisImage(frame *image.RGBA) *image.Gray {
	var filters []gift.Filter
	if t.opts.AnalysisScale < 1 {
		w := max(1, int(float64(frame.Rect.Dx())*t.opts.AnalysisScale))
		h := max(1, int(float64(frame.Rect.Dy())*t.opts.AnalysisScale))
		filters = append(filters, gift.Resize(w, h, gift.LinearResampling))
	}
	filters = append(filters, gift.Grayscale())
	g := gift.New(filters...)
	dst := image.NewGray(g.Bounds(frame.Bounds()))
	g.Draw(dst, frame)
	return dst
}

func (t *TrackingLocator) toAnalysis(r image.Rectangle, origin image.Point) image.Rectangle {
	s := t.opts.AnalysisScale
	r = r.Sub(origin)
	return image.Rect(
		int(float64(r.Min.X)*s), int(float64(r.Min.Y)*s),
		int(float64(r.Max.X)*s), int(float64(r.Max.Y)*s),
	)
}

func (t *TrackingLocator) fromAnalysis(r image.Rectangle, origin image.Point) image.Rectangle {
	s := t.opts.AnalysisScale
	return image.Rect(
		int(math.Round(float64(r.Min.X)/s)), int(math.Round(float64(r.Min.Y)/s)),
		int(math.Round(float64(r.Max.X)/s)), int(math.Round(float64(r.Max.Y)/s)),
	).Add(origin)
}
