package face

import (
	"image"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// MultiScaleOptions configures multi-scale patch matching around a previous
// box. Scales are factors applied to the patch (e.g. 0.95, 1.0, 1.05);
// StopOnScore disables when 0.
type MultiScaleOptions struct {
	Scales      []float64
	NCC         NCCOptions
	StopOnScore float64
	// Around is the previous box in analysis coordinates; candidates keep
	// their centre within Radius pixels of its centre. Empty scans the frame.
	Around image.Rectangle
	Radius int
}

// MultiScaleResult is the best match found across scales.
type MultiScaleResult struct {
	Box             image.Rectangle
	Score           float64
	Scale           float64
	Found           bool
	Duration        time.Duration
	ScalesEvaluated int
}

// multiScaleMatch evaluates the patch at every scale in parallel and returns
// the best match.
func multiScaleMatch(pre *grayPrecomp, base *patch, opts MultiScaleOptions) MultiScaleResult {
	if pre == nil || base == nil {
		return MultiScaleResult{}
	}
	scales := opts.Scales
	if len(scales) == 0 {
		scales = []float64{1.0}
	}

	var earlyStop atomic.Bool
	results := make(chan MultiScaleResult, len(scales))
	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.NumCPU())
	var totalDur atomic.Int64
	var scalesCount atomic.Int64

	for _, factor := range scales {
		if factor <= 0 {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(factor float64) {
			defer wg.Done()
			defer func() { <-sem }()
			if earlyStop.Load() {
				return
			}
			p := base.scale(factor)
			if p == nil {
				return
			}
			nccOpts := opts.NCC
			if !opts.Around.Empty() {
				c := center(opts.Around)
				tl := image.Pt(c.X-p.W/2, c.Y-p.H/2)
				nccOpts.Search = image.Rect(tl.X-opts.Radius, tl.Y-opts.Radius, tl.X+opts.Radius+1, tl.Y+opts.Radius+1)
			}
			res := matchNCC(pre, p, nccOpts)
			if res.Score <= -1 {
				return
			}
			msr := MultiScaleResult{
				Box:   image.Rect(res.X, res.Y, res.X+p.W, res.Y+p.H),
				Score: res.Score,
				Scale: factor,
				Found: res.Found,
			}
			if opts.NCC.DebugTiming && res.Dur > 0 {
				totalDur.Add(res.Dur.Nanoseconds())
			}
			scalesCount.Add(1)
			if opts.StopOnScore > 0 && res.Score >= opts.StopOnScore {
				earlyStop.Store(true)
			}
			results <- msr
		}(factor)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	best := MultiScaleResult{Score: -1}
	for r := range results {
		if r.Score > best.Score {
			best = r
		}
	}
	if dur := totalDur.Load(); dur > 0 {
		best.Duration = time.Duration(dur)
	}
	best.ScalesEvaluated = int(scalesCount.Load())
	return best
}

func center(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}
