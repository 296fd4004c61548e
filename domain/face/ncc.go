package face

import (
	"image"
	"math"
	"sync"
	"time"
)

// grayPrecomp stores per-frame grayscale values and their summed-area tables
// (integral images). The integrals allow O(1) window sum and variance queries.
type grayPrecomp struct {
	gray       []float64 // per pixel grayscale (length W*H)
	integral   []float64 // summed-area table of grayscale
	integralSq []float64 // summed-area table of grayscale squared
	W, H       int
}

// patch caches grayscale pixels and summary statistics of a face crop used
// as the tracking template. Scaled variants are built lazily and cached.
type patch struct {
	gray  []float32
	W, H  int
	meanT float64
	stdT  float64

	mu     sync.Mutex
	scaled map[[2]int]*patch
}

func newPatchStats(gray []float32, w, h int) *patch {
	var sumT, sumT2 float64
	for _, v := range gray {
		fv := float64(v)
		sumT += fv
		sumT2 += fv * fv
	}
	n := float64(w * h)
	meanT := sumT / n
	varT := (sumT2 - sumT*sumT/n) / n
	stdT := 0.0
	if varT > 0 {
		stdT = math.Sqrt(varT)
	}
	return &patch{gray: gray, W: w, H: h, meanT: meanT, stdT: stdT}
}

// newPatch copies r out of img. It returns nil when r does not fit.
func newPatch(img *image.Gray, r image.Rectangle) *patch {
	if img == nil {
		return nil
	}
	r = r.Intersect(img.Bounds())
	w, h := r.Dx(), r.Dy()
	if w < 2 || h < 2 {
		return nil
	}
	gray := make([]float32, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[img.PixOffset(r.Min.X, r.Min.Y+y):]
		for x := 0; x < w; x++ {
			gray[y*w+x] = float32(row[x])
		}
	}
	return newPatchStats(gray, w, h)
}

// scale returns the patch resized by factor with bilinear interpolation on
// the base grayscale data.
func (p *patch) scale(factor float64) *patch {
	if p == nil || factor <= 0 {
		return nil
	}
	if factor == 1.0 {
		return p
	}
	w := int(float64(p.W) * factor)
	h := int(float64(p.H) * factor)
	if w < 2 || h < 2 {
		return nil
	}
	key := [2]int{w, h}
	p.mu.Lock()
	defer p.mu.Unlock()
	if pc := p.scaled[key]; pc != nil {
		return pc
	}
	gray := make([]float32, w*h)
	fx := float64(p.W) / float64(w)
	fy := float64(p.H) / float64(h)
	bw, bh := p.W, p.H
	src := p.gray
	for y := 0; y < h; y++ {
		ys := (float64(y)+0.5)*fy - 0.5
		if ys < 0 {
			ys = 0
		} else if ys > float64(bh-1) {
			ys = float64(bh - 1)
		}
		y0 := int(math.Floor(ys))
		y1 := min(y0+1, bh-1)
		dy := ys - float64(y0)
		for x := 0; x < w; x++ {
			xs := (float64(x)+0.5)*fx - 0.5
			if xs < 0 {
				xs = 0
			} else if xs > float64(bw-1) {
				xs = float64(bw - 1)
			}
			x0 := int(math.Floor(xs))
			x1 := min(x0+1, bw-1)
			dx := xs - float64(x0)
			top := float64(src[y0*bw+x0])*(1-dx) + float64(src[y0*bw+x1])*dx
			bottom := float64(src[y1*bw+x0])*(1-dx) + float64(src[y1*bw+x1])*dx
			gray[y*w+x] = float32(top*(1-dy) + bottom*dy)
		}
	}
	pc := newPatchStats(gray, w, h)
	if p.scaled == nil {
		p.scaled = make(map[[2]int]*patch)
	}
	p.scaled[key] = pc
	return pc
}

// NCCOptions configures normalized cross-correlation matching.
type NCCOptions struct {
	Threshold float64 // minimum score for a positive match (default 0.70)
	Stride    int     // coarse stride for scanning (default 1)
	Refine    bool    // with Stride>1, rescan around the best window at stride 1
	// Search limits candidate top-left positions to [Min, Max). Empty scans
	// the whole frame.
	Search      image.Rectangle
	DebugTiming bool
}

// NCCResult holds the outcome of a template matching operation.
type NCCResult struct {
	X, Y  int
	Score float64
	Found bool
	Dur   time.Duration // only set with DebugTiming
}

// matchNCC computes normalized cross-correlation between p and the frame
// represented by pre and returns the best position according to opts.
func matchNCC(pre *grayPrecomp, p *patch, opts NCCOptions) NCCResult {
	start := time.Now()
	res := NCCResult{Score: -1}
	if pre == nil || p == nil {
		return res
	}
	W, H := pre.W, pre.H
	w, h := p.W, p.H
	if w == 0 || h == 0 || W < w || H < h || p.stdT <= 1e-9 {
		// a flat patch carries nothing to track
		return res
	}
	if opts.Threshold <= 0 {
		opts.Threshold = 0.70
	}
	stride := opts.Stride
	if stride <= 0 {
		stride = 1
	}
	area := image.Rect(0, 0, W-w+1, H-h+1)
	if !opts.Search.Empty() {
		area = area.Intersect(opts.Search)
		if area.Empty() {
			return res
		}
	}

	n := float64(w * h)
	score := func(x, y int) (float64, bool) {
		sumF := integralSum(pre.integral, W, x, y, x+w-1, y+h-1)
		sumF2 := integralSum(pre.integralSq, W, x, y, x+w-1, y+h-1)
		meanF := sumF / n
		varF := (sumF2 - sumF*sumF/n) / n
		if varF <= 1e-9 {
			return 0, false
		}
		var sumFT float64
		for py := 0; py < h; py++ {
			frow := pre.gray[(y+py)*W+x:]
			trow := p.gray[py*w : (py+1)*w]
			for px, t := range trow {
				sumFT += frow[px] * float64(t)
			}
		}
		denom := n * math.Sqrt(varF) * p.stdT
		if denom <= 0 {
			return 0, false
		}
		return (sumFT - n*meanF*p.meanT) / denom, true
	}

	bestX, bestY, bestScore := area.Min.X, area.Min.Y, -1.0
	for y := area.Min.Y; y < area.Max.Y; y += stride {
		for x := area.Min.X; x < area.Max.X; x += stride {
			if s, ok := score(x, y); ok && s > bestScore {
				bestScore, bestX, bestY = s, x, y
			}
		}
	}
	if opts.Refine && stride > 1 && bestScore > -1 {
		minY := max(area.Min.Y, bestY-stride)
		maxY := min(area.Max.Y-1, bestY+stride)
		minX := max(area.Min.X, bestX-stride)
		maxX := min(area.Max.X-1, bestX+stride)
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				if s, ok := score(x, y); ok && s > bestScore {
					bestScore, bestX, bestY = s, x, y
				}
			}
		}
	}
	res.X, res.Y, res.Score = bestX, bestY, bestScore
	res.Found = bestScore >= opts.Threshold
	if opts.DebugTiming {
		res.Dur = time.Since(start)
	}
	return res
}

// buildGrayPrecomp computes grayscale values and their summed-area tables for
// an analysis image.
func buildGrayPrecomp(img *image.Gray) *grayPrecomp {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	W, H := b.Dx(), b.Dy()
	need := W * H
	p := &grayPrecomp{
		gray:       make([]float64, need),
		integral:   make([]float64, need),
		integralSq: make([]float64, need),
		W:          W,
		H:          H,
	}
	for y := 0; y < H; y++ {
		var rowSum, rowSum2 float64
		row := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < W; x++ {
			gray := float64(row[x])
			off := y*W + x
			p.gray[off] = gray
			rowSum += gray
			rowSum2 += gray * gray
			if y == 0 {
				p.integral[off] = rowSum
				p.integralSq[off] = rowSum2
			} else {
				p.integral[off] = p.integral[(y-1)*W+x] + rowSum
				p.integralSq[off] = p.integralSq[(y-1)*W+x] + rowSum2
			}
		}
	}
	return p
}

// integralSum returns the inclusive sum over rectangle [x0..x1] x [y0..y1]
// from an integral image stored in row-major order with width W.
func integralSum(I []float64, W int, x0, y0, x1, y1 int) float64 {
	if x0 > x1 || y0 > y1 {
		return 0
	}
	A := func(x, y int) float64 {
		if x < 0 || y < 0 {
			return 0
		}
		return I[y*W+x]
	}
	return A(x1, y1) - A(x0-1, y1) - A(x1, y0-1) + A(x0-1, y0-1)
}
