package pulse

import (
	"image"
	"time"
)

// Sample is the mean colour of the forehead ROI for one processed frame.
// G carries the plethysmographic signal; R and B feed the SpO2 ratio.
type Sample struct {
	At      time.Time
	R, G, B float64
}

// MeanRGB averages the colour channels of roi. ok is false for an empty ROI.
func MeanRGB(roi *image.RGBA) (r, g, b float64, ok bool) {
	if roi == nil {
		return 0, 0, 0, false
	}
	rb := roi.Bounds()
	w, h := rb.Dx(), rb.Dy()
	if w <= 0 || h <= 0 {
		return 0, 0, 0, false
	}
	var sr, sg, sb uint64
	for y := rb.Min.Y; y < rb.Max.Y; y++ {
		off := roi.PixOffset(rb.Min.X, y)
		row := roi.Pix[off : off+w*4]
		for x := 0; x < w; x++ {
			i := x * 4
			sr += uint64(row[i])
			sg += uint64(row[i+1])
			sb += uint64(row[i+2])
		}
	}
	n := float64(w * h)
	return float64(sr) / n, float64(sg) / n, float64(sb) / n, true
}

// NewSample builds a Sample from roi captured at t.
func NewSample(roi *image.RGBA, t time.Time) (Sample, bool) {
	r, g, b, ok := MeanRGB(roi)
	if !ok {
		return Sample{}, false
	}
	return Sample{At: t, R: r, G: g, B: b}, true
}
