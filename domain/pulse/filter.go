package pulse

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Resample maps irregularly timed samples onto a uniform grid at rate fs (Hz)
// using linear interpolation. ch selects the channel.
func Resample(samples []Sample, fs float64, ch func(Sample) float64) []float64 {
	if len(samples) < 2 || fs <= 0 {
		return nil
	}
	t0 := samples[0].At
	span := samples[len(samples)-1].At.Sub(t0).Seconds()
	n := int(math.Floor(span*fs)) + 1
	if n < 2 {
		return nil
	}
	out := make([]float64, n)
	j := 0
	for i := 0; i < n; i++ {
		t := float64(i) / fs
		for j < len(samples)-2 && samples[j+1].At.Sub(t0).Seconds() < t {
			j++
		}
		ta := samples[j].At.Sub(t0).Seconds()
		tb := samples[j+1].At.Sub(t0).Seconds()
		va, vb := ch(samples[j]), ch(samples[j+1])
		if tb <= ta {
			out[i] = va
			continue
		}
		frac := (t - ta) / (tb - ta)
		if frac < 0 {
			frac = 0
		} else if frac > 1 {
			frac = 1
		}
		out[i] = va + (vb-va)*frac
	}
	return out
}

// SampleRate estimates the mean frame rate of the samples in Hz.
func SampleRate(samples []Sample) float64 {
	if len(samples) < 2 {
		return 0
	}
	span := samples[len(samples)-1].At.Sub(samples[0].At).Seconds()
	if span <= 0 {
		return 0
	}
	return float64(len(samples)-1) / span
}

// Detrend removes the least-squares line from x.
func Detrend(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) < 2 {
		copy(out, x)
		return out
	}
	idx := make([]float64, len(x))
	floats.Span(idx, 0, float64(len(x)-1))
	alpha, beta := stat.LinearRegression(idx, x, nil, false)
	for i, v := range x {
		out[i] = v - (alpha + beta*idx[i])
	}
	return out
}

// Normalize returns x scaled to zero mean and unit variance. A flat input
// yields zeros.
func Normalize(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) < 2 {
		return out
	}
	mean, std := stat.MeanStdDev(x, nil)
	if std <= 1e-12 {
		return out
	}
	for i, v := range x {
		out[i] = (v - mean) / std
	}
	return out
}

// biquad is a second-order IIR section in direct form I.
type biquad struct {
	b0, b1, b2, a1, a2 float64
}

func newBiquad(b0, b1, b2, a0, a1, a2 float64) biquad {
	return biquad{b0: b0 / a0, b1: b1 / a0, b2: b2 / a0, a1: a1 / a0, a2: a2 / a0}
}

// butterworthLowpass returns a 2nd-order Butterworth low-pass section.
func butterworthLowpass(fc, fs float64) biquad {
	w0 := 2 * math.Pi * fc / fs
	alpha := math.Sin(w0) / math.Sqrt2 // Q = 1/sqrt(2)
	cw := math.Cos(w0)
	return newBiquad((1-cw)/2, 1-cw, (1-cw)/2, 1+alpha, -2*cw, 1-alpha)
}

// butterworthHighpass returns a 2nd-order Butterworth high-pass section.
func butterworthHighpass(fc, fs float64) biquad {
	w0 := 2 * math.Pi * fc / fs
	alpha := math.Sin(w0) / math.Sqrt2
	cw := math.Cos(w0)
	return newBiquad((1+cw)/2, -(1 + cw), (1+cw)/2, 1+alpha, -2*cw, 1-alpha)
}

func (q biquad) apply(x []float64) []float64 {
	out := make([]float64, len(x))
	var x1, x2, y1, y2 float64
	for i, v := range x {
		y := q.b0*v + q.b1*x1 + q.b2*x2 - q.a1*y1 - q.a2*y2
		x2, x1 = x1, v
		y2, y1 = y1, y
		out[i] = y
	}
	return out
}

// Bandpass applies a zero-phase Butterworth band-pass (high-pass at low,
// low-pass at high, each run forward and backward) to x sampled at fs. The
// upper edge is pulled below Nyquist when necessary.
func Bandpass(x []float64, fs, low, high float64) []float64 {
	if len(x) < 3 || fs <= 0 || low <= 0 || high <= low {
		out := make([]float64, len(x))
		copy(out, x)
		return out
	}
	nyq := fs / 2
	if high >= nyq {
		high = 0.95 * nyq
	}
	if low >= high {
		low = high / 2
	}
	sections := []biquad{butterworthHighpass(low, fs), butterworthLowpass(high, fs)}
	pad := len(x) - 1
	if limit := int(3 * fs / low); pad > limit {
		pad = limit
	}
	y := reflectPad(x, pad)
	for _, s := range sections {
		y = s.apply(y)
		reverse(y)
		y = s.apply(y)
		reverse(y)
	}
	return y[pad : pad+len(x)]
}

// reflectPad extends x at both ends by odd reflection around the end points.
func reflectPad(x []float64, pad int) []float64 {
	n := len(x)
	if pad <= 0 || n < 2 {
		out := make([]float64, n)
		copy(out, x)
		return out
	}
	if pad > n-1 {
		pad = n - 1
	}
	out := make([]float64, n+2*pad)
	for i := 0; i < pad; i++ {
		out[i] = 2*x[0] - x[pad-i]
		out[pad+n+i] = 2*x[n-1] - x[n-2-i]
	}
	copy(out[pad:], x)
	return out
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
