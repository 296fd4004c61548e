package pulse

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/stat"
)

const (
	minFFTSize = 1024
	// half-width of the band around the fundamental (and its harmonic) counted as signal
	signalHalfWidthHz = 0.15
)

// SpectralPeak is the dominant in-band frequency of a signal.
type SpectralPeak struct {
	FrequencyHz float64
	Power       float64
	// Quality is in-band signal power around the peak and its first harmonic
	// divided by the remaining in-band power.
	Quality float64
}

// BPM converts the peak frequency to beats per minute.
func (p SpectralPeak) BPM() float64 { return p.FrequencyHz * 60 }

// DominantFrequency windows x (Hann), zero-pads it and locates the strongest
// spectral component in [low, high] Hz. ok is false when the band holds no
// power.
func DominantFrequency(x []float64, fs, low, high float64) (SpectralPeak, bool) {
	if len(x) < 4 || fs <= 0 || high <= low {
		return SpectralPeak{}, false
	}
	n := minFFTSize
	for n < len(x) {
		n *= 2
	}
	seq := make([]float64, n)
	copy(seq, x)
	window.Hann(seq[:len(x)])
	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, seq)
	power := make([]float64, len(coeffs))
	for i, c := range coeffs {
		a := cmplx.Abs(c)
		power[i] = a * a
	}
	binHz := fs / float64(n)
	lo := int(math.Ceil(low / binHz))
	hi := int(math.Floor(high / binHz))
	if lo < 1 {
		lo = 1
	}
	if hi >= len(power)-1 {
		hi = len(power) - 2
	}
	if hi <= lo {
		return SpectralPeak{}, false
	}
	best := lo
	for k := lo + 1; k <= hi; k++ {
		if power[k] > power[best] {
			best = k
		}
	}
	if power[best] <= 0 {
		return SpectralPeak{}, false
	}
	// parabolic interpolation on the log spectrum
	delta := 0.0
	a, b, c := power[best-1], power[best], power[best+1]
	if a > 0 && c > 0 {
		la, lb, lc := math.Log(a), math.Log(b), math.Log(c)
		den := la - 2*lb + lc
		if den != 0 {
			delta = 0.5 * (la - lc) / den
		}
	}
	if delta > 0.5 {
		delta = 0.5
	} else if delta < -0.5 {
		delta = -0.5
	}
	freq := (float64(best) + delta) * binHz

	var signal, total float64
	for k := lo; k <= hi; k++ {
		f := float64(k) * binHz
		total += power[k]
		if math.Abs(f-freq) <= signalHalfWidthHz || math.Abs(f-2*freq) <= signalHalfWidthHz {
			signal += power[k]
		}
	}
	noise := total - signal
	quality := math.Inf(1)
	if noise > 0 {
		quality = signal / noise
	}
	return SpectralPeak{FrequencyHz: freq, Power: power[best], Quality: quality}, true
}

// Peaks returns indices of local maxima above zero separated by at least
// minDistance samples. When two candidates are closer, the larger one wins.
func Peaks(x []float64, minDistance int) []int {
	if minDistance < 1 {
		minDistance = 1
	}
	var peaks []int
	for i := 1; i < len(x)-1; i++ {
		if x[i] <= 0 || x[i] <= x[i-1] || x[i] < x[i+1] {
			continue
		}
		if n := len(peaks); n > 0 && i-peaks[n-1] < minDistance {
			if x[i] > x[peaks[n-1]] {
				peaks[n-1] = i
			}
			continue
		}
		peaks = append(peaks, i)
	}
	return peaks
}

// PeakRate estimates beats per minute from the median inter-peak interval.
func PeakRate(peaks []int, fs float64) (float64, bool) {
	if len(peaks) < 3 || fs <= 0 {
		return 0, false
	}
	ibis := make([]float64, 0, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		ibis = append(ibis, float64(peaks[i]-peaks[i-1])/fs)
	}
	sort.Float64s(ibis)
	median := stat.Quantile(0.5, stat.Empirical, ibis, nil)
	if median <= 0 {
		return 0, false
	}
	return 60 / median, true
}
