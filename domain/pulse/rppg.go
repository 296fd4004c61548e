package pulse

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/soocke/pixel-pulse-go/config"
)

const (
	minSpO2 = 90
	maxSpO2 = 100
	// spectral and peak-count estimates further apart than this are logged
	peakDisagreementBPM = 15
)

// RPPGEstimator derives metrics from the buffered forehead colour signal:
// heart rate from the dominant in-band frequency of the green channel, SpO2
// from the red/blue ratio of ratios, and blood pressure from a linear heart
// rate calibration.
type RPPGEstimator struct {
	minSamples int
	low, high  float64
	minQuality float64
	spo2A      float64
	spo2B      float64
	sysBase    float64
	sysSlope   float64
	diaBase    float64
	diaSlope   float64
	logger     *slog.Logger
}

// NewRPPGEstimator returns an estimator configured from cfg. If cfg is nil the
// default configuration is used.
func NewRPPGEstimator(cfg *config.Config, logger *slog.Logger) *RPPGEstimator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &RPPGEstimator{
		minSamples: cfg.MinSamples,
		low:        cfg.BandLowHz,
		high:       cfg.BandHighHz,
		minQuality: cfg.MinSignalQuality,
		spo2A:      cfg.SpO2A,
		spo2B:      cfg.SpO2B,
		sysBase:    cfg.BPSystolicBase,
		sysSlope:   cfg.BPSystolicSlope,
		diaBase:    cfg.BPDiastolicBase,
		diaSlope:   cfg.BPDiastolicSlope,
		logger:     logger,
	}
}

func (e *RPPGEstimator) Name() string { return "rppg" }

func (e *RPPGEstimator) Estimate(buf *Buffer, now time.Time) (Metrics, error) {
	if buf == nil || !buf.Ready(e.minSamples) {
		return Metrics{}, ErrInsufficientSamples
	}
	samples := buf.Samples()
	fs := SampleRate(samples)
	if fs <= 0 {
		return Metrics{}, ErrInsufficientSamples
	}
	green := Resample(samples, fs, func(s Sample) float64 { return s.G })
	if len(green) < 4 {
		return Metrics{}, ErrInsufficientSamples
	}
	filtered := Bandpass(Detrend(green), fs, e.low, e.high)
	if stat.StdDev(filtered, nil) < 1e-9 {
		return Metrics{}, ErrNoSignal
	}
	norm := Normalize(filtered)
	peak, ok := DominantFrequency(norm, fs, e.low, e.high)
	if !ok {
		return Metrics{}, ErrNoSignal
	}
	m := Metrics{Quality: peak.Quality, Samples: len(samples), Estimator: e.Name(), At: now}
	if peak.Quality < e.minQuality {
		return m, fmt.Errorf("%w: %.2f < %.2f", ErrLowSignalQuality, peak.Quality, e.minQuality)
	}
	m.HeartRate = int(math.Round(peak.BPM()))

	minDistance := int(fs / e.high)
	if bpm, ok := PeakRate(Peaks(norm, minDistance), fs); ok {
		m.PeakHeartRate = int(math.Round(bpm))
		if e.logger != nil && math.Abs(bpm-peak.BPM()) > peakDisagreementBPM {
			e.logger.Debug("heart rate estimates disagree", "spectral", m.HeartRate, "peaks", m.PeakHeartRate)
		}
	}

	spo2, ok := e.spo2(samples, fs)
	if !ok {
		return m, fmt.Errorf("%w: no red/blue pulse component", ErrNoSignal)
	}
	m.SpO2 = spo2
	delta := float64(m.HeartRate - 70)
	m.Systolic = int(math.Round(e.sysBase + e.sysSlope*delta))
	m.Diastolic = int(math.Round(e.diaBase + e.diaSlope*delta))
	if m.Diastolic >= m.Systolic {
		m.Diastolic = m.Systolic - 1
	}
	m.Load = CardioLoad(m.HeartRate, m.SpO2)
	return m, nil
}

// spo2 computes SpO2 = A - B*R where R = (ACred/DCred)/(ACblue/DCblue),
// clamped to [90,100].
func (e *RPPGEstimator) spo2(samples []Sample, fs float64) (int, bool) {
	ratio := func(ch func(Sample) float64) (float64, bool) {
		raw := Resample(samples, fs, ch)
		if len(raw) < 4 {
			return 0, false
		}
		dc := stat.Mean(raw, nil)
		if dc <= 0 {
			return 0, false
		}
		ac := stat.StdDev(Bandpass(Detrend(raw), fs, e.low, e.high), nil)
		return ac / dc, true
	}
	red, okR := ratio(func(s Sample) float64 { return s.R })
	blue, okB := ratio(func(s Sample) float64 { return s.B })
	if !okR || !okB || blue <= 1e-12 {
		return 0, false
	}
	r := red / blue
	v := int(math.Round(e.spo2A - e.spo2B*r))
	return clampInt(v, minSpO2, maxSpO2), true
}
