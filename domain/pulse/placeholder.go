package pulse

import (
	"math"
	"time"
)

// PlaceholderEstimator reproduces the demo behaviour: metrics are smooth
// functions of wall-clock time and ignore the sample values. The buffer only
// gates whether enough frames were collected.
type PlaceholderEstimator struct {
	minSamples int
}

func NewPlaceholderEstimator(minSamples int) *PlaceholderEstimator {
	if minSamples < 1 {
		minSamples = 30
	}
	return &PlaceholderEstimator{minSamples: minSamples}
}

func (p *PlaceholderEstimator) Name() string { return "placeholder" }

func (p *PlaceholderEstimator) Estimate(buf *Buffer, now time.Time) (Metrics, error) {
	if buf == nil || !buf.Ready(p.minSamples) {
		return Metrics{}, ErrInsufficientSamples
	}
	m := PlaceholderMetrics(now)
	m.Samples = buf.Len()
	m.Estimator = p.Name()
	return m, nil
}

// PlaceholderMetrics computes the time-based values for t.
// SpO2 stays in [90,100] and load in [0,100] for every t.
func PlaceholderMetrics(t time.Time) Metrics {
	secs := float64(t.UnixNano()) / 1e9
	hr := int(60 + 20*math.Sin(secs/3))
	spo2 := clampInt(96+int(4*math.Sin(secs/2)), 90, 100)
	sys := 110 + int(10*math.Sin(secs/4))
	dia := 70 + int(8*math.Cos(secs/5))
	return Metrics{
		HeartRate: hr,
		SpO2:      spo2,
		Systolic:  sys,
		Diastolic: dia,
		Load:      CardioLoad(hr, spo2),
		At:        t,
	}
}
