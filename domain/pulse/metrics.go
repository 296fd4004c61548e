package pulse

import (
	"fmt"
	"time"
)

// Metrics is one cardiovascular estimate.
type Metrics struct {
	HeartRate     int // BPM
	SpO2          int // percent
	Systolic      int // mmHg
	Diastolic     int // mmHg
	Load          int // 0..100
	Quality       float64
	PeakHeartRate int // BPM from peak counting, 0 when unavailable
	Samples       int
	Estimator     string
	At            time.Time
}

// BloodPressure renders the pressure pair as "systolic/diastolic".
func (m Metrics) BloodPressure() string { return fmt.Sprintf("%d/%d", m.Systolic, m.Diastolic) }

// Lines renders the summary shown in the results window and on the console.
func (m Metrics) Lines() []string {
	spo2 := "SPO2: n/a"
	if m.SpO2 > 0 {
		spo2 = fmt.Sprintf("SPO2: %d%%", m.SpO2)
	}
	return []string{
		fmt.Sprintf("Heart Beat: %d BPM", m.HeartRate),
		spo2,
		fmt.Sprintf("Blood Pressure: %s mmHg", m.BloodPressure()),
		fmt.Sprintf("CV Load: %d/100", m.Load),
	}
}

// CardioLoad derives the 0..100 load score from heart rate and SpO2.
func CardioLoad(heartRate, spo2 int) int {
	load := int(float64(heartRate-60)*0.8 + float64(100-spo2)*1.5)
	return clampInt(load, 0, 100)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
