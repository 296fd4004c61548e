package model

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/soocke/pixel-pulse-go/domain/pulse"
)

func TestCaptureModel_ErrorClearedOnEnable(t *testing.T) {
	var m CaptureModel
	m.SetError(errors.New("boom"))
	if m.Err() == nil {
		t.Fatalf("error not stored")
	}
	m.SetEnabled(true)
	if !m.Enabled() || m.Err() != nil {
		t.Fatalf("enable should clear error")
	}
}

func TestFaceModel_SetAndClear(t *testing.T) {
	m := NewFaceModel()
	now := time.Unix(10, 0)
	m.SetFace(image.Rect(0, 0, 30, 30), image.Rect(0, 0, 30, 10), now)
	if !m.Present() || m.LastSeen() != now {
		t.Fatalf("face not recorded")
	}
	m.SetFace(image.Rectangle{}, image.Rectangle{}, now.Add(time.Second))
	face, forehead := m.Boxes()
	if m.Present() || !face.Empty() || !forehead.Empty() {
		t.Fatalf("empty face should clear")
	}
	if m.LastSeen() != now {
		t.Fatalf("last seen should survive clear")
	}
}

func TestMetricsModel_KeepsInterimOnly(t *testing.T) {
	m := NewMetricsModel()
	m.OnMetrics(pulse.Metrics{HeartRate: 70}, false)
	m.OnMetrics(pulse.Metrics{HeartRate: 90}, true)
	v, ok := m.Interim()
	if !ok || v.HeartRate != 70 {
		t.Fatalf("unexpected interim %+v ok=%v", v, ok)
	}
	m.Reset()
	if _, ok := m.Interim(); ok {
		t.Fatalf("reset should clear")
	}
}
