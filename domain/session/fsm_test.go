package session

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/pixel-pulse-go/config"
	"github.com/soocke/pixel-pulse-go/domain/pulse"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestSession(t *testing.T) *Session {
	t.Helper()
	cfg := config.DefaultConfig()
	s := New(discardLogger, cfg, pulse.NewPlaceholderEstimator(cfg.MinSamples))
	t.Cleanup(s.Close)
	return s
}

// waitForState waits up to timeout for the session to reach expected state.
func waitForState(t *testing.T, s *Session, expected State, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.Current() == expected {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for state %v (got %v)", expected, s.Current())
}

type metricsRecorder struct {
	mu      sync.Mutex
	interim []pulse.Metrics
	final   []pulse.Metrics
}

func (r *metricsRecorder) listener(m pulse.Metrics, final bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if final {
		r.final = append(r.final, m)
	} else {
		r.interim = append(r.interim, m)
	}
}

func (r *metricsRecorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.interim), len(r.final)
}

func feed(s *Session, t0 time.Time, n int) {
	for i := 0; i < n; i++ {
		s.AddSample(pulse.Sample{At: t0.Add(time.Duration(i) * 33 * time.Millisecond), R: 150, G: 120, B: 100})
	}
}

func TestSession_FaceFlow(t *testing.T) {
	s := newTestSession(t)
	t0 := time.Unix(1000, 0)
	s.Start(t0)
	waitForState(t, s, StateWaiting, 200*time.Millisecond)
	s.FaceFound()
	waitForState(t, s, StateMeasuring, 200*time.Millisecond)
	s.FaceLost()
	waitForState(t, s, StatePaused, 200*time.Millisecond)
	s.FaceFound()
	waitForState(t, s, StateMeasuring, 200*time.Millisecond)
}

func TestSession_CompletesAfterDuration(t *testing.T) {
	s := newTestSession(t)
	rec := &metricsRecorder{}
	s.AddMetricsListener(rec.listener)
	t0 := time.Unix(2000, 0)
	s.Start(t0)
	s.FaceFound()
	feed(s, t0, 60)
	s.Tick(t0.Add(5 * time.Second))
	waitForState(t, s, StateMeasuring, 200*time.Millisecond)
	if got := s.Remaining(t0.Add(5 * time.Second)); got != 10*time.Second {
		t.Fatalf("remaining = %v want 10s", got)
	}
	s.Tick(t0.Add(15 * time.Second))
	waitForState(t, s, StateComplete, 200*time.Millisecond)

	res, ok := s.Result()
	if !ok || !res.OK() {
		t.Fatalf("expected successful result, got %+v", res)
	}
	if res.Samples != 60 || res.Metrics.Estimator != "placeholder" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Metrics.SpO2 < 90 || res.Metrics.SpO2 > 100 || res.Metrics.Load < 0 || res.Metrics.Load > 100 {
		t.Fatalf("metrics out of range: %+v", res.Metrics)
	}
	if _, err := uuid.Parse(res.ID); err != nil {
		t.Fatalf("session id is not a uuid: %q", res.ID)
	}
	interim, final := rec.counts()
	if interim != 1 || final != 1 {
		t.Fatalf("expected 1 interim and 1 final metrics, got %d/%d", interim, final)
	}
	if s.Remaining(t0.Add(16*time.Second)) != 0 {
		t.Fatalf("countdown should stop after completion")
	}
}

func TestSession_FailsWithInsufficientData(t *testing.T) {
	s := newTestSession(t)
	t0 := time.Unix(3000, 0)
	s.Start(t0)
	s.FaceFound()
	feed(s, t0, 10)
	s.Tick(t0.Add(15 * time.Second))
	waitForState(t, s, StateFailed, 200*time.Millisecond)
	res, ok := s.Result()
	if !ok || res.OK() || res.Reason != ReasonInsufficientData {
		t.Fatalf("expected insufficient data failure, got %+v", res)
	}
}

func TestSession_NoFaceFails(t *testing.T) {
	s := newTestSession(t)
	t0 := time.Unix(4000, 0)
	s.Start(t0)
	feed(s, t0, 60)
	s.Tick(t0.Add(20 * time.Second))
	waitForState(t, s, StateFailed, 200*time.Millisecond)
	if s.SampleCount() != 0 {
		t.Fatalf("samples without a face must be ignored, got %d", s.SampleCount())
	}
}

func TestSession_PausedIgnoresSamples(t *testing.T) {
	s := newTestSession(t)
	t0 := time.Unix(5000, 0)
	s.Start(t0)
	s.FaceFound()
	feed(s, t0, 5)
	s.FaceLost()
	feed(s, t0.Add(time.Second), 5)
	waitForState(t, s, StatePaused, 200*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	if got := s.SampleCount(); got != 5 {
		t.Fatalf("expected 5 samples, got %d", got)
	}
}

func TestSession_HaltAndRestart(t *testing.T) {
	s := newTestSession(t)
	t0 := time.Unix(6000, 0)
	s.Start(t0)
	waitForState(t, s, StateWaiting, 200*time.Millisecond)
	first := s.ID()
	s.Halt()
	waitForState(t, s, StateHalt, 200*time.Millisecond)
	if s.Remaining(t0) != 0 {
		t.Fatalf("halted session must not count down")
	}
	s.Tick(t0.Add(time.Minute))
	time.Sleep(20 * time.Millisecond)
	if s.Current() != StateHalt {
		t.Fatalf("tick must not finish a halted session")
	}
	s.Start(t0.Add(time.Minute))
	waitForState(t, s, StateWaiting, 200*time.Millisecond)
	if s.ID() == first {
		t.Fatalf("restart should assign a new session id")
	}
}

type transitionRecorder struct {
	mu  sync.Mutex
	seq []State
}

func (r *transitionRecorder) listener(prev, next State) {
	r.mu.Lock()
	r.seq = append(r.seq, next)
	r.mu.Unlock()
}

func TestSession_ListenerSeesTransitions(t *testing.T) {
	s := newTestSession(t)
	r := &transitionRecorder{}
	s.AddListener(r.listener)
	t0 := time.Unix(7000, 0)
	s.Start(t0)
	s.FaceFound()
	s.Tick(t0.Add(15 * time.Second))
	waitForState(t, s, StateFailed, 200*time.Millisecond)
	r.mu.Lock()
	defer r.mu.Unlock()
	want := []State{StateWaiting, StateMeasuring, StateFailed}
	if len(r.seq) != len(want) {
		t.Fatalf("unexpected sequence %v", r.seq)
	}
	for i := range want {
		if r.seq[i] != want[i] {
			t.Fatalf("unexpected sequence %v", r.seq)
		}
	}
}

func TestSession_CloseDropsEvents(t *testing.T) {
	s := newTestSession(t)
	s.Close()
	s.Close()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			s.FaceFound()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("events after close must not block")
	}
}
