package presenter

import (
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soocke/pixel-pulse-go/domain/capture"
	"github.com/soocke/pixel-pulse-go/domain/pulse"
	"github.com/soocke/pixel-pulse-go/domain/session"
	"github.com/soocke/pixel-pulse-go/ui/model"
)

type stateOnly struct{ s session.State }

func (f stateOnly) Current() session.State { return f.s }

type labelView struct{ labels []string }

func (v *labelView) SetStateLabel(s string) { v.labels = append(v.labels, s) }

func TestStatePresenter_ShowsLatest(t *testing.T) {
	view := &labelView{}
	p := NewStatePresenter(stateOnly{session.StateHalt}, view)
	p.Tick(time.Now())
	p.OnState(session.StateHalt, session.StateWaiting)
	p.OnState(session.StateWaiting, session.StateMeasuring)
	p.Tick(time.Now())
	p.Tick(time.Now())
	want := []string{"State: halt", "State: measuring"}
	if len(view.labels) != len(want) {
		t.Fatalf("labels = %v", view.labels)
	}
	for i := range want {
		if view.labels[i] != want[i] {
			t.Fatalf("labels = %v", view.labels)
		}
	}
}

type fixedResult struct{ r session.Result }

func (f fixedResult) Result() (session.Result, bool) { return f.r, f.r.ID != "" }

type resultsView struct {
	shown int
	lines []string
	card  image.Image
}

func (v *resultsView) ShowResults(_ session.Result, lines []string, card image.Image) {
	v.shown++
	v.lines = lines
	v.card = card
}

func TestResultsPresenter_ShowsOncePerSession(t *testing.T) {
	res := session.Result{ID: "a", Metrics: pulse.Metrics{HeartRate: 72, SpO2: 97, Systolic: 116, Diastolic: 72, Load: 14}}
	view := &resultsView{}
	stats := model.NewSessionModel()
	p := NewResultsPresenter(fixedResult{res}, view, stats, true, nil)
	p.Tick(time.Now())
	if view.shown != 0 {
		t.Fatalf("nothing should show before a terminal state")
	}
	p.OnState(session.StateMeasuring, session.StateComplete)
	p.Tick(time.Now())
	p.OnState(session.StateMeasuring, session.StateComplete)
	p.Tick(time.Now())
	if view.shown != 1 {
		t.Fatalf("expected a single summary, got %d", view.shown)
	}
	if len(view.lines) != 4 || view.lines[0] != "Heart Beat: 72 BPM" {
		t.Fatalf("lines = %v", view.lines)
	}
	if view.card == nil || view.card.Bounds().Dx() != ResultsWidth {
		t.Fatalf("card not rendered")
	}
	if c, f := stats.Outcomes(); c != 1 || f != 0 {
		t.Fatalf("outcomes %d/%d", c, f)
	}
}

func TestResultsPresenter_ExitAfterDisplay(t *testing.T) {
	view := &resultsView{}
	p := NewResultsPresenter(fixedResult{session.Result{ID: "a"}}, view, model.NewSessionModel(), false, nil)
	exits := 0
	p.ExitAfterDisplay(5*time.Second, func() { exits++ })
	t0 := time.Unix(100, 0)

	p.OnState(session.StateMeasuring, session.StateFailed)
	p.Tick(t0)
	p.Tick(t0.Add(4 * time.Second))
	if view.shown != 1 || exits != 0 {
		t.Fatalf("shown=%d exits=%d before the display time ran out", view.shown, exits)
	}
	p.Tick(t0.Add(5 * time.Second))
	p.Tick(t0.Add(6 * time.Second))
	if exits != 1 {
		t.Fatalf("expected one exit, got %d", exits)
	}
}

func TestResultsPresenter_RestartCancelsExit(t *testing.T) {
	p := NewResultsPresenter(fixedResult{session.Result{ID: "a"}}, &resultsView{}, model.NewSessionModel(), false, nil)
	exits := 0
	p.ExitAfterDisplay(time.Second, func() { exits++ })
	t0 := time.Unix(200, 0)
	p.OnState(session.StateMeasuring, session.StateComplete)
	p.Tick(t0)
	p.OnState(session.StateHalt, session.StateWaiting)
	p.Tick(t0.Add(10 * time.Second))
	if exits != 0 {
		t.Fatalf("a new measurement must cancel the pending exit")
	}
}

func TestSummaryLines_Failure(t *testing.T) {
	lines := SummaryLines(session.Result{ID: "x", Err: pulse.ErrInsufficientSamples, Reason: session.ReasonInsufficientData})
	if len(lines) != 1 || lines[0] != "Insufficient data for measurement" {
		t.Fatalf("lines = %v", lines)
	}
}

type ageStats struct{ age atomic.Int64 }

func (s *ageStats) Stats() capture.CaptureStats {
	return capture.CaptureStats{LatestFrameAge: time.Duration(s.age.Load())}
}

type watchedSession struct {
	mu    sync.Mutex
	state session.State
	lost  int
}

func (s *watchedSession) Current() session.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
func (s *watchedSession) FaceLost() {
	s.mu.Lock()
	s.lost++
	s.state = session.StatePaused
	s.mu.Unlock()
}
func (s *watchedSession) lostCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lost
}

func TestFrameWatcher_PausesOnStaleFrames(t *testing.T) {
	stats := &ageStats{}
	sess := &watchedSession{state: session.StateMeasuring}
	w := NewFrameWatcher(sess, stats, nil)
	w.interval = 20 * time.Millisecond
	w.OnState(session.StateWaiting, session.StateMeasuring)
	t.Cleanup(func() { w.OnState(session.StateMeasuring, session.StateHalt) })

	time.Sleep(80 * time.Millisecond)
	if sess.lostCount() != 0 {
		t.Fatalf("fresh frames must not pause")
	}
	stats.age.Store(int64(3 * time.Second))
	time.Sleep(80 * time.Millisecond)
	if sess.lostCount() != 1 {
		t.Fatalf("expected one pause, got %d", sess.lostCount())
	}
	time.Sleep(80 * time.Millisecond)
	if sess.lostCount() != 1 {
		t.Fatalf("unexpected repeat pause")
	}
}

func TestFrameWatcher_StopsOutsideMeasurement(t *testing.T) {
	w := NewFrameWatcher(&watchedSession{}, &ageStats{}, nil)
	w.OnState(session.StateHalt, session.StateWaiting)
	if !w.Running() {
		t.Fatalf("watcher should run while waiting")
	}
	w.OnState(session.StateMeasuring, session.StateComplete)
	if w.Running() {
		t.Fatalf("watcher should stop on completion")
	}
	w.OnState(session.StateComplete, session.StateHalt)
	if w.Running() {
		t.Fatalf("watcher should stay stopped")
	}
}

type sessionView struct {
	session, total time.Duration
	remaining      time.Duration
	samples        int
}

func (v *sessionView) SetSession(s, t time.Duration) { v.session, v.total = s, t }
func (v *sessionView) SetMeasurement(r time.Duration, n int, _ float64) {
	v.remaining, v.samples = r, n
}

type countdown struct{}

func (countdown) Remaining(time.Time) time.Duration { return 7 * time.Second }
func (countdown) SampleCount() int                  { return 42 }

func TestSessionPresenter_Tick(t *testing.T) {
	capModel := &model.CaptureModel{}
	capModel.SetEnabled(true)
	view := &sessionView{}
	p := NewSessionPresenter(model.NewSessionModel(), capModel, countdown{}, nil, view)
	t0 := time.Unix(100, 0)
	p.Tick(t0)
	p.Tick(t0.Add(3 * time.Second))
	if view.session != 3*time.Second || view.total != 3*time.Second {
		t.Fatalf("session=%v total=%v", view.session, view.total)
	}
	if view.remaining != 7*time.Second || view.samples != 42 {
		t.Fatalf("measurement line = %v/%d", view.remaining, view.samples)
	}
}
