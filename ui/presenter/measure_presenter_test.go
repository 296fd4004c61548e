package presenter

import (
	"image"
	"image/color"
	"image/draw"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soocke/pixel-pulse-go/domain/capture"
	"github.com/soocke/pixel-pulse-go/domain/face"
	"github.com/soocke/pixel-pulse-go/domain/pulse"
	"github.com/soocke/pixel-pulse-go/domain/session"
	"github.com/soocke/pixel-pulse-go/ui/model"
)

type fakeSource struct {
	seq   atomic.Uint64
	frame *image.RGBA
}

func (s *fakeSource) Running() bool { return true }
func (s *fakeSource) LatestFrame() capture.FrameSnapshot {
	n := s.seq.Add(1)
	return capture.FrameSnapshot{Image: s.frame, CapturedAt: time.Unix(0, int64(n)*int64(33*time.Millisecond)), Sequence: n}
}

type fakeMeasureSession struct {
	mu      sync.Mutex
	state   session.State
	found   int
	lost    int
	samples []pulse.Sample
}

func (s *fakeMeasureSession) Current() session.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
func (s *fakeMeasureSession) FaceFound() {
	s.mu.Lock()
	s.found++
	s.state = session.StateMeasuring
	s.mu.Unlock()
}
func (s *fakeMeasureSession) FaceLost() {
	s.mu.Lock()
	s.lost++
	s.state = session.StatePaused
	s.mu.Unlock()
}
func (s *fakeMeasureSession) AddSample(smp pulse.Sample) {
	s.mu.Lock()
	s.samples = append(s.samples, smp)
	s.mu.Unlock()
}
func (s *fakeMeasureSession) Remaining(time.Time) time.Duration { return 10 * time.Second }

type fakeMeasureView struct {
	captures, foreheads atomic.Int32
}

func (v *fakeMeasureView) UpdateCapture(image.Image)  { v.captures.Add(1) }
func (v *fakeMeasureView) UpdateForehead(image.Image) { v.foreheads.Add(1) }

func solidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// pump drives ProcessFrame until cond holds or the timeout expires.
func pump(t *testing.T, p *MeasurePresenter, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		p.ProcessFrame()
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestMeasurePresenter_FaceFeedsSession(t *testing.T) {
	src := &fakeSource{frame: solidFrame(120, 90, color.RGBA{R: 200, G: 100, B: 50, A: 255})}
	sess := &fakeMeasureSession{state: session.StateWaiting}
	view := &fakeMeasureView{}
	faces := model.NewFaceModel()
	loc := face.StaticLocator{Box: image.Rect(30, 15, 90, 75)}
	p := NewMeasurePresenter(func() bool { return true }, src, loc, sess, nil, view, faces, 0, 1000, nil)
	t.Cleanup(p.Close)

	pump(t, p, func() bool {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return len(sess.samples) >= 3
	})
	sess.mu.Lock()
	found, smp := sess.found, sess.samples[0]
	sess.mu.Unlock()
	if found != 1 {
		t.Fatalf("FaceFound should fire once while measuring, got %d", found)
	}
	if smp.G != 100 || smp.R != 200 || smp.B != 50 {
		t.Fatalf("unexpected sample %+v", smp)
	}
	if view.captures.Load() == 0 || view.foreheads.Load() == 0 {
		t.Fatalf("view not updated")
	}
	gotFace, gotForehead := faces.Boxes()
	if gotFace != loc.Box || gotForehead != image.Rect(30, 15, 90, 35) {
		t.Fatalf("face model = %v %v", gotFace, gotForehead)
	}
}

func TestMeasurePresenter_FaceLostPauses(t *testing.T) {
	src := &fakeSource{frame: solidFrame(64, 48, color.RGBA{G: 90, A: 255})}
	sess := &fakeMeasureSession{state: session.StateMeasuring}
	miss := face.LocatorFunc(func(*image.RGBA) (image.Rectangle, bool) { return image.Rectangle{}, false })
	p := NewMeasurePresenter(func() bool { return true }, src, miss, sess, nil, nil, nil, 0, 1000, nil)
	t.Cleanup(p.Close)

	pump(t, p, func() bool { return sess.Current() == session.StatePaused })
	time.Sleep(30 * time.Millisecond)
	p.ProcessFrame()
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.lost != 1 || len(sess.samples) != 0 {
		t.Fatalf("expected one FaceLost and no samples, got lost=%d samples=%d", sess.lost, len(sess.samples))
	}
}

func TestMeasurePresenter_DisabledDoesNothing(t *testing.T) {
	src := &fakeSource{frame: solidFrame(32, 32, color.RGBA{A: 255})}
	sess := &fakeMeasureSession{}
	p := NewMeasurePresenter(func() bool { return false }, src, face.StaticLocator{Box: image.Rect(0, 0, 32, 32)}, sess, nil, nil, nil, 0, 1000, nil)
	t.Cleanup(p.Close)
	for i := 0; i < 5; i++ {
		p.ProcessFrame()
	}
	if src.seq.Load() != 0 {
		t.Fatalf("disabled presenter must not pull frames")
	}
}

func TestMeasurePresenter_QueueKeepsNewest(t *testing.T) {
	p := NewMeasurePresenter(nil, nil, nil, nil, nil, nil, nil, 0, 0, nil)
	for seq := uint64(1); seq <= 3; seq++ {
		p.dispatch(measureTask{snapshot: capture.FrameSnapshot{Sequence: seq}})
		if len(p.workCh) != 1 {
			t.Fatalf("queue depth %d", len(p.workCh))
		}
	}
	if got := (<-p.workCh).snapshot.Sequence; got != 3 {
		t.Fatalf("expected newest frame 3, got %d", got)
	}
}

func TestMeasurePresenter_RateLimited(t *testing.T) {
	p := NewMeasurePresenter(nil, nil, nil, nil, nil, nil, nil, 0, 1, nil)
	t0 := time.Unix(100, 0)
	admitted := 0
	for seq := uint64(1); seq <= 5; seq++ {
		if p.admit(seq, t0) {
			admitted++
		}
	}
	if admitted != measureBurst {
		t.Fatalf("expected %d frames within the same instant, got %d", measureBurst, admitted)
	}
	if p.admit(p.lastSeq, t0.Add(time.Hour)) {
		t.Fatalf("a frame must not be admitted twice")
	}
}

func TestMeasurePresenter_KeepsSourceFrameRate(t *testing.T) {
	// 30 fps frames polled by a 33 ms UI tick
	p := NewMeasurePresenter(nil, nil, nil, nil, nil, nil, nil, 0, DefaultMeasureRate, nil)
	t0 := time.Unix(200, 0)
	const ticks = 300
	admitted := 0
	for i := 0; i < ticks; i++ {
		if p.admit(uint64(i+1), t0.Add(time.Duration(i)*33*time.Millisecond)) {
			admitted++
		}
	}
	if admitted < ticks*95/100 {
		t.Fatalf("expected nearly every frame at 30 fps, got %d of %d", admitted, ticks)
	}
}

func TestMeasurePresenter_CapsFastTicks(t *testing.T) {
	p := NewMeasurePresenter(nil, nil, nil, nil, nil, nil, nil, 0, DefaultMeasureRate, nil)
	t0 := time.Unix(300, 0)
	admitted := 0
	// 3 s of 10 ms ticks, each with a new frame
	for i := 0; i < 300; i++ {
		if p.admit(uint64(i+1), t0.Add(time.Duration(i)*10*time.Millisecond)) {
			admitted++
		}
	}
	if admitted < 85 || admitted > 95 {
		t.Fatalf("expected about 90 frames in 3 s, got %d", admitted)
	}
}

func TestMeasurePresenter_ObservationsSurviveSlowTicks(t *testing.T) {
	sess := &fakeMeasureSession{state: session.StateMeasuring}
	view := &fakeMeasureView{}
	p := NewMeasurePresenter(func() bool { return true }, &fakeSource{}, face.StaticLocator{}, sess, nil, view, nil, 0, 0, nil)
	base := time.Unix(400, 0)
	for i := 0; i < 5; i++ {
		p.deliver(measureResult{
			sequence:  uint64(i + 1),
			found:     true,
			hasSample: true,
			sample:    pulse.Sample{At: base.Add(time.Duration(i) * 33 * time.Millisecond), G: float64(100 + i)},
			annotated: solidFrame(8, 8, color.RGBA{A: 255}),
		})
	}
	for len(p.resultCh) > 0 {
		p.handleResult(<-p.resultCh)
	}
	sess.mu.Lock()
	n := len(sess.samples)
	last := sess.samples[n-1]
	sess.mu.Unlock()
	if n != 5 || last.G != 104 {
		t.Fatalf("expected all 5 samples in order, got %d (last %+v)", n, last)
	}
	if len(p.previewCh) != 1 {
		t.Fatalf("only the newest preview should be pending, got %d", len(p.previewCh))
	}
	p.showPreview(<-p.previewCh)
	if view.captures.Load() != 1 {
		t.Fatalf("expected one preview shown, got %d", view.captures.Load())
	}
	if p.Dropped() != 0 {
		t.Fatalf("no observation should be dropped, got %d", p.Dropped())
	}
}
