package capture

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

const (
	captureStatsLogInterval = 5 * time.Second
	readRetryDelay          = 10 * time.Millisecond
	// DefaultMaxReadFailures is used when the configured limit is not positive.
	DefaultMaxReadFailures = 5
)

// CaptureService acquires frames from a Grabber on a background goroutine and
// exposes the latest one alongside instrumentation data. Use
// NewCaptureService to construct an instance.
type CaptureService interface {
	// Start opens the grabber and starts the read loop. An open failure is
	// returned and the service stays stopped.
	Start() error
	// Stop ends the read loop and waits until the grabber has been released.
	Stop()
	LatestFrame() FrameSnapshot
	Running() bool
	Stats() CaptureStats
	// Done is closed when the current (or last) read loop has exited and the
	// grabber was released.
	Done() <-chan struct{}
	// Err reports why the last loop ended on its own, nil after Stop.
	Err() error
}

// slot states
const (
	slotFresh int32 = iota
	slotRead
	slotRecycled
)

type frameSlot struct {
	snap  FrameSnapshot
	state atomic.Int32
}

type captureRun struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type captureService struct {
	grabber     Grabber
	logger      *slog.Logger
	maxFailures int

	mu  sync.Mutex // guards run and err
	run *captureRun
	err error

	running      atomic.Bool
	latest       atomic.Pointer[frameSlot]
	captures     atomic.Uint64
	failures     atomic.Uint64
	dropped      atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64
	startedAt    atomic.Int64
}

var closedDone = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

func newCaptureService(grabber Grabber, logger *slog.Logger, maxFailures int) *captureService {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxReadFailures
	}
	return &captureService{grabber: grabber, logger: logger, maxFailures: maxFailures}
}

// NewCaptureService constructs a capture service reading from grabber. The
// loop stops by itself after maxFailures consecutive failed reads.
func NewCaptureService(grabber Grabber, logger *slog.Logger, maxFailures int) CaptureService {
	return newCaptureService(grabber, logger, maxFailures)
}

func (s *captureService) LatestFrame() FrameSnapshot {
	for {
		sl := s.latest.Load()
		if sl == nil {
			return FrameSnapshot{}
		}
		if sl.state.CompareAndSwap(slotFresh, slotRead) || sl.state.Load() == slotRead {
			return sl.snap
		}
		// recycled between Load and CAS; a newer slot is already published
	}
}

func (s *captureService) Running() bool { return s.running.Load() }

func (s *captureService) Stats() CaptureStats {
	captures := s.captures.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	var snap FrameSnapshot
	if sl := s.latest.Load(); sl != nil {
		snap = sl.snap
	}
	age := time.Duration(0)
	if !snap.CapturedAt.IsZero() {
		age = time.Since(snap.CapturedAt)
	}
	fps := 0.0
	if started := s.startedAt.Load(); started > 0 && captures > 0 {
		if elapsed := time.Since(time.Unix(0, started)).Seconds(); elapsed > 0 {
			fps = float64(captures) / elapsed
		}
	}
	return CaptureStats{
		Captures:         captures,
		ReadFailures:     s.failures.Load(),
		Dropped:          s.dropped.Load(),
		AvgCapture:       avg,
		AvgCaptureMicros: avgMicros,
		LastCapture:      snap.CapturedAt,
		LatestFrameAge:   age,
		Sequence:         snap.Sequence,
		FPS:              fps,
	}
}

func (s *captureService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running.Load() {
		return nil
	}
	if s.grabber == nil {
		return errors.New("capture: no grabber configured")
	}
	if err := s.grabber.Open(); err != nil {
		return fmt.Errorf("capture: open: %w", err)
	}
	r := &captureRun{stop: make(chan struct{}), done: make(chan struct{})}
	s.run = r
	s.err = nil
	s.startedAt.Store(time.Now().UnixNano())
	s.running.Store(true)
	go s.loop(r)
	return nil
}

func (s *captureService) Stop() {
	s.mu.Lock()
	r := s.run
	s.mu.Unlock()
	if r == nil {
		return
	}
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

func (s *captureService) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run == nil {
		return closedDone
	}
	return s.run.done
}

func (s *captureService) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *captureService) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// release closes the grabber exactly once per run and signals Done.
func (s *captureService) release(r *captureRun) {
	if err := s.grabber.Close(); err != nil && s.logger != nil {
		s.logger.Warn("capture release", "error", err)
	}
	s.running.Store(false)
	close(r.done)
	if s.logger != nil {
		s.logger.Info("capture stopped", "captures", s.captures.Load(), "read_failures", s.failures.Load())
	}
}

func (s *captureService) loop(r *captureRun) {
	defer s.release(r)
	defer func() {
		if rec := recover(); rec != nil {
			if s.logger != nil {
				s.logger.Error("capture loop panic", "panic", rec, "stack", string(debug.Stack()))
			}
			s.setErr(fmt.Errorf("capture: panic: %v", rec))
		}
	}()
	logTicker := time.NewTicker(captureStatsLogInterval)
	defer logTicker.Stop()

	consecutive := 0
	for {
		select {
		case <-r.stop:
			return
		default:
		}

		start := time.Now()
		img, err := s.grabber.Grab()
		if err == nil && (img == nil || img.Rect.Empty()) {
			err = ErrEmptyFrame
		}
		if err != nil {
			consecutive++
			s.failures.Add(1)
			if s.logger != nil {
				s.logger.Warn("capture read", "error", err, "consecutive", consecutive)
			}
			if consecutive >= s.maxFailures {
				s.setErr(fmt.Errorf("capture: %d consecutive read failures: %w", consecutive, err))
				return
			}
			select {
			case <-r.stop:
				return
			case <-time.After(readRetryDelay):
			}
			continue
		}
		consecutive = 0

		elapsed := time.Since(start)
		s.captureNanos.Add(uint64(elapsed.Nanoseconds()))
		s.captures.Add(1)
		s.publish(img)

		select {
		case <-logTicker.C:
			s.logStats()
		default:
		}
	}
}

// publish stores img as the latest frame. The previous frame goes back to
// the pool when nobody read it.
func (s *captureService) publish(img *image.RGBA) {
	seq := s.sequence.Add(1)
	sl := &frameSlot{snap: FrameSnapshot{Image: img, CapturedAt: time.Now(), Sequence: seq}}
	old := s.latest.Swap(sl)
	if old != nil && old.state.CompareAndSwap(slotFresh, slotRecycled) {
		s.dropped.Add(1)
		RecycleFrame(old.snap.Image)
	}
}

func (s *captureService) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"captures", stats.Captures,
		"read_failures", stats.ReadFailures,
		"dropped", stats.Dropped,
		"fps", stats.FPS,
		"avg_capture", stats.AvgCapture,
		"age", stats.LatestFrameAge,
	)
}
