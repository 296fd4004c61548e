package presenter

import (
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/pixel-pulse-go/domain/session"
)

// DefaultStaleAfter is how old the newest frame may get before the face is
// considered lost.
const DefaultStaleAfter = 2 * time.Second

// WatchedSession narrows the session contract needed by the frame watcher.
type WatchedSession interface {
	Current() session.State
	FaceLost()
}

// FrameWatcher polls the capture stats while a measurement is running and
// pauses the session when frames stop arriving (camera stalled, window
// minimised). Started and stopped from a session listener.
type FrameWatcher struct {
	Session    WatchedSession
	Stats      StatsSource
	Logger     *slog.Logger
	StaleAfter time.Duration
	interval   time.Duration

	mu      sync.Mutex
	done    chan struct{}
	running bool
	fired   bool
}

// NewFrameWatcher constructs a watcher polling every 250ms.
func NewFrameWatcher(sess WatchedSession, stats StatsSource, logger *slog.Logger) *FrameWatcher {
	return &FrameWatcher{Session: sess, Stats: stats, Logger: logger, StaleAfter: DefaultStaleAfter, interval: 250 * time.Millisecond}
}

// OnState starts polling while the session counts down and stops otherwise.
func (w *FrameWatcher) OnState(prev, next session.State) {
	if w == nil {
		return
	}
	if next.Active() {
		w.start()
		return
	}
	w.stop()
}

func (w *FrameWatcher) start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.done = make(chan struct{})
	w.running = true
	w.fired = false
	go w.loop(w.done)
}

func (w *FrameWatcher) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	close(w.done)
	w.running = false
}

// Stop ends polling.
func (w *FrameWatcher) Stop() {
	if w != nil {
		w.stop()
	}
}

// Running reports whether the watcher is polling.
func (w *FrameWatcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *FrameWatcher) loop(done chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			w.poll()
		case <-done:
			return
		}
	}
}

func (w *FrameWatcher) poll() {
	if w.Session == nil || w.Stats == nil {
		return
	}
	age := w.Stats.Stats().LatestFrameAge
	w.mu.Lock()
	fired := w.fired
	w.mu.Unlock()
	if age <= w.StaleAfter {
		if fired {
			w.mu.Lock()
			w.fired = false
			w.mu.Unlock()
		}
		return
	}
	if fired || w.Session.Current() != session.StateMeasuring {
		return
	}
	w.Session.FaceLost()
	w.mu.Lock()
	w.fired = true
	w.mu.Unlock()
	if w.Logger != nil {
		w.Logger.Warn("frames stale, pausing measurement", "age", age)
	}
}
