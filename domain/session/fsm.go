package session

import (
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/pixel-pulse-go/config"
	"github.com/soocke/pixel-pulse-go/domain/pulse"
)

const interimInterval = time.Second

// Session drives one measurement at a time. All events are handled on a
// single goroutine; the exported methods only enqueue them.
type Session struct {
	logger    *slog.Logger
	estimator pulse.Estimator
	duration  time.Duration

	state     atomic.Int32
	deadline  atomic.Int64 // unix nanos, 0 when not counting down
	samples   atomic.Int64
	buf       *pulse.Buffer
	started   time.Time
	lastEst   time.Time
	listeners []StateListener
	mlisten   []MetricsListener

	mu     sync.Mutex // guards id and result
	id     string
	result *Result

	events    chan interface{}
	done      chan struct{}
	closeOnce sync.Once
}

// New constructs a session in the halt state and starts its event loop.
func New(logger *slog.Logger, cfg *config.Config, estimator pulse.Estimator) *Session {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if estimator == nil {
		estimator = pulse.NewEstimator(cfg, logger)
	}
	duration := time.Duration(cfg.MeasurementSeconds) * time.Second
	if duration <= 0 {
		duration = 15 * time.Second
	}
	s := &Session{
		logger:    logger,
		estimator: estimator,
		duration:  duration,
		buf:       pulse.NewBuffer(duration + time.Second),
		events:    make(chan interface{}, 256),
		done:      make(chan struct{}),
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if logger != nil {
					logger.Error("session panic", "error", r, "stack", string(debug.Stack()))
				}
			}
		}()
		s.loop()
	}()
	return s
}

// events
type (
	evtStart       struct{ now time.Time }
	evtTick        struct{ now time.Time }
	evtFaceFound   struct{}
	evtFaceLost    struct{}
	evtSample      struct{ s pulse.Sample }
	evtHalt        struct{}
	evtAddListener struct{ l StateListener }
	evtAddMetrics  struct{ l MetricsListener }
)

func (s *Session) loop() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			switch e := ev.(type) {
			case evtAddListener:
				s.listeners = append(s.listeners, e.l)
			case evtAddMetrics:
				s.mlisten = append(s.mlisten, e.l)
			case evtStart:
				s.handleStart(e.now)
			case evtTick:
				s.handleTick(e.now)
			case evtFaceFound:
				if st := s.Current(); st == StateWaiting || st == StatePaused {
					s.transition(StateMeasuring)
				}
			case evtFaceLost:
				if s.Current() == StateMeasuring {
					s.transition(StatePaused)
				}
			case evtSample:
				if s.Current() == StateMeasuring && s.buf.Add(e.s) {
					s.samples.Store(int64(s.buf.Len()))
				}
			case evtHalt:
				s.deadline.Store(0)
				s.transition(StateHalt)
			}
		}
	}
}

func (s *Session) handleStart(now time.Time) {
	id := uuid.NewString()
	s.mu.Lock()
	s.id = id
	s.result = nil
	s.mu.Unlock()
	s.buf.Reset()
	s.samples.Store(0)
	s.started = now
	s.lastEst = time.Time{}
	s.deadline.Store(now.Add(s.duration).UnixNano())
	if s.logger != nil {
		s.logger.Info("measurement started", "session", id, "duration", s.duration, "estimator", s.estimator.Name())
	}
	// force listeners to see a fresh start even from waiting
	if s.Current() == StateWaiting {
		s.transition(StateHalt)
	}
	s.transition(StateWaiting)
}

func (s *Session) handleTick(now time.Time) {
	st := s.Current()
	if !st.Active() {
		return
	}
	if now.Sub(s.started) >= s.duration {
		s.finish(now)
		return
	}
	if st == StateMeasuring && s.buf.Ready(1) && now.Sub(s.lastEst) >= interimInterval {
		s.lastEst = now
		m, err := s.estimator.Estimate(s.buf, now)
		if err != nil {
			return
		}
		for _, l := range s.mlisten {
			l(m, false)
		}
	}
}

func (s *Session) finish(now time.Time) {
	s.deadline.Store(0)
	res := Result{ID: s.ID(), Started: s.started, Finished: now, Samples: s.buf.Len()}
	m, err := s.estimator.Estimate(s.buf, now)
	next := StateComplete
	if err != nil {
		res.Err = err
		res.Reason = ReasonLowQuality
		if errors.Is(err, pulse.ErrInsufficientSamples) {
			res.Reason = ReasonInsufficientData
		}
		next = StateFailed
		if s.logger != nil {
			s.logger.Warn("measurement failed", "session", res.ID, "samples", res.Samples, "error", err)
		}
	} else {
		res.Metrics = m
		if s.logger != nil {
			s.logger.Info("measurement complete",
				"session", res.ID,
				"samples", res.Samples,
				"heart_rate", m.HeartRate,
				"spo2", m.SpO2,
				"blood_pressure", m.BloodPressure(),
				"bp_calibrated", false,
				"cardio_load", m.Load,
				"quality", m.Quality,
				"estimator", m.Estimator,
			)
		}
	}
	s.mu.Lock()
	s.result = &res
	s.mu.Unlock()
	if err == nil {
		for _, l := range s.mlisten {
			l(m, true)
		}
	}
	s.transition(next)
}

func (s *Session) transition(next State) {
	prev := s.Current()
	if prev == next {
		return
	}
	s.state.Store(int32(next))
	if s.logger != nil {
		s.logger.Debug("session state transition", "session", s.ID(), "from", prev.String(), "to", next.String())
	}
	for _, l := range s.listeners {
		l(prev, next)
	}
}

func (s *Session) send(ev interface{}) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// Public API implements contracts
func (s *Session) AddListener(l StateListener)          { s.send(evtAddListener{l: l}) }
func (s *Session) AddMetricsListener(l MetricsListener) { s.send(evtAddMetrics{l: l}) }
func (s *Session) Current() State                       { return State(s.state.Load()) }
func (s *Session) Start(now time.Time)                  { s.send(evtStart{now: now}) }
func (s *Session) Tick(now time.Time)                   { s.send(evtTick{now: now}) }
func (s *Session) FaceFound()                           { s.send(evtFaceFound{}) }
func (s *Session) FaceLost()                            { s.send(evtFaceLost{}) }
func (s *Session) AddSample(smp pulse.Sample)           { s.send(evtSample{s: smp}) }
func (s *Session) Halt()                                { s.send(evtHalt{}) }
func (s *Session) SampleCount() int                     { return int(s.samples.Load()) }

// Remaining returns the countdown left at now, zero when not measuring.
func (s *Session) Remaining(now time.Time) time.Duration {
	d := s.deadline.Load()
	if d == 0 {
		return 0
	}
	left := time.Unix(0, d).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Result returns the outcome of the last finished measurement.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Close stops the event loop. Later events are dropped.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Ensure contract satisfaction
var _ Contract = (*Session)(nil)
