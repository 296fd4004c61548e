package pulse

import (
	"time"

	"github.com/gammazero/deque"
)

// Buffer keeps time-ordered samples for the current measurement. Samples older
// than the retention window (relative to the newest sample) are discarded.
// Not safe for concurrent use; the measurement session owns it.
type Buffer struct {
	samples   deque.Deque[Sample]
	retention time.Duration
}

// NewBuffer returns a buffer retaining samples for the given duration. A
// non-positive retention keeps everything.
func NewBuffer(retention time.Duration) *Buffer {
	return &Buffer{retention: retention}
}

// Add appends s and reports whether it was accepted. Samples that do not
// advance time are rejected.
func (b *Buffer) Add(s Sample) bool {
	if b.samples.Len() > 0 && !s.At.After(b.samples.Back().At) {
		return false
	}
	b.samples.PushBack(s)
	if b.retention > 0 {
		for b.samples.Len() > 1 && s.At.Sub(b.samples.Front().At) > b.retention {
			b.samples.PopFront()
		}
	}
	return true
}

func (b *Buffer) Len() int { return b.samples.Len() }

// Ready reports whether at least min samples have been collected.
func (b *Buffer) Ready(min int) bool { return b.samples.Len() >= min }

// Samples returns a copy of the buffered samples, oldest first.
func (b *Buffer) Samples() []Sample {
	out := make([]Sample, b.samples.Len())
	for i := range out {
		out[i] = b.samples.At(i)
	}
	return out
}

// Span is the time between the oldest and newest sample.
func (b *Buffer) Span() time.Duration {
	if b.samples.Len() < 2 {
		return 0
	}
	return b.samples.Back().At.Sub(b.samples.Front().At)
}

// Last returns the newest sample.
func (b *Buffer) Last() (Sample, bool) {
	if b.samples.Len() == 0 {
		return Sample{}, false
	}
	return b.samples.Back(), true
}

// Reset drops all samples.
func (b *Buffer) Reset() { b.samples.Clear() }
