// Package debug holds runtime loggers started with -debug.
package debug

import (
	"log/slog"
	"runtime/metrics"
	"time"
)

// StartGoroutineLogger logs the goroutine count and stack memory every
// interval. Capture, worker and watcher goroutines are started and stopped
// with each measurement, so a rising count points at a leak.
func StartGoroutineLogger(interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{
			{Name: "/sched/goroutines:goroutines"},
			{Name: "/memory/classes/heap/stacks:bytes"},
		}
		for range t.C {
			metrics.Read(samples)
			logger.Info("goroutine-stacks",
				slog.Uint64("goroutines", samples[0].Value.Uint64()),
				slog.Uint64("stack_bytes", samples[1].Value.Uint64()),
			)
		}
	}()
}
