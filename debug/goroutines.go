package debug

// Goroutine and stack diagnostics, started only when config.Debug is true.
// Used to tell decode-worker or reconnect goroutine leaks apart from heap growth.

import (
	"context"
	"runtime"
	"runtime/metrics"
	"time"

	"github.com/rs/zerolog"
)

// StartGoroutineLogger launches a ticker that logs goroutine count and stack
// memory until ctx is done.
func StartGoroutineLogger(ctx context.Context, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			metrics.Read(samples)
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			logger.Info().
				Uint64("goroutines", samples[0].Value.Uint64()).
				Uint64("stack_inuse", ms.StackInuse).
				Uint64("stack_sys", ms.StackSys).
				Uint64("heap_alloc", ms.HeapAlloc).
				Msg("goroutine-stacks")
		}
	}()
}
