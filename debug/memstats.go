package debug

// Memory/RSS periodic logger enabled when config.Debug is true.
// Logs resident set size along with Go heap stats so decoded frame buffers
// held by Tk photos show up as native growth.

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// StartMemLogger launches a goroutine that logs memory stats every interval
// until ctx is done. RSS is best-effort; a failed query is logged once.
func StartMemLogger(ctx context.Context, interval time.Duration, logger zerolog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var rssErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			rss, err := residentSetSize()
			if err != nil && !rssErrLogged {
				logger.Warn().Err(err).Msg("memlog: rss query failed")
				rssErrLogged = true
			}
			logger.Info().
				Int("goroutines", runtime.NumGoroutine()).
				Uint64("heap_alloc", ms.HeapAlloc).
				Uint64("heap_inuse", ms.HeapInuse).
				Uint64("heap_idle", ms.HeapIdle).
				Uint64("heap_sys", ms.HeapSys).
				Uint64("next_gc", ms.NextGC).
				Uint64("rss", rss).
				Uint32("num_gc", ms.NumGC).
				Msg("memstats")
		}
	}()
}
