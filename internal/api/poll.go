package api

import (
	"context"
	"os"
	"time"
)

// manifestProbeInterval is how often the manifest's mtime is checked
// between scheduled refreshes.
const manifestProbeInterval = 2 * time.Second

// Poll refreshes the report on a fixed cadence and, independently,
// whenever the manifest file changes on disk. An interval of zero or less
// disables the cadence and leaves only change detection. Poll blocks until
// ctx is cancelled.
func (s *Server) Poll(ctx context.Context, manifestPath string, interval time.Duration) {
	var lastMod time.Time
	if info, err := os.Stat(manifestPath); err == nil {
		lastMod = info.ModTime()
	}

	// Prime the report so the API has something to serve before the
	// first tick.
	_, _ = s.runRefresh(ctx, "startup")

	var refreshC <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		refreshC = ticker.C
	}

	probe := time.NewTicker(manifestProbeInterval)
	defer probe.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-refreshC:
			_, _ = s.runRefresh(ctx, "poll")

		case <-probe.C:
			info, err := os.Stat(manifestPath)
			if err != nil || !info.ModTime().After(lastMod) {
				continue
			}
			lastMod = info.ModTime()
			s.logger.Info("manifest changed, refreshing", "path", manifestPath)
			_, _ = s.runRefresh(ctx, "manifest_change")
		}
	}
}
