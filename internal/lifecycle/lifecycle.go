// Package lifecycle holds process-wide run state read by the health endpoint.
package lifecycle

import (
	"sync/atomic"
	"time"
)

var (
	shuttingDown atomic.Bool
	startedAt    = time.Now()
)

// SetShuttingDown flips the drain flag. main sets it on SIGTERM/SIGINT before
// http.Server.Shutdown so /health reports shutting-down while requests drain.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

func IsShuttingDown() bool {
	return shuttingDown.Load()
}

// Uptime is the time since the process loaded this package.
func Uptime() time.Duration {
	return time.Since(startedAt)
}
