package application

import (
	"runtime"
	"time"

	"github.com/hydrogenbot/hydrogen/internal/modules/status/domain"
)

// Interactor assembles status reports. The uptime clock starts when the
// interactor is created, which happens during module initialization.
type Interactor struct {
	version string
	started time.Time
}

// NewInteractor creates an Interactor reporting the given build version.
func NewInteractor(version string) *Interactor {
	return &Interactor{
		version: version,
		started: time.Now(),
	}
}

// Report builds a snapshot from the gateway figures passed in.
func (in *Interactor) Report(guilds int, latency time.Duration) domain.Report {
	return domain.Report{
		Version:   in.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(in.started),
		Guilds:    guilds,
		Latency:   latency,
	}
}
