package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Report is a snapshot of the running process for the /about command.
type Report struct {
	Version   string
	GoVersion string
	Uptime    time.Duration
	Guilds    int
	Latency   time.Duration
}

// FormattedUptime renders the uptime as a compact "1d 2h 3m 4s" string,
// dropping leading units that are zero.
func (r Report) FormattedUptime() string {
	d := r.Uptime
	if d < 0 {
		d = 0
	}

	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	seconds := int(d % time.Minute / time.Second)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// FormattedLatency renders the heartbeat latency in whole milliseconds.
func (r Report) FormattedLatency() string {
	return strconv.FormatInt(r.Latency.Milliseconds(), 10) + " ms"
}
