package domain

// LoopMode encodes the playback policy applied when a track finishes.
type LoopMode int

const (
	LoopModeNone        LoopMode = iota // advance linearly, stop at the end
	LoopModeNoAutostart                 // advance the index but never autoplay
	LoopModeMusic                       // replay the current track indefinitely
	LoopModeQueue                       // advance, wrapping to the start at the end
	LoopModeRandom                      // jump to a uniform-random track
)

// String returns the stable identifier for the loop mode, used in command
// choices and message catalogs.
func (m LoopMode) String() string {
	switch m {
	case LoopModeNoAutostart:
		return "no_autostart"
	case LoopModeMusic:
		return "music"
	case LoopModeQueue:
		return "queue"
	case LoopModeRandom:
		return "random"
	default:
		return "none"
	}
}

// ParseLoopMode converts a string identifier to a LoopMode. Unknown values
// map to LoopModeNone.
func ParseLoopMode(s string) LoopMode {
	switch s {
	case "no_autostart":
		return LoopModeNoAutostart
	case "music":
		return LoopModeMusic
	case "queue":
		return LoopModeQueue
	case "random":
		return LoopModeRandom
	default:
		return LoopModeNone
	}
}

// Cycle returns the next mode in the loop button rotation. Every mode is
// reachable from the panel button; the rotation puts the common modes first.
func (m LoopMode) Cycle() LoopMode {
	switch m {
	case LoopModeNone:
		return LoopModeMusic
	case LoopModeMusic:
		return LoopModeQueue
	case LoopModeQueue:
		return LoopModeRandom
	case LoopModeRandom:
		return LoopModeNoAutostart
	default:
		return LoopModeNone
	}
}

// RepeatTrack reports whether the current track replays when it finishes.
func (m LoopMode) RepeatTrack() bool {
	return m == LoopModeMusic
}

// RandomNext reports whether the next track is picked at random.
func (m LoopMode) RandomNext() bool {
	return m == LoopModeRandom
}

// Cyclic reports whether the queue wraps around at the end.
func (m LoopMode) Cyclic() bool {
	return m == LoopModeQueue
}

// Autoplay reports whether a finished track automatically starts the next
// one.
func (m LoopMode) Autoplay() bool {
	return m != LoopModeNoAutostart
}
