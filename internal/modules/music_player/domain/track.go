package domain

import (
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Track is an immutable descriptor of a playable audio track. Encoded is the
// opaque node-specific blob pushed back to the node when the track starts.
type Track struct {
	Encoded    string
	Title      string
	Author     string
	Length     time.Duration
	URI        string
	ArtworkURL string
	Stream     bool
	Requester  snowflake.ID // Discord user who enqueued the track
}

// Equal reports whether two tracks are the same enqueued entry. Identity is
// the encoded blob plus the requester, so the same song queued by two users
// counts as two distinct tracks.
func (t Track) Equal(other Track) bool {
	return t.Encoded == other.Encoded && t.Requester == other.Requester
}

// FormattedLength returns the track length as mm:ss or hh:mm:ss, or "LIVE"
// for streams.
func (t Track) FormattedLength() string {
	if t.Stream {
		return "LIVE"
	}
	return FormatDuration(t.Length)
}

// FormatDuration renders a duration as mm:ss, or hh:mm:ss once it reaches an
// hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	totalSeconds := int(d / time.Second)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
