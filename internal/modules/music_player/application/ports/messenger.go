package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"

	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/domain"
)

// Custom IDs of the now-playing panel's buttons. The Messenger renders the
// buttons with these IDs; the module's interaction handler routes presses
// back into the player.
const (
	ComponentPrevious = "music:prev"
	ComponentPause    = "music:pause"
	ComponentSkip     = "music:skip"
	ComponentLoop     = "music:loop"
	ComponentStop     = "music:stop"
)

// PanelView is a render-ready snapshot of a player's state for the
// now-playing panel. Track is nil when nothing is queued. A non-zero
// CountdownSeconds switches the panel to the "disconnecting soon" variant.
type PanelView struct {
	Locale           string
	Track            *domain.Track
	Paused           bool
	Mode             domain.LoopMode
	Position         int // 1-based queue position of the current track
	QueueLen         int
	CountdownSeconds int
}

// Messenger owns the now-playing panel message in the guild's text channel.
type Messenger interface {
	// SendPanel posts a new panel and returns its message handle.
	SendPanel(ctx context.Context, channelID snowflake.ID, view PanelView) (domain.NowPlayingMessage, error)

	// UpdatePanel edits an existing panel in place.
	UpdatePanel(ctx context.Context, msg domain.NowPlayingMessage, view PanelView) error

	// DeletePanel removes the panel message.
	DeletePanel(ctx context.Context, msg domain.NowPlayingMessage) error
}
