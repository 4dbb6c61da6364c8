package domain

import "github.com/disgoorg/snowflake/v2"

// NowPlayingMessage identifies a player's now-playing panel message. The
// channel ID is kept alongside the message ID because deletion needs both
// and the panel may live in a different channel than later commands.
type NowPlayingMessage struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
}
