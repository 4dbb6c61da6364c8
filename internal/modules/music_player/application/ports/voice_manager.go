package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"

	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/domain"
)

// VoiceManager drives the chat platform's voice gateway. Join returns once
// the gateway has delivered the session, token and endpoint, so a successful
// join guarantees a complete ConnectionInfo.
type VoiceManager interface {
	// Join connects the bot to a voice channel.
	Join(ctx context.Context, guildID, channelID snowflake.ID) error

	// Leave disconnects the bot from the guild's voice channel.
	Leave(ctx context.Context, guildID snowflake.ID) error

	// ConnectionInfo returns the current voice connection for the guild.
	// The second return is false when the guild has no connection.
	ConnectionInfo(guildID snowflake.ID) (domain.Connection, bool)
}
