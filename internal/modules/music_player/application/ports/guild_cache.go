package ports

import "github.com/disgoorg/snowflake/v2"

// ChannelInfo is the slice of channel state the orchestrator cares about.
// Members counts the bot itself and every connected human; other bots are
// excluded so they cannot hold a player open in an otherwise empty channel.
type ChannelInfo struct {
	Voice   bool // voice or stage channel
	Members int
}

// GuildCache answers lookups against the chat platform's guild state cache.
type GuildCache interface {
	// ChannelInfo returns the kind and occupancy of a channel. The second
	// return is false when the channel is not in the cache.
	ChannelInfo(channelID snowflake.ID) (ChannelInfo, bool)

	// UserVoiceChannel returns the voice channel the user is connected to
	// in the guild, or false when they are not in one.
	UserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, bool)
}
