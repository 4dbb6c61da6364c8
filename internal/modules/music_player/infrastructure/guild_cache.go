package infrastructure

import (
	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/application/ports"
)

// GuildCache answers channel and voice-state lookups from discordgo's state
// cache.
type GuildCache struct {
	session *discordgo.Session
	botID   snowflake.ID
}

// NewGuildCache creates a guild cache backed by the session's state.
func NewGuildCache(session *discordgo.Session, botID snowflake.ID) *GuildCache {
	return &GuildCache{session: session, botID: botID}
}

// ChannelInfo returns the channel kind and its occupancy. The count includes
// the bot itself and every connected human; other bots are skipped.
func (g *GuildCache) ChannelInfo(channelID snowflake.ID) (ports.ChannelInfo, bool) {
	channel, err := g.session.State.Channel(channelID.String())
	if err != nil {
		return ports.ChannelInfo{}, false
	}

	info := ports.ChannelInfo{
		Voice: channel.Type == discordgo.ChannelTypeGuildVoice ||
			channel.Type == discordgo.ChannelTypeGuildStageVoice,
	}
	if !info.Voice {
		return info, true
	}

	guild, err := g.session.State.Guild(channel.GuildID)
	if err != nil {
		return ports.ChannelInfo{}, false
	}

	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID.String() {
			continue
		}
		if vs.UserID != g.botID.String() && g.isBot(channel.GuildID, vs) {
			continue
		}
		info.Members++
	}
	return info, true
}

// UserVoiceChannel returns the voice channel the user is connected to in the
// guild.
func (g *GuildCache) UserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, bool) {
	guild, err := g.session.State.Guild(guildID.String())
	if err != nil {
		return 0, false
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID != userID.String() || vs.ChannelID == "" {
			continue
		}
		channelID, err := snowflake.Parse(vs.ChannelID)
		if err != nil {
			return 0, false
		}
		return channelID, true
	}
	return 0, false
}

// isBot reports whether the voice state belongs to a bot account. Members
// missing from the cache count as human, so a cache miss never disconnects a
// listener.
func (g *GuildCache) isBot(guildID string, vs *discordgo.VoiceState) bool {
	if vs.Member != nil && vs.Member.User != nil {
		return vs.Member.User.Bot
	}
	member, err := g.session.State.Member(guildID, vs.UserID)
	if err != nil || member.User == nil {
		return false
	}
	return member.User.Bot
}

// Ensure GuildCache implements its port.
var _ ports.GuildCache = (*GuildCache)(nil)
