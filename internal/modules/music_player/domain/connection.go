package domain

import "github.com/disgoorg/snowflake/v2"

// Connection describes a player's voice link. SessionID arrives with the
// gateway voice-state update; Token and Endpoint arrive with the
// voice-server update. ChannelID is nil while the bot is not in a channel.
type Connection struct {
	ChannelID *snowflake.ID
	SessionID string
	Token     string
	Endpoint  string
}

// Complete reports whether the connection carries everything a node needs to
// open the voice stream. Only complete connections are pushed to a node.
func (c Connection) Complete() bool {
	return c.SessionID != "" && c.Token != "" && c.Endpoint != ""
}
