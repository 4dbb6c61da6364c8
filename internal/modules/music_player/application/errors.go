package application

import "errors"

var (
	// ErrPlayerNotFound is returned when a guild has no player, or its
	// player was already destroyed.
	ErrPlayerNotFound = errors.New("no player for this guild")

	// ErrVoiceManagerNotConnected is returned when an operation needs a
	// voice connection the voice manager does not have.
	ErrVoiceManagerNotConnected = errors.New("not connected to a voice channel")

	// ErrGuildChannelNotFound is returned when a channel is missing from
	// the guild state cache.
	ErrGuildChannelNotFound = errors.New("channel not found in guild cache")

	// ErrNoMatches is returned when a play query yields nothing, even
	// after the search-prefix retry.
	ErrNoMatches = errors.New("no tracks matched the query")
)
