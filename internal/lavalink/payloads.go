package lavalink

import (
	"encoding/json"

	"github.com/disgoorg/snowflake/v2"
)

// op values of frames a node pushes over the websocket.
const (
	opReady        = "ready"
	opPlayerUpdate = "playerUpdate"
	opStats        = "stats"
	opEvent        = "event"
)

// type values carried by op "event" frames.
const (
	eventTrackStart      = "TrackStartEvent"
	eventTrackEnd        = "TrackEndEvent"
	eventTrackException  = "TrackExceptionEvent"
	eventTrackStuck      = "TrackStuckEvent"
	eventWebSocketClosed = "WebSocketClosedEvent"
)

// LoadType classifies a loadtracks response.
type LoadType string

const (
	LoadTypeTrackLoaded    LoadType = "TRACK_LOADED"
	LoadTypePlaylistLoaded LoadType = "PLAYLIST_LOADED"
	LoadTypeSearchResult   LoadType = "SEARCH_RESULT"
	LoadTypeNoMatches      LoadType = "NO_MATCHES"
	LoadTypeLoadFailed     LoadType = "LOAD_FAILED"
)

// TrackInfo describes a decoded track.
type TrackInfo struct {
	Identifier string `json:"identifier"`
	IsSeekable bool   `json:"isSeekable"`
	Author     string `json:"author"`
	Length     int64  `json:"length"`
	IsStream   bool   `json:"isStream"`
	Position   int64  `json:"position"`
	Title      string `json:"title"`
	URI        string `json:"uri,omitempty"`
	SourceName string `json:"sourceName,omitempty"`
	ArtworkURL string `json:"artworkUrl,omitempty"`
}

// Track is a playable track as returned by the node. Encoded carries the
// node-specific blob that must be sent back verbatim to play the track.
type Track struct {
	Encoded string `json:"encoded"`
	// DeprecatedTrack mirrors Encoded under the pre-3.7 field name.
	DeprecatedTrack string    `json:"track,omitempty"`
	Info            TrackInfo `json:"info"`
}

// PlaylistInfo accompanies PLAYLIST_LOADED results. SelectedTrack is the
// index the playlist link pointed at, or -1.
type PlaylistInfo struct {
	Name          string `json:"name"`
	SelectedTrack int    `json:"selectedTrack"`
}

// Exception describes a track load or playback failure.
type Exception struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Cause    string `json:"cause,omitempty"`
}

// LoadResult is the response of the loadtracks endpoint.
type LoadResult struct {
	LoadType     LoadType     `json:"loadType"`
	PlaylistInfo PlaylistInfo `json:"playlistInfo"`
	Tracks       []Track      `json:"tracks"`
	Exception    *Exception   `json:"exception,omitempty"`
}

// VoiceState carries the Discord voice credentials a node needs to join a
// voice server on the bot's behalf.
type VoiceState struct {
	Token     string `json:"token"`
	Endpoint  string `json:"endpoint"`
	SessionID string `json:"sessionId"`
	Connected bool   `json:"connected,omitempty"`
	Ping      int    `json:"ping,omitempty"`
}

// Player is the node-side playback state for one guild.
type Player struct {
	GuildID snowflake.ID    `json:"guildId"`
	Track   *Track          `json:"track"`
	Volume  int             `json:"volume"`
	Paused  bool            `json:"paused"`
	Voice   VoiceState      `json:"voice"`
	Filters json.RawMessage `json:"filters,omitempty"`
}

// PlayerUpdate is the request body of the update-player endpoint. nil fields
// are omitted so the node leaves them untouched. EncodedTrack is a Nullable
// because an explicit null stops the current track.
type PlayerUpdate struct {
	EncodedTrack *Nullable   `json:"encodedTrack,omitempty"`
	Identifier   *string     `json:"identifier,omitempty"`
	Position     *int64      `json:"position,omitempty"`
	EndTime      *int64      `json:"endTime,omitempty"`
	Volume       *int        `json:"volume,omitempty"`
	Paused       *bool       `json:"paused,omitempty"`
	Voice        *VoiceState `json:"voice,omitempty"`
}

// Nullable is a string field that distinguishes "omitted" (nil *Nullable)
// from "explicit JSON null" (the zero Nullable).
type Nullable struct {
	value *string
}

// PlayTrack wraps an encoded track blob for a player update.
func PlayTrack(encoded string) *Nullable {
	return &Nullable{value: &encoded}
}

// StopTrack yields an explicit encodedTrack null, which tells the node to
// stop the current track.
func StopTrack() *Nullable {
	return &Nullable{}
}

// MarshalJSON implements json.Marshaler.
func (n Nullable) MarshalJSON() ([]byte, error) {
	if n.value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.value)
}

// readyMessage is the first frame a node sends after the websocket
// handshake.
type readyMessage struct {
	Resumed   bool   `json:"resumed"`
	SessionID string `json:"sessionId"`
}

// PlayerUpdateMessage is the periodic position frame a node pushes per
// player.
type PlayerUpdateMessage struct {
	GuildID snowflake.ID `json:"guildId"`
	State   PlayerState  `json:"state"`
}

// PlayerState is the live snapshot inside a player update frame.
type PlayerState struct {
	Time      int64 `json:"time"`
	Position  int64 `json:"position"`
	Connected bool  `json:"connected"`
	Ping      int   `json:"ping"`
}

// Stats is the periodic load report a node pushes.
type Stats struct {
	Players        int         `json:"players"`
	PlayingPlayers int         `json:"playingPlayers"`
	Uptime         int64       `json:"uptime"`
	Memory         MemoryStats `json:"memory"`
	CPU            CPUStats    `json:"cpu"`
	FrameStats     *FrameStats `json:"frameStats,omitempty"`
}

// MemoryStats is the JVM memory block of a stats frame.
type MemoryStats struct {
	Free       int64 `json:"free"`
	Used       int64 `json:"used"`
	Allocated  int64 `json:"allocated"`
	Reservable int64 `json:"reservable"`
}

// CPUStats is the CPU block of a stats frame.
type CPUStats struct {
	Cores        int     `json:"cores"`
	SystemLoad   float64 `json:"systemLoad"`
	LavalinkLoad float64 `json:"lavalinkLoad"`
}

// FrameStats is the audio frame block of a stats frame. Only present once
// the node has players.
type FrameStats struct {
	Sent    int `json:"sent"`
	Nulled  int `json:"nulled"`
	Deficit int `json:"deficit"`
}

// TrackStartEvent signals the node began playing a track.
type TrackStartEvent struct {
	GuildID      snowflake.ID `json:"guildId"`
	EncodedTrack string       `json:"encodedTrack"`
}

// TrackEndReason explains why a track stopped playing.
type TrackEndReason string

const (
	TrackEndFinished   TrackEndReason = "FINISHED"
	TrackEndLoadFailed TrackEndReason = "LOAD_FAILED"
	TrackEndStopped    TrackEndReason = "STOPPED"
	TrackEndReplaced   TrackEndReason = "REPLACED"
	TrackEndCleanup    TrackEndReason = "CLEANUP"
)

// MayStartNext reports whether playback should advance to the next track
// after this end reason.
func (r TrackEndReason) MayStartNext() bool {
	return r == TrackEndFinished
}

// TrackEndEvent signals the node stopped playing a track.
type TrackEndEvent struct {
	GuildID      snowflake.ID   `json:"guildId"`
	EncodedTrack string         `json:"encodedTrack"`
	Reason       TrackEndReason `json:"reason"`
}

// TrackExceptionEvent signals a track failed during playback.
type TrackExceptionEvent struct {
	GuildID      snowflake.ID `json:"guildId"`
	EncodedTrack string       `json:"encodedTrack"`
	Exception    Exception    `json:"exception"`
}

// TrackStuckEvent signals a track produced no frames for thresholdMs.
type TrackStuckEvent struct {
	GuildID      snowflake.ID `json:"guildId"`
	EncodedTrack string       `json:"encodedTrack"`
	ThresholdMs  int64        `json:"thresholdMs"`
}

// WebSocketClosedEvent signals Discord closed the voice websocket of a
// guild's audio connection.
type WebSocketClosedEvent struct {
	GuildID  snowflake.ID `json:"guildId"`
	Code     int          `json:"code"`
	Reason   string       `json:"reason"`
	ByRemote bool         `json:"byRemote"`
}
