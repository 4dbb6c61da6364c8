package lavalink

// EventHandler receives node lifecycle and playback events. Calls are made
// from the node's read loop, so implementations must not block for long.
type EventHandler interface {
	// OnReady fires once the node confirms the websocket session.
	OnReady(node Node, resumed bool)

	// OnDisconnect fires when the websocket closes for any reason.
	OnDisconnect(node Node)

	// OnTrackStart fires when a track begins playing.
	OnTrackStart(node Node, event TrackStartEvent)

	// OnTrackEnd fires when a track stops playing.
	OnTrackEnd(node Node, event TrackEndEvent)
}

// StatsHandler is implemented by handlers that also want node stats frames.
type StatsHandler interface {
	OnStats(node Node, stats Stats)
}

// PlayerUpdateHandler is implemented by handlers that also want per-player
// position frames.
type PlayerUpdateHandler interface {
	OnPlayerUpdate(node Node, update PlayerUpdateMessage)
}

// TrackExceptionHandler is implemented by handlers that also want playback
// failure events.
type TrackExceptionHandler interface {
	OnTrackException(node Node, event TrackExceptionEvent)
}

// TrackStuckHandler is implemented by handlers that also want stuck-track
// events.
type TrackStuckHandler interface {
	OnTrackStuck(node Node, event TrackStuckEvent)
}

// WebSocketClosedHandler is implemented by handlers that also want Discord
// voice websocket close events.
type WebSocketClosedHandler interface {
	OnWebSocketClosed(node Node, event WebSocketClosedEvent)
}
