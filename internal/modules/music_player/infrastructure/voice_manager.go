package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/application/ports"
	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/domain"
)

// voiceJoinTimeout bounds the wait for the gateway to deliver both voice
// events after a join request.
const voiceJoinTimeout = 10 * time.Second

// pendingJoin tracks an in-flight join until the gateway has delivered both
// the voice-state and the voice-server event.
type pendingJoin struct {
	mu        sync.Mutex
	gotState  bool
	gotServer bool
	ready     chan struct{}
}

func (p *pendingJoin) observe(state bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if state {
		p.gotState = true
	} else {
		p.gotServer = true
	}

	if p.gotState && p.gotServer {
		select {
		case <-p.ready:
		default:
			close(p.ready)
		}
	}
}

// VoiceManager drives Discord's voice gateway through discordgo and assembles
// domain Connections from the resulting events. Joins are issued manually
// because audio is rendered by a Lavalink node, not by discordgo's own voice
// engine.
type VoiceManager struct {
	session *discordgo.Session
	botID   snowflake.ID

	mu          sync.Mutex
	connections map[snowflake.ID]domain.Connection
	pending     map[snowflake.ID]*pendingJoin
}

// NewVoiceManager creates a voice manager for the given session. Its
// HandleVoiceStateUpdate and HandleVoiceServerUpdate methods must be wired
// into the session's event handlers.
func NewVoiceManager(session *discordgo.Session, botID snowflake.ID) *VoiceManager {
	return &VoiceManager{
		session:     session,
		botID:       botID,
		connections: make(map[snowflake.ID]domain.Connection),
		pending:     make(map[snowflake.ID]*pendingJoin),
	}
}

// Join moves the bot into the channel and waits until the gateway has
// delivered both voice events, so ConnectionInfo is complete afterwards.
func (v *VoiceManager) Join(ctx context.Context, guildID, channelID snowflake.ID) error {
	pending := &pendingJoin{ready: make(chan struct{})}

	v.mu.Lock()
	v.pending[guildID] = pending
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		delete(v.pending, guildID)
		v.mu.Unlock()
	}()

	if err := v.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, false); err != nil {
		return fmt.Errorf("joining voice channel: %w", err)
	}

	select {
	case <-pending.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for voice connection: %w", ctx.Err())
	case <-time.After(voiceJoinTimeout):
		return fmt.Errorf("timed out waiting for voice connection to channel %s", channelID)
	}
}

// Leave disconnects the bot from the guild's voice channel and drops the
// stored connection.
func (v *VoiceManager) Leave(_ context.Context, guildID snowflake.ID) error {
	if err := v.session.ChannelVoiceJoinManual(guildID.String(), "", false, false); err != nil {
		return fmt.Errorf("leaving voice channel: %w", err)
	}

	v.mu.Lock()
	delete(v.connections, guildID)
	v.mu.Unlock()
	return nil
}

// ConnectionInfo returns the guild's voice connection as assembled from the
// gateway events seen so far.
func (v *VoiceManager) ConnectionInfo(guildID snowflake.ID) (domain.Connection, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	connection, ok := v.connections[guildID]
	return connection, ok
}

// HandleVoiceStateUpdate captures the bot's own voice-state updates. Updates
// for other users are ignored here; the orchestrator sees them separately.
func (v *VoiceManager) HandleVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != v.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Warn("unparseable guild id in voice state update", "guild_id", event.GuildID, "error", err)
		return
	}

	if event.ChannelID == "" {
		v.mu.Lock()
		delete(v.connections, guildID)
		v.mu.Unlock()
		return
	}

	channelID, err := snowflake.Parse(event.ChannelID)
	if err != nil {
		slog.Warn("unparseable channel id in voice state update", "channel_id", event.ChannelID, "error", err)
		return
	}

	v.mu.Lock()
	connection := v.connections[guildID]
	connection.SessionID = event.SessionID
	connection.ChannelID = &channelID
	v.connections[guildID] = connection
	pending := v.pending[guildID]
	v.mu.Unlock()

	if pending != nil {
		pending.observe(true)
	}
}

// HandleVoiceServerUpdate captures voice credentials. An update without an
// endpoint keeps the previous endpoint, matching how the platform signals a
// pending allocation.
func (v *VoiceManager) HandleVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Warn("unparseable guild id in voice server update", "guild_id", event.GuildID, "error", err)
		return
	}

	v.mu.Lock()
	connection := v.connections[guildID]
	connection.Token = event.Token
	if event.Endpoint != "" {
		connection.Endpoint = event.Endpoint
	}
	v.connections[guildID] = connection
	pending := v.pending[guildID]
	v.mu.Unlock()

	if pending != nil {
		pending.observe(false)
	}
}

// Ensure VoiceManager implements its port.
var _ ports.VoiceManager = (*VoiceManager)(nil)
