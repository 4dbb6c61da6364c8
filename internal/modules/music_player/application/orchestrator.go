package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/hydrogenbot/hydrogen/internal/lavalink"
	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/application/ports"
	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/domain"
	"github.com/hydrogenbot/hydrogen/internal/observe"
)

// VoiceStateEvent is the slice of a gateway voice-state update the
// orchestrator consumes. HadPrevious is true when the gateway reported an
// old state, which distinguishes moves and disconnects from initial joins.
type VoiceStateEvent struct {
	GuildID     snowflake.ID
	UserID      snowflake.ID
	SessionID   string
	ChannelID   *snowflake.ID
	HadPrevious bool
}

// VoiceServerEvent carries the voice credentials from a gateway voice-server
// update. Endpoint may be empty when the platform has not allocated one yet.
type VoiceServerEvent struct {
	GuildID  snowflake.ID
	Token    string
	Endpoint string
}

// Orchestrator owns the guild-to-player registry and the node pool. It turns
// user commands into player operations, reacts to gateway voice events, and
// implements the node client's event handler so node lifecycle feeds back
// into the registry.
type Orchestrator struct {
	botID        snowflake.ID
	voice        ports.VoiceManager
	guilds       ports.GuildCache
	messenger    ports.Messenger
	pool         *lavalink.Pool
	metrics      *observe.Metrics
	queueSize    int
	searchPrefix string
	idleTimeout  time.Duration

	mu      sync.RWMutex
	players map[snowflake.ID]*Player

	idle *IdleDestroyer

	fatal     chan<- error
	fatalOnce sync.Once
}

// Compile-time interface checks.
var (
	_ lavalink.EventHandler = (*Orchestrator)(nil)
	_ lavalink.StatsHandler = (*Orchestrator)(nil)
)

// OrchestratorConfig bundles the orchestrator's collaborators. Metrics may
// be nil; Fatal receives at most one error, reported when the node pool
// empties.
type OrchestratorConfig struct {
	BotID        snowflake.ID
	Voice        ports.VoiceManager
	Guilds       ports.GuildCache
	Messenger    ports.Messenger
	Pool         *lavalink.Pool
	Metrics      *observe.Metrics
	Fatal        chan<- error
	QueueSize    int
	SearchPrefix string
	IdleTimeout  time.Duration
}

// NewOrchestrator creates an orchestrator with an empty registry.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	o := &Orchestrator{
		botID:        cfg.BotID,
		voice:        cfg.Voice,
		guilds:       cfg.Guilds,
		messenger:    cfg.Messenger,
		pool:         cfg.Pool,
		metrics:      cfg.Metrics,
		queueSize:    cfg.QueueSize,
		searchPrefix: cfg.SearchPrefix,
		idleTimeout:  cfg.IdleTimeout,
		players:      make(map[snowflake.ID]*Player),
		fatal:        cfg.Fatal,
	}
	o.idle = NewIdleDestroyer(
		func(guildID snowflake.ID) bool { return o.lookup(guildID) != nil },
		func(guildID snowflake.ID) {
			if err := o.Destroy(context.Background(), guildID); err != nil && !errors.Is(err, ErrPlayerNotFound) {
				slog.Warn("idle destroy failed", "guild_id", guildID, "error", err)
			}
		},
	)
	return o
}

// Init creates the guild's player. The guild must already be joined to a
// voice channel through the voice manager. If a player already exists it is
// returned unchanged.
func (o *Orchestrator) Init(ctx context.Context, guildID snowflake.ID, locale string, textChannelID snowflake.ID) (*Player, error) {
	if player := o.lookup(guildID); player != nil {
		return player, nil
	}

	connection, ok := o.voice.ConnectionInfo(guildID)
	if !ok {
		return nil, ErrVoiceManagerNotConnected
	}

	node, err := o.pool.Acquire()
	if err != nil {
		return nil, fmt.Errorf("acquiring node for guild %s: %w", guildID, err)
	}

	o.mu.Lock()
	if existing := o.players[guildID]; existing != nil {
		o.mu.Unlock()
		return existing, nil
	}
	player := NewPlayer(guildID, locale, textChannelID, node, o.voice, connection, o.queueSize, o.searchPrefix)
	o.players[guildID] = player
	o.mu.Unlock()

	if o.metrics != nil {
		o.metrics.PlayersActive.Add(ctx, 1)
	}
	o.RefreshPanel(ctx, player)
	return player, nil
}

// PlayOrInit plays through the guild's player, creating it first when the
// guild has none.
func (o *Orchestrator) PlayOrInit(ctx context.Context, guildID snowflake.ID, locale string, textChannelID snowflake.ID, query string, requester snowflake.ID) (PlayResult, error) {
	player := o.lookup(guildID)
	if player == nil {
		var err error
		player, err = o.Init(ctx, guildID, locale, textChannelID)
		if err != nil {
			return PlayResult{}, err
		}
	}
	return player.Play(ctx, query, requester)
}

// Get returns the guild's player or ErrPlayerNotFound.
func (o *Orchestrator) Get(guildID snowflake.ID) (*Player, error) {
	if player := o.lookup(guildID); player != nil {
		return player, nil
	}
	return nil, ErrPlayerNotFound
}

// Destroy removes the guild's player from the registry, tears it down,
// deletes its panel and cancels any pending idle timer.
func (o *Orchestrator) Destroy(ctx context.Context, guildID snowflake.ID) error {
	o.mu.Lock()
	player := o.players[guildID]
	delete(o.players, guildID)
	o.mu.Unlock()

	if player == nil {
		return ErrPlayerNotFound
	}

	err := player.Destroy(ctx)

	if panel := player.Panel(); panel != nil {
		if derr := o.messenger.DeletePanel(ctx, *panel); derr != nil {
			slog.Warn("failed to delete now-playing panel", "guild_id", guildID, "error", derr)
		}
	}

	o.idle.Cancel(guildID)

	if o.metrics != nil {
		o.metrics.PlayersActive.Add(ctx, -1)
	}
	return err
}

// Shutdown destroys every player. Used on process stop.
func (o *Orchestrator) Shutdown(ctx context.Context) {
	o.mu.RLock()
	ids := make([]snowflake.ID, 0, len(o.players))
	for id := range o.players {
		ids = append(ids, id)
	}
	o.mu.RUnlock()

	for _, id := range ids {
		if err := o.Destroy(ctx, id); err != nil && !errors.Is(err, ErrPlayerNotFound) {
			slog.Warn("failed to destroy player during shutdown", "guild_id", id, "error", err)
		}
	}
}

// Search resolves a query through an arbitrary pool node using the search
// prefix. Used by command autocompletion; the results carry no requester.
func (o *Orchestrator) Search(ctx context.Context, query string) ([]domain.Track, error) {
	node, err := o.pool.Acquire()
	if err != nil {
		return nil, err
	}
	result, err := node.LoadTracks(ctx, o.searchPrefix+query)
	if err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}
	tracks := make([]domain.Track, len(result.Tracks))
	for i, t := range result.Tracks {
		tracks[i] = trackFromLoad(t, 0)
	}
	return tracks, nil
}

// HandleVoiceState reconciles a gateway voice-state update. For the bot's
// own state it updates or tears down the connection; for every update it
// re-evaluates whether the player's channel went empty and arms or cancels
// the idle timer accordingly.
func (o *Orchestrator) HandleVoiceState(ctx context.Context, ev VoiceStateEvent) {
	player := o.lookup(ev.GuildID)
	if player == nil {
		return
	}

	if ev.UserID == o.botID && ev.HadPrevious {
		if ev.ChannelID == nil {
			if player.Connection().ChannelID != nil {
				if err := o.Destroy(ctx, ev.GuildID); err != nil && !errors.Is(err, ErrPlayerNotFound) {
					slog.Warn("failed to destroy player after voice disconnect", "guild_id", ev.GuildID, "error", err)
				}
			}
			return
		}
		player.SetVoiceState(ev.SessionID, ev.ChannelID)
	}

	connection := player.Connection()
	if connection.ChannelID == nil {
		return
	}

	info, ok := o.guilds.ChannelInfo(*connection.ChannelID)
	if !ok {
		slog.Warn("voice channel lookup failed",
			"guild_id", ev.GuildID, "channel_id", *connection.ChannelID, "error", ErrGuildChannelNotFound)
		return
	}

	if info.Voice && info.Members <= 1 {
		if o.idle.Arm(ev.GuildID, o.idleTimeout) {
			o.renderPanel(ctx, player, int(o.idleTimeout.Seconds()))
		}
		return
	}

	o.idle.Cancel(ev.GuildID)
	o.RefreshPanel(ctx, player)
}

// HandleVoiceServer applies new voice credentials and pushes the connection
// to the node once it is complete.
func (o *Orchestrator) HandleVoiceServer(ctx context.Context, ev VoiceServerEvent) {
	player := o.lookup(ev.GuildID)
	if player == nil {
		return
	}
	player.SetVoiceServer(ev.Token, ev.Endpoint)
	if err := player.UpdateConnection(ctx); err != nil {
		slog.Warn("failed to push voice state to node", "guild_id", ev.GuildID, "error", err)
	}
}

// OnReady implements lavalink.EventHandler.
func (o *Orchestrator) OnReady(node lavalink.Node, resumed bool) {
	slog.Info("lavalink node ready", "node", node.Address(), "resumed", resumed)
}

// OnDisconnect removes the node from the pool and destroys every player
// that was rendering on it. Losing the last node is fatal for the process.
func (o *Orchestrator) OnDisconnect(node lavalink.Node) {
	if !o.pool.Remove(node) {
		// Never made it into the pool; a failed startup connect.
		return
	}
	slog.Warn("lavalink node disconnected", "node", node.Address(), "remaining", o.pool.Len())

	if o.pool.Len() == 0 {
		o.reportFatal(fmt.Errorf("node %s disconnected: %w", node.Address(), lavalink.ErrNoNodes))
		return
	}

	ctx := context.Background()
	for _, player := range o.playersOn(node) {
		if err := o.Destroy(ctx, player.GuildID()); err != nil && !errors.Is(err, ErrPlayerNotFound) {
			slog.Warn("failed to destroy player after node loss", "guild_id", player.GuildID(), "error", err)
		}
	}
}

// OnTrackStart implements lavalink.EventHandler.
func (o *Orchestrator) OnTrackStart(node lavalink.Node, event lavalink.TrackStartEvent) {
	ctx := context.Background()
	if o.metrics != nil {
		o.metrics.RecordTrackStarted(ctx, node.Address())
	}
	if player := o.lookup(event.GuildID); player != nil {
		o.RefreshPanel(ctx, player)
	}
}

// OnTrackEnd implements lavalink.EventHandler. Only a normally finished
// track advances the queue; stops, replaces and failures are handled by
// whoever caused them.
func (o *Orchestrator) OnTrackEnd(node lavalink.Node, event lavalink.TrackEndEvent) {
	ctx := context.Background()
	if o.metrics != nil {
		o.metrics.RecordTrackEnded(ctx, node.Address(), string(event.Reason))
	}
	if !event.Reason.MayStartNext() {
		return
	}

	player := o.lookup(event.GuildID)
	if player == nil {
		return
	}
	if err := player.Next(ctx); err != nil && !errors.Is(err, ErrPlayerNotFound) {
		slog.Warn("failed to start next track", "guild_id", event.GuildID, "error", err)
	}
	o.RefreshPanel(ctx, player)
}

// OnStats implements lavalink.StatsHandler.
func (o *Orchestrator) OnStats(node lavalink.Node, stats lavalink.Stats) {
	if o.metrics != nil {
		o.metrics.RecordNodeStats(context.Background(), node.Address(), int64(stats.Players), int64(stats.PlayingPlayers))
	}
}

// RefreshPanel re-renders the guild's now-playing panel, creating the
// message on first use.
func (o *Orchestrator) RefreshPanel(ctx context.Context, player *Player) {
	o.renderPanel(ctx, player, 0)
}

func (o *Orchestrator) renderPanel(ctx context.Context, player *Player, countdownSeconds int) {
	view := o.panelView(player, countdownSeconds)

	if panel := player.Panel(); panel != nil {
		if err := o.messenger.UpdatePanel(ctx, *panel, view); err != nil {
			slog.Warn("failed to update now-playing panel", "guild_id", player.GuildID(), "error", err)
		}
		return
	}

	msg, err := o.messenger.SendPanel(ctx, player.TextChannelID(), view)
	if err != nil {
		slog.Warn("failed to send now-playing panel", "guild_id", player.GuildID(), "error", err)
		return
	}
	player.SetPanel(&msg)
}

func (o *Orchestrator) panelView(player *Player, countdownSeconds int) ports.PanelView {
	queue := player.Queue()
	view := ports.PanelView{
		Locale:           player.Locale(),
		Paused:           player.Paused(),
		Mode:             queue.Mode(),
		QueueLen:         queue.Len(),
		CountdownSeconds: countdownSeconds,
	}
	if track, ok := queue.Current(); ok {
		view.Track = &track
		view.Position = queue.Index() + 1
	}
	return view
}

func (o *Orchestrator) lookup(guildID snowflake.ID) *Player {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.players[guildID]
}

func (o *Orchestrator) playersOn(node lavalink.Node) []*Player {
	o.mu.RLock()
	defer o.mu.RUnlock()
	var players []*Player
	for _, player := range o.players {
		if player.Node() == node {
			players = append(players, player)
		}
	}
	return players
}

func (o *Orchestrator) reportFatal(err error) {
	o.fatalOnce.Do(func() {
		if o.fatal == nil {
			return
		}
		select {
		case o.fatal <- err:
		default:
		}
	})
}
