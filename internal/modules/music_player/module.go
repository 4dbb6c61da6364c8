package music_player

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hydrogenbot/hydrogen/internal/bot"
	"github.com/hydrogenbot/hydrogen/internal/config"
	"github.com/hydrogenbot/hydrogen/internal/lavalink"
	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/application"
	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/infrastructure"
	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/presentation"
	"github.com/hydrogenbot/hydrogen/internal/observe"
)

func init() {
	bot.Register(&Module{})
}

// Compile-time interface checks.
var (
	_ bot.Module             = (*Module)(nil)
	_ bot.ConfigurableModule = (*Module)(nil)
)

// shutdownTimeout bounds the teardown of players and node connections.
const shutdownTimeout = 10 * time.Second

// Module provides voice playback: the slash commands, the now-playing panel
// and the node connections behind them.
type Module struct {
	config       *Config
	orchestrator *application.Orchestrator
	voice        *infrastructure.VoiceManager
	handlers     *presentation.Handlers
	nodes        []*lavalink.Client
}

// Name returns the module name.
func (m *Module) Name() string {
	return "music_player"
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *Module) LoadConfig() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Commands returns the slash commands for this module.
func (m *Module) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *Module) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"join":    m.handlers.HandleJoin,
		"leave":   m.handlers.HandleLeave,
		"play":    m.handlers.HandlePlay,
		"skip":    m.handlers.HandleSkip,
		"prev":    m.handlers.HandlePrevious,
		"seek":    m.handlers.HandleSeek,
		"pause":   m.handlers.HandlePause,
		"resume":  m.handlers.HandleResume,
		"loop":    m.handlers.HandleLoop,
		"shuffle": m.handlers.HandleShuffle,
		"queue":   m.handlers.HandleQueue,
		"stop":    m.handlers.HandleStop,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *Module) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			m.handleInteractionCreate(s, i)
		},
	}
}

// Init wires the Discord adapters, the orchestrator and one client per
// configured node. Node connects run concurrently; an unreachable node is
// skipped, and Init fails only when none came up.
func (m *Module) Init(deps bot.ModuleDependencies) error {
	botID, err := snowflake.Parse(deps.Session.State.User.ID)
	if err != nil {
		return fmt.Errorf("parsing bot user id: %w", err)
	}

	voice := infrastructure.NewVoiceManager(deps.Session, botID)
	guilds := infrastructure.NewGuildCache(deps.Session, botID)
	messenger := infrastructure.NewMessenger(deps.Session, deps.Localizer)

	pool := lavalink.NewPool()
	orchestrator := application.NewOrchestrator(application.OrchestratorConfig{
		BotID:        botID,
		Voice:        voice,
		Guilds:       guilds,
		Messenger:    messenger,
		Pool:         pool,
		Metrics:      deps.Metrics,
		Fatal:        deps.Fatal,
		QueueSize:    m.config.QueueMaxSize,
		SearchPrefix: m.config.SearchPrefix,
		IdleTimeout:  m.config.IdleTimeout(),
	})

	m.voice = voice
	m.orchestrator = orchestrator
	m.handlers = presentation.NewHandlers(orchestrator, voice, guilds, deps.Localizer)

	ctx, cancel := context.WithTimeout(context.Background(), m.config.NodeTimeout()+time.Second)
	defer cancel()

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	for _, addr := range deps.Config.Lavalink {
		g.Go(func() error {
			client := m.newNodeClient(addr, botID, deps.Metrics, orchestrator)
			if err := client.Connect(ctx); err != nil {
				slog.Warn("skipping unreachable lavalink node", "node", addr.Address, "error", err)
				return nil
			}
			pool.Add(client)
			mu.Lock()
			m.nodes = append(m.nodes, client)
			mu.Unlock()
			return nil
		})
	}
	// Workers log and skip their own failures.
	_ = g.Wait()

	if pool.Len() == 0 {
		return fmt.Errorf("no lavalink node reachable: %w", lavalink.ErrNoNodes)
	}

	slog.Info("music_player module initialized", "nodes", pool.Len())
	return nil
}

// Shutdown destroys every player and closes the node connections.
func (m *Module) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if m.orchestrator != nil {
		m.orchestrator.Shutdown(ctx)
	}
	for _, node := range m.nodes {
		if err := node.Close(); err != nil {
			slog.Warn("failed to close node connection", "node", node.Address(), "error", err)
		}
	}
	return nil
}

func (m *Module) newNodeClient(
	addr config.NodeAddress,
	botID snowflake.ID,
	metrics *observe.Metrics,
	handler lavalink.EventHandler,
) *lavalink.Client {
	httpClient := &http.Client{Timeout: m.config.NodeTimeout()}
	if metrics != nil {
		httpClient.Transport = &observe.Transport{Node: addr.Address, Metrics: metrics}
	}
	return lavalink.NewClient(lavalink.Config{
		Address:    addr.Address,
		Password:   addr.Password,
		Secure:     addr.TLS,
		UserID:     botID,
		Timeout:    m.config.NodeTimeout(),
		HTTPClient: httpClient,
		Handler:    handler,
	})
}

// Event handlers.

func (m *Module) handleVoiceStateUpdate(_ *discordgo.Session, event *discordgo.VoiceStateUpdate) {
	m.voice.HandleVoiceStateUpdate(event)

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		return
	}
	userID, err := snowflake.Parse(event.UserID)
	if err != nil {
		return
	}

	ev := application.VoiceStateEvent{
		GuildID:     guildID,
		UserID:      userID,
		SessionID:   event.SessionID,
		HadPrevious: event.BeforeUpdate != nil,
	}
	if event.ChannelID != "" {
		channelID, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			return
		}
		ev.ChannelID = &channelID
	}

	m.orchestrator.HandleVoiceState(context.Background(), ev)
}

func (m *Module) handleVoiceServerUpdate(_ *discordgo.Session, event *discordgo.VoiceServerUpdate) {
	m.voice.HandleVoiceServerUpdate(event)

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		return
	}

	m.orchestrator.HandleVoiceServer(context.Background(), application.VoiceServerEvent{
		GuildID:  guildID,
		Token:    event.Token,
		Endpoint: event.Endpoint,
	})
}

// handleInteractionCreate routes the interaction types the bot core does not:
// autocomplete queries and panel button presses.
func (m *Module) handleInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommandAutocomplete:
		if i.ApplicationCommandData().Name == "play" {
			m.handlers.HandleAutocomplete(s, i)
		}
	case discordgo.InteractionMessageComponent:
		m.handlers.HandleComponent(s, i)
	}
}
