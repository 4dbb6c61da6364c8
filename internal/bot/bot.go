// Package bot hosts the Discord session lifecycle and the module system.
// Features register themselves as modules; the bot wires their commands,
// command handlers and gateway event handlers into one session.
package bot

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/bwmarrin/discordgo"

	"github.com/hydrogenbot/hydrogen/internal/config"
	"github.com/hydrogenbot/hydrogen/internal/i18n"
	"github.com/hydrogenbot/hydrogen/internal/observe"
)

// Options bundles the collaborators the bot passes on to its modules.
type Options struct {
	Config    *config.Config
	Localizer *i18n.Localizer
	Metrics   *observe.Metrics
	Fatal     chan<- error
	Version   string
}

// Bot manages the Discord session lifecycle and module coordination.
type Bot struct {
	opts     Options
	session  *discordgo.Session
	modules  []Module
	handlers map[string]InteractionHandler
}

// New creates a Bot. Modules are picked up with LoadModules and everything
// comes online with Start.
func New(opts Options) *Bot {
	return &Bot{
		opts:     opts,
		modules:  make([]Module, 0),
		handlers: make(map[string]InteractionHandler),
	}
}

// LoadModules loads modules from the global registry and gives configurable
// ones the chance to fail fast on bad configuration.
func (b *Bot) LoadModules() error {
	b.modules = Modules()

	for _, mod := range b.modules {
		configurable, ok := mod.(ConfigurableModule)
		if !ok {
			continue
		}
		if err := configurable.LoadConfig(); err != nil {
			return fmt.Errorf("loading %s module config: %w", mod.Name(), err)
		}
	}
	return nil
}

// Start connects to Discord and brings every module online. The session is
// opened before modules initialize because module wiring needs the gateway
// identity (the bot's own user id) from the ready payload.
func (b *Bot) Start() error {
	session, err := discordgo.New("Bot " + b.opts.Config.DiscordToken)
	if err != nil {
		return fmt.Errorf("creating Discord session: %w", err)
	}
	b.session = session

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening Discord connection: %w", err)
	}

	if err := b.initModules(); err != nil {
		b.session.Close()
		return fmt.Errorf("initializing modules: %w", err)
	}

	b.buildHandlerMap()
	b.session.AddHandler(b.handleInteraction)
	b.registerEventHandlers()

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return fmt.Errorf("registering commands: %w", err)
	}

	slog.Info("started bot",
		"user_id", b.session.State.User.ID,
		"username", b.session.State.User.Username,
	)
	return nil
}

// Stop shuts down every module and closes the Discord session.
func (b *Bot) Stop() error {
	for _, mod := range b.modules {
		if err := mod.Shutdown(); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
		}
	}

	if b.session != nil {
		return b.session.Close()
	}
	return nil
}

// initModules initializes all loaded modules.
func (b *Bot) initModules() error {
	deps := ModuleDependencies{
		Session:   b.session,
		Config:    b.opts.Config,
		Localizer: b.opts.Localizer,
		Metrics:   b.opts.Metrics,
		Fatal:     b.opts.Fatal,
		Version:   b.opts.Version,
	}

	for _, mod := range b.modules {
		if err := mod.Init(deps); err != nil {
			return fmt.Errorf("initializing %s module: %w", mod.Name(), err)
		}
		slog.Debug("initialized module", "module", mod.Name())
	}

	moduleNames := make([]string, len(b.modules))
	for i, mod := range b.modules {
		moduleNames[i] = mod.Name()
	}
	slog.Info("initialized modules", "modules", moduleNames)

	return nil
}

// buildHandlerMap builds the command name to handler mapping.
func (b *Bot) buildHandlerMap() {
	for _, mod := range b.modules {
		maps.Copy(b.handlers, mod.CommandHandlers())
	}
}

// registerEventHandlers registers all module event handlers with the session.
func (b *Bot) registerEventHandlers() {
	for _, mod := range b.modules {
		for _, handler := range mod.EventHandlers() {
			b.session.AddHandler(handler)
		}
	}
}

// collectCommands gathers all commands from loaded modules.
func (b *Bot) collectCommands() []*discordgo.ApplicationCommand {
	var commands []*discordgo.ApplicationCommand
	for _, mod := range b.modules {
		commands = append(commands, mod.Commands()...)
	}
	return commands
}

// registerCommands registers all module commands with Discord.
func (b *Bot) registerCommands() error {
	commands := b.collectCommands()

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(
			b.session.State.User.ID,
			"", // Empty string registers commands globally
			cmd,
		)
		if err != nil {
			return fmt.Errorf("registering command %s: %w", cmd.Name, err)
		}
		slog.Debug("registered command", "command", cmd.Name)
	}

	return nil
}

// Embed colors for fallback responses.
const (
	colorWarning = 0xFFFF00
	colorError   = 0xE74C3C
)

// handleInteraction routes slash command invocations to the appropriate
// handler. Autocomplete and component interactions are routed by the modules'
// own event handlers.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	locale := InteractionLocale(i)
	cmdName := i.ApplicationCommandData().Name
	handler, ok := b.handlers[cmdName]
	if !ok {
		slog.Warn("found no handler for command", "command", cmdName)
		b.respondWithEmbed(s, i,
			b.opts.Localizer.Text(locale, "error", "unknown_command_title"),
			b.opts.Localizer.Text(locale, "error", "unknown_command"),
			colorWarning,
		)
		return
	}

	responder := NewDiscordResponder(s, i.Interaction)
	if err := handler(s, i, responder); err != nil {
		slog.Error("failed to handle command", "command", cmdName, "error", err)
		b.respondWithEmbed(s, i,
			b.opts.Localizer.Text(locale, "error", "title"),
			b.opts.Localizer.Text(locale, "error", "internal"),
			colorError,
		)
	}
}

// respondWithEmbed sends an embed response to an interaction.
func (b *Bot) respondWithEmbed(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	title, description string,
	color int,
) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       title,
					Description: description,
					Color:       color,
				},
			},
		},
	})
	if err != nil {
		slog.Error("failed to send embed response", "error", err)
	}
}

// InteractionLocale returns the guild's preferred locale for an interaction,
// or "" when the platform did not send one. The localizer falls back to the
// default locale for unknown values.
func InteractionLocale(i *discordgo.InteractionCreate) string {
	if i.GuildLocale == nil {
		return ""
	}
	return string(*i.GuildLocale)
}
