package bot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/hydrogenbot/hydrogen/internal/config"
	"github.com/hydrogenbot/hydrogen/internal/i18n"
	"github.com/hydrogenbot/hydrogen/internal/observe"
)

// InteractionHandler handles a slash command invocation and responds through
// the Responder.
type InteractionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error

// EventHandler is a gateway event handler. It must match one of discordgo's
// handler signatures, e.g. func(s *discordgo.Session, e *discordgo.VoiceStateUpdate).
type EventHandler any

// ModuleDependencies carries the shared collaborators a module may need
// during initialization. The session is already connected when Init runs, so
// the bot's own identity is available from its state.
type ModuleDependencies struct {
	Session   *discordgo.Session
	Config    *config.Config
	Localizer *i18n.Localizer
	Metrics   *observe.Metrics

	// Fatal receives unrecoverable module errors raised after startup;
	// main exits non-zero when a module reports here.
	Fatal chan<- error

	// Version is the build version string, for modules that surface it.
	Version string
}

// Module is a self-contained feature of the bot: a set of slash commands,
// their handlers and any gateway event handlers they need.
type Module interface {
	// Name returns the unique identifier for this module.
	Name() string

	// Commands returns the slash commands that this module provides.
	Commands() []*discordgo.ApplicationCommand

	// CommandHandlers returns a map of command names to their handlers.
	CommandHandlers() map[string]InteractionHandler

	// EventHandlers returns gateway event handlers for this module.
	EventHandlers() []EventHandler

	// Init initializes the module with the provided dependencies.
	Init(deps ModuleDependencies) error

	// Shutdown gracefully shuts down the module.
	Shutdown() error
}

// ConfigurableModule is an optional interface for modules with their own
// configuration. LoadConfig is called before Init and before the Discord
// connection is established, so a misconfigured module fails fast.
type ConfigurableModule interface {
	LoadConfig() error
}
