package status

import (
	"github.com/bwmarrin/discordgo"

	"github.com/hydrogenbot/hydrogen/internal/bot"
	"github.com/hydrogenbot/hydrogen/internal/modules/status/application"
	"github.com/hydrogenbot/hydrogen/internal/modules/status/presentation"
)

func init() {
	bot.Register(&Module{})
}

// Module surfaces process health through /ping and /about.
type Module struct {
	handlers *presentation.Handlers
}

// Name returns the module name.
func (m *Module) Name() string {
	return "status"
}

// Commands returns the slash commands for this module.
func (m *Module) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "ping",
			Description: "Check the bot's gateway latency",
		},
		{
			Name:        "about",
			Description: "Show version and runtime information",
		},
	}
}

// CommandHandlers returns the command handlers for this module.
func (m *Module) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"ping":  m.handlers.HandlePing,
		"about": m.handlers.HandleAbout,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *Module) EventHandlers() []bot.EventHandler {
	return nil
}

// Init initializes the module.
func (m *Module) Init(deps bot.ModuleDependencies) error {
	m.handlers = presentation.NewHandlers(
		application.NewInteractor(deps.Version),
		deps.Localizer,
	)
	return nil
}

// Shutdown cleans up module resources.
func (m *Module) Shutdown() error {
	return nil
}
