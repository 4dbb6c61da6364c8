package presentation

import (
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/hydrogenbot/hydrogen/internal/bot"
	"github.com/hydrogenbot/hydrogen/internal/i18n"
	"github.com/hydrogenbot/hydrogen/internal/modules/status/application"
)

const colorInfo = 0x5865F2

// Handlers implements the status commands.
type Handlers struct {
	interactor *application.Interactor
	localizer  *i18n.Localizer
}

// NewHandlers creates the status command handlers.
func NewHandlers(interactor *application.Interactor, localizer *i18n.Localizer) *Handlers {
	return &Handlers{
		interactor: interactor,
		localizer:  localizer,
	}
}

// HandlePing handles the /ping command.
func (h *Handlers) HandlePing(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	locale := bot.InteractionLocale(i)
	report := h.interactor.Report(0, s.HeartbeatLatency())

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: h.localizer.Textf(locale, "status", "pong", map[string]string{
				"latency": report.FormattedLatency(),
			}),
		},
	})
}

// HandleAbout handles the /about command.
func (h *Handlers) HandleAbout(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	locale := bot.InteractionLocale(i)

	guilds := 0
	if s.State != nil {
		guilds = len(s.State.Guilds)
	}
	report := h.interactor.Report(guilds, s.HeartbeatLatency())

	embed := &discordgo.MessageEmbed{
		Title: h.localizer.Text(locale, "status", "title"),
		Color: colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   h.localizer.Text(locale, "status", "version"),
				Value:  report.Version,
				Inline: true,
			},
			{
				Name:   h.localizer.Text(locale, "status", "runtime"),
				Value:  report.GoVersion,
				Inline: true,
			},
			{
				Name:   h.localizer.Text(locale, "status", "uptime"),
				Value:  report.FormattedUptime(),
				Inline: true,
			},
			{
				Name:   h.localizer.Text(locale, "status", "guilds"),
				Value:  strconv.Itoa(report.Guilds),
				Inline: true,
			},
			{
				Name:   h.localizer.Text(locale, "status", "latency"),
				Value:  report.FormattedLatency(),
				Inline: true,
			},
		},
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
}
