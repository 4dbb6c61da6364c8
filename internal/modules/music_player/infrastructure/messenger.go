package infrastructure

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/hydrogenbot/hydrogen/internal/i18n"
	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/application/ports"
	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorPlaying   = 0x08c404
	colorPaused    = 0xFFFF00
	colorCountdown = 0xE74C3C
	colorIdle      = 0x95A5A6
)

// Messenger renders the now-playing panel as a Discord embed with a button
// row.
type Messenger struct {
	session   *discordgo.Session
	localizer *i18n.Localizer
}

// NewMessenger creates a messenger rendering panels in the given locales.
func NewMessenger(session *discordgo.Session, localizer *i18n.Localizer) *Messenger {
	return &Messenger{session: session, localizer: localizer}
}

// SendPanel posts a new panel message to the channel.
func (m *Messenger) SendPanel(ctx context.Context, channelID snowflake.ID, view ports.PanelView) (domain.NowPlayingMessage, error) {
	msg, err := m.session.ChannelMessageSendComplex(channelID.String(), &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{m.renderEmbed(view)},
		Components: panelComponents(view),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return domain.NowPlayingMessage{}, fmt.Errorf("sending panel: %w", err)
	}

	messageID, err := snowflake.Parse(msg.ID)
	if err != nil {
		return domain.NowPlayingMessage{}, fmt.Errorf("parsing panel message id: %w", err)
	}
	return domain.NowPlayingMessage{ChannelID: channelID, MessageID: messageID}, nil
}

// UpdatePanel edits the panel message in place.
func (m *Messenger) UpdatePanel(ctx context.Context, msg domain.NowPlayingMessage, view ports.PanelView) error {
	edit := discordgo.NewMessageEdit(msg.ChannelID.String(), msg.MessageID.String())
	edit.Embeds = &[]*discordgo.MessageEmbed{m.renderEmbed(view)}
	components := panelComponents(view)
	edit.Components = &components

	if _, err := m.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("updating panel: %w", err)
	}
	return nil
}

// DeletePanel removes the panel message.
func (m *Messenger) DeletePanel(ctx context.Context, msg domain.NowPlayingMessage) error {
	err := m.session.ChannelMessageDelete(msg.ChannelID.String(), msg.MessageID.String(), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("deleting panel: %w", err)
	}
	return nil
}

func (m *Messenger) renderEmbed(view ports.PanelView) *discordgo.MessageEmbed {
	locale := view.Locale

	authorKey := "now_playing"
	color := colorPlaying
	if view.Paused {
		authorKey = "paused"
		color = colorPaused
	}

	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: m.localizer.Text(locale, "panel", authorKey),
		},
		Color: color,
	}

	if view.Track == nil {
		embed.Description = m.localizer.Text(locale, "panel", "empty")
		embed.Color = colorIdle
	} else {
		track := view.Track
		embed.Title = track.Title
		embed.URL = track.URI
		embed.Fields = []*discordgo.MessageEmbedField{
			{
				Name:   m.localizer.Text(locale, "panel", "artist"),
				Value:  track.Author,
				Inline: true,
			},
			{
				Name:   m.localizer.Text(locale, "panel", "duration"),
				Value:  track.FormattedLength(),
				Inline: true,
			},
			{
				Name:   m.localizer.Text(locale, "panel", "requested_by"),
				Value:  fmt.Sprintf("<@%d>", track.Requester),
				Inline: true,
			},
		}
		if track.ArtworkURL != "" {
			embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: track.ArtworkURL}
		}
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: m.localizer.Textf(locale, "panel", "footer", map[string]string{
				"position": strconv.Itoa(view.Position),
				"count":    strconv.Itoa(view.QueueLen),
				"mode":     m.localizer.Text(locale, "loop", view.Mode.String()),
			}),
		}
	}

	if view.CountdownSeconds > 0 {
		embed.Description = m.localizer.Textf(locale, "panel", "countdown", map[string]string{
			"seconds": strconv.Itoa(view.CountdownSeconds),
		})
		embed.Color = colorCountdown
	}

	return embed
}

func panelComponents(view ports.PanelView) []discordgo.MessageComponent {
	noTrack := view.Track == nil

	pauseEmoji := "⏸️"
	if view.Paused {
		pauseEmoji = "▶️"
	}

	loopStyle := discordgo.SecondaryButton
	if view.Mode != domain.LoopModeNone {
		loopStyle = discordgo.PrimaryButton
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Style:    discordgo.SecondaryButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "⏮️"},
					CustomID: ports.ComponentPrevious,
					Disabled: noTrack,
				},
				discordgo.Button{
					Style:    discordgo.PrimaryButton,
					Emoji:    &discordgo.ComponentEmoji{Name: pauseEmoji},
					CustomID: ports.ComponentPause,
					Disabled: noTrack,
				},
				discordgo.Button{
					Style:    discordgo.SecondaryButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "⏭️"},
					CustomID: ports.ComponentSkip,
					Disabled: noTrack,
				},
				discordgo.Button{
					Style:    loopStyle,
					Emoji:    &discordgo.ComponentEmoji{Name: "🔁"},
					CustomID: ports.ComponentLoop,
				},
				discordgo.Button{
					Style:    discordgo.DangerButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "⏹️"},
					CustomID: ports.ComponentStop,
				},
			},
		},
	}
}

// Ensure Messenger implements its port.
var _ ports.Messenger = (*Messenger)(nil)
