package presentation

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/hydrogenbot/hydrogen/internal/modules/music_player/application/ports"
)

// HandleComponent reacts to a press on one of the now-playing panel's
// buttons. The press is acknowledged with a deferred update; the panel edit
// that follows is the only visible effect.
func (h *Handlers) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	if !isPanelComponent(customID) {
		return
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return
	}

	ctx := context.Background()
	ack := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate}
	if err := s.InteractionRespond(i.Interaction, ack, discordgo.WithContext(ctx)); err != nil {
		slog.Warn("failed to acknowledge panel button", "guild_id", guildID, "error", err)
	}

	player, err := h.orchestrator.Get(guildID)
	if err != nil {
		// Button on a stale panel whose player is gone.
		return
	}

	switch customID {
	case ports.ComponentPrevious:
		_, err = player.Previous(ctx)
	case ports.ComponentPause:
		err = player.SetPaused(ctx, !player.Paused())
	case ports.ComponentSkip:
		_, err = player.Skip(ctx)
	case ports.ComponentLoop:
		queue := player.Queue()
		queue.SetMode(queue.Mode().Cycle())
	case ports.ComponentStop:
		err = player.Stop(ctx)
	}
	if err != nil {
		slog.Warn("panel button action failed", "guild_id", guildID, "component", customID, "error", err)
	}

	h.orchestrator.RefreshPanel(ctx, player)
}

func isPanelComponent(customID string) bool {
	switch customID {
	case ports.ComponentPrevious, ports.ComponentPause, ports.ComponentSkip,
		ports.ComponentLoop, ports.ComponentStop:
		return true
	}
	return false
}
