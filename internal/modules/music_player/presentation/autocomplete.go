package presentation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// autocompleteLimit is the platform cap on autocomplete choices.
const autocompleteLimit = 25

// HandleAutocomplete serves search suggestions for the /play query option.
// Failures degrade to an empty choice list; autocomplete must never surface
// an error to the user.
func (h *Handlers) HandleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" && opt.Focused {
			query = opt.StringValue()
			break
		}
	}

	// Very short prompts produce noise, not suggestions.
	if len(query) < 2 {
		respondChoices(s, i, nil)
		return
	}

	tracks, err := h.orchestrator.Search(context.Background(), query)
	if err != nil {
		slog.Debug("autocomplete search failed", "error", err)
		respondChoices(s, i, nil)
		return
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, min(len(tracks), autocompleteLimit))
	for idx, track := range tracks {
		if idx >= autocompleteLimit {
			break
		}
		// The URI plays the suggested track directly when picked.
		value := track.URI
		if value == "" {
			value = track.Title
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  truncate(fmt.Sprintf("%s - %s", track.Title, track.Author), 100),
			Value: value,
		})
	}
	respondChoices(s, i, choices)
}

func respondChoices(s *discordgo.Session, i *discordgo.InteractionCreate, choices []*discordgo.ApplicationCommandOptionChoice) {
	if choices == nil {
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
	if err != nil {
		slog.Debug("failed to respond to autocomplete", "error", err)
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
