package bot

import "github.com/bwmarrin/discordgo"

// Responder abstracts responding to a Discord interaction, so command
// handlers can be tested without a live session.
type Responder interface {
	// Respond sends the initial response to an interaction.
	Respond(response *discordgo.InteractionResponse) error
}

// DiscordResponder implements Responder against a live Discord session.
type DiscordResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
}

// NewDiscordResponder creates a responder bound to one interaction.
func NewDiscordResponder(s *discordgo.Session, i *discordgo.Interaction) *DiscordResponder {
	return &DiscordResponder{
		session:     s,
		interaction: i,
	}
}

// Respond sends the response through the Discord API.
func (r *DiscordResponder) Respond(response *discordgo.InteractionResponse) error {
	return r.session.InteractionRespond(r.interaction, response)
}

// MockResponder is a test double that records every response it receives.
type MockResponder struct {
	Responses []*discordgo.InteractionResponse
	Err       error
}

// Respond records the response and returns the scripted error.
func (m *MockResponder) Respond(response *discordgo.InteractionResponse) error {
	m.Responses = append(m.Responses, response)
	return m.Err
}

// Last returns the most recent recorded response, or nil.
func (m *MockResponder) Last() *discordgo.InteractionResponse {
	if len(m.Responses) == 0 {
		return nil
	}
	return m.Responses[len(m.Responses)-1]
}
