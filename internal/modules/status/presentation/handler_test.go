package presentation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/hydrogenbot/hydrogen/internal/bot"
	"github.com/hydrogenbot/hydrogen/internal/i18n"
	"github.com/hydrogenbot/hydrogen/internal/modules/status/application"
)

const testCatalog = `{
	"status": {
		"pong": "Pong! ${latency}",
		"title": "About",
		"version": "Version",
		"runtime": "Runtime",
		"uptime": "Uptime",
		"guilds": "Servers",
		"latency": "Latency"
	}
}`

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "en-US.json"), []byte(testCatalog), 0o644); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}
	localizer, err := i18n.Load(dir, "en-US")
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	return NewHandlers(application.NewInteractor("1.2.3"), localizer)
}

func testInteraction() *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}
}

func TestHandlePingRespondsWithLatency(t *testing.T) {
	handlers := newTestHandlers(t)
	responder := &bot.MockResponder{}

	err := handlers.HandlePing(&discordgo.Session{}, testInteraction(), responder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp := responder.Last()
	if resp == nil {
		t.Fatal("expected response, got nil")
	}
	if resp.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Errorf("expected response type %d, got %d",
			discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	}
	if !strings.HasPrefix(resp.Data.Content, "Pong!") {
		t.Errorf("expected pong content, got %q", resp.Data.Content)
	}
	if !strings.Contains(resp.Data.Content, "ms") {
		t.Errorf("expected latency in content, got %q", resp.Data.Content)
	}
}

func TestHandleAboutRendersReport(t *testing.T) {
	handlers := newTestHandlers(t)
	responder := &bot.MockResponder{}

	session := &discordgo.Session{}
	session.State = discordgo.NewState()
	session.State.Guilds = []*discordgo.Guild{{ID: "1"}, {ID: "2"}}

	err := handlers.HandleAbout(session, testInteraction(), responder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp := responder.Last()
	if resp == nil {
		t.Fatal("expected response, got nil")
	}
	if len(resp.Data.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(resp.Data.Embeds))
	}

	embed := resp.Data.Embeds[0]
	if embed.Title != "About" {
		t.Errorf("expected title %q, got %q", "About", embed.Title)
	}

	fields := make(map[string]string, len(embed.Fields))
	for _, f := range embed.Fields {
		fields[f.Name] = f.Value
	}
	if fields["Version"] != "1.2.3" {
		t.Errorf("expected version field 1.2.3, got %q", fields["Version"])
	}
	if fields["Servers"] != "2" {
		t.Errorf("expected 2 servers, got %q", fields["Servers"])
	}
	if fields["Runtime"] == "" {
		t.Error("expected a runtime field")
	}
}

func TestHandlePingResponderError(t *testing.T) {
	handlers := newTestHandlers(t)
	expectedErr := errors.New("responder failed")
	responder := &bot.MockResponder{Err: expectedErr}

	err := handlers.HandlePing(&discordgo.Session{}, testInteraction(), responder)
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}
