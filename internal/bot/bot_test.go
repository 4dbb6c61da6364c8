package bot

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/hydrogenbot/hydrogen/internal/config"
)

func testOptions() Options {
	return Options{
		Config: &config.Config{DiscordToken: "test-token"},
	}
}

func TestNew(t *testing.T) {
	opts := testOptions()

	b := New(opts)

	if b == nil {
		t.Fatal("expected bot to be created, got nil")
	}
	if b.opts.Config != opts.Config {
		t.Error("expected config to be stored")
	}
}

func TestBotInitModulesCallsEveryModule(t *testing.T) {
	b := New(testOptions())

	initCalled := false
	b.modules = []Module{&trackingStubModule{
		stubModule: stubModule{name: "tracking"},
		initCalled: &initCalled,
	}}

	if err := b.initModules(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !initCalled {
		t.Error("expected Init to be called")
	}
}

func TestBotInitModulesReturnsInitError(t *testing.T) {
	b := New(testOptions())

	expectedErr := errors.New("init failed")
	b.modules = []Module{&stubModule{name: "failing", initErr: expectedErr}}

	err := b.initModules()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestBotLoadModulesRunsModuleConfigs(t *testing.T) {
	ResetRegistry()
	defer ResetRegistry()

	expectedErr := errors.New("bad module config")
	Register(&configurableStubModule{
		stubModule: stubModule{name: "configurable"},
		configErr:  expectedErr,
	})

	b := New(testOptions())
	err := b.LoadModules()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestBotBuildHandlerMap(t *testing.T) {
	b := New(testOptions())

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		return nil
	}

	b.modules = []Module{
		&stubModule{
			name:     "mod1",
			handlers: map[string]InteractionHandler{"cmd1": handler},
		},
		&stubModule{
			name:     "mod2",
			handlers: map[string]InteractionHandler{"cmd2": handler},
		},
	}

	b.buildHandlerMap()

	if len(b.handlers) != 2 {
		t.Fatalf("expected 2 handlers, got %d", len(b.handlers))
	}
	if _, ok := b.handlers["cmd1"]; !ok {
		t.Error("expected cmd1 handler to be registered")
	}
	if _, ok := b.handlers["cmd2"]; !ok {
		t.Error("expected cmd2 handler to be registered")
	}
}

func TestBotCollectCommands(t *testing.T) {
	b := New(testOptions())

	cmd := &discordgo.ApplicationCommand{
		Name:        "play",
		Description: "Play a track",
	}
	b.modules = []Module{&stubModule{name: "music", commands: []*discordgo.ApplicationCommand{cmd}}}

	commands := b.collectCommands()

	if len(commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(commands))
	}
	if commands[0].Name != "play" {
		t.Errorf("expected command name %q, got %q", "play", commands[0].Name)
	}
}

func TestInteractionLocale(t *testing.T) {
	locale := discordgo.PortugueseBR
	tests := []struct {
		name string
		in   *discordgo.InteractionCreate
		want string
	}{
		{
			name: "guild locale present",
			in: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
				GuildLocale: &locale,
			}},
			want: "pt-BR",
		},
		{
			name: "no guild locale",
			in:   &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InteractionLocale(tt.in); got != tt.want {
				t.Errorf("InteractionLocale() = %q, want %q", got, tt.want)
			}
		})
	}
}

// trackingStubModule marks a flag when Init runs.
type trackingStubModule struct {
	stubModule
	initCalled *bool
}

func (m *trackingStubModule) Init(deps ModuleDependencies) error {
	*m.initCalled = true
	return m.stubModule.Init(deps)
}

// configurableStubModule implements ConfigurableModule with a scripted error.
type configurableStubModule struct {
	stubModule
	configErr error
}

func (m *configurableStubModule) LoadConfig() error { return m.configErr }
