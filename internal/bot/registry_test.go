package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

// stubModule is a test double for Module.
type stubModule struct {
	name          string
	commands      []*discordgo.ApplicationCommand
	handlers      map[string]InteractionHandler
	eventHandlers []EventHandler
	initErr       error
	shutErr       error
}

func (m *stubModule) Name() string                                   { return m.name }
func (m *stubModule) Commands() []*discordgo.ApplicationCommand      { return m.commands }
func (m *stubModule) CommandHandlers() map[string]InteractionHandler { return m.handlers }
func (m *stubModule) EventHandlers() []EventHandler                  { return m.eventHandlers }
func (m *stubModule) Init(deps ModuleDependencies) error             { return m.initErr }
func (m *stubModule) Shutdown() error                                { return m.shutErr }

func TestRegistryRegister(t *testing.T) {
	reg := newRegistry()

	reg.register(&stubModule{name: "alpha"})

	modules := reg.snapshot()
	if len(modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(modules))
	}
	if modules[0].Name() != "alpha" {
		t.Errorf("expected module name %q, got %q", "alpha", modules[0].Name())
	}
}

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	reg := newRegistry()

	reg.register(&stubModule{name: "first"})
	reg.register(&stubModule{name: "second"})

	modules := reg.snapshot()
	if len(modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(modules))
	}
	if modules[0].Name() != "first" || modules[1].Name() != "second" {
		t.Errorf("expected registration order [first second], got [%s %s]",
			modules[0].Name(), modules[1].Name())
	}
}

func TestRegistryDuplicateNamePanics(t *testing.T) {
	reg := newRegistry()
	reg.register(&stubModule{name: "dup"})

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate module name")
		}
	}()
	reg.register(&stubModule{name: "dup"})
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	reg := newRegistry()
	reg.register(&stubModule{name: "only"})

	modules := reg.snapshot()
	reg.register(&stubModule{name: "later"})

	if len(modules) != 1 {
		t.Errorf("expected snapshot to keep 1 module, got %d", len(modules))
	}
}

func TestGlobalRegistry(t *testing.T) {
	ResetRegistry()
	defer ResetRegistry()

	Register(&stubModule{name: "global-test"})

	modules := Modules()
	if len(modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(modules))
	}
	if modules[0].Name() != "global-test" {
		t.Errorf("expected module name %q, got %q", "global-test", modules[0].Name())
	}
}
