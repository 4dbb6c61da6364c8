package bot

import "sync"

// registry holds modules in registration order. Order matters: handler maps
// are merged and shutdown runs in this order.
type registry struct {
	mu      sync.RWMutex
	modules []Module
	names   map[string]bool
}

func newRegistry() *registry {
	return &registry{names: make(map[string]bool)}
}

func (r *registry) register(m Module) {
	if m == nil {
		panic("bot: Register called with nil module")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.names[m.Name()] {
		panic("bot: Register called twice for module " + m.Name())
	}
	r.names[m.Name()] = true
	r.modules = append(r.modules, m)
}

func (r *registry) snapshot() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Module, len(r.modules))
	copy(result, r.modules)
	return result
}

// Global registry instance for module self-registration via init().
var globalRegistry = newRegistry()

// Register adds a module to the global registry. It is typically called from
// a module's init() and panics when the same module name registers twice.
func Register(m Module) {
	globalRegistry.register(m)
}

// Modules returns a snapshot of all registered modules in registration
// order.
func Modules() []Module {
	return globalRegistry.snapshot()
}

// ResetRegistry empties the global registry. Intended for tests only.
func ResetRegistry() {
	globalRegistry = newRegistry()
}
