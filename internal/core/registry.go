package core

import (
	"fmt"
	"sync"

	"github.com/sliink/meter/internal/model"
)

// PluginRegistry keeps track of the agent's plugins in registration order
type PluginRegistry struct {
	plugins []model.Plugin
	byName  map[string]model.Plugin
	mutex   sync.RWMutex
	BaseComponent
}

// NewPluginRegistry creates a new plugin registry
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{
		plugins:       make([]model.Plugin, 0),
		byName:        make(map[string]model.Plugin),
		BaseComponent: NewBaseComponent("plugin_registry", "Plugin Registry"),
	}
}

// Stop halts every started plugin, in reverse registration order
func (r *PluginRegistry) Stop() bool {
	r.mutex.RLock()
	plugins := make([]model.Plugin, len(r.plugins))
	copy(plugins, r.plugins)
	r.mutex.RUnlock()

	ok := true
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if p.GetStatus() != model.StatusRunning {
			continue
		}
		if err := p.Stop(); err != nil {
			p.SetStatus(model.StatusError)
			ok = false
			continue
		}
		p.SetStatus(model.StatusStopped)
	}

	r.SetStatus(model.StatusStopped)
	return ok
}

// RegisterPlugin adds a plugin to the registry
func (r *PluginRegistry) RegisterPlugin(p model.Plugin) error {
	if p == nil {
		return fmt.Errorf("cannot register nil plugin")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.byName[p.Name()]; exists {
		return fmt.Errorf("plugin already registered: %s", p.Name())
	}

	r.plugins = append(r.plugins, p)
	r.byName[p.Name()] = p
	return nil
}

// GetPlugin retrieves a plugin by name
func (r *PluginRegistry) GetPlugin(name string) (model.Plugin, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	p, exists := r.byName[name]
	return p, exists
}

// GetAllPlugins retrieves all registered plugins in registration order
func (r *PluginRegistry) GetAllPlugins() []model.Plugin {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]model.Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Len returns the number of registered plugins
func (r *PluginRegistry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.plugins)
}
