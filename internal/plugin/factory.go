package plugin

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sliink/meter/internal/core"
	"github.com/sliink/meter/internal/model"
)

// ErrUnknownPlugin is returned when no creator is registered under a name
var ErrUnknownPlugin = errors.New("unknown plugin")

// Creator returns a new, uninitialized plugin
type Creator func() model.Plugin

// PluginFactory creates plugins by name
type PluginFactory struct {
	creators map[string]Creator
}

// NewPluginFactory creates a new plugin factory
func NewPluginFactory() *PluginFactory {
	return &PluginFactory{
		creators: make(map[string]Creator),
	}
}

// Register registers a plugin creator under name
func (f *PluginFactory) Register(name string, creator Creator) {
	f.creators[name] = creator
}

// Names returns the registered plugin names, sorted
func (f *PluginFactory) Names() []string {
	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CreatePlugin creates the plugin registered under name
func (f *PluginFactory) CreatePlugin(name string) (model.Plugin, error) {
	creator, exists := f.creators[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlugin, name)
	}
	return creator(), nil
}

// CreatePlugins creates every plugin enabled in the configuration, sorted
// by name
func (f *PluginFactory) CreatePlugins(config *core.ConfigManager) ([]model.Plugin, error) {
	var plugins []model.Plugin
	for _, name := range config.PluginNames() {
		if !config.PluginEnabled(name) {
			continue
		}
		p, err := f.CreatePlugin(name)
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, p)
	}
	return plugins, nil
}
