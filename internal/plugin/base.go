package plugin

import (
	"fmt"
	"sync"
	"time"

	"github.com/sliink/meter/internal/model"
)

// BasePlugin provides common functionality for all plugins
type BasePlugin struct {
	name     string
	version  string
	status   model.ComponentStatus
	statusMu sync.RWMutex
	Config   map[string]any
	core     model.CoreAPI
}

// NewBasePlugin creates a new base plugin
func NewBasePlugin(name, version string) BasePlugin {
	return BasePlugin{
		name:    name,
		version: version,
		status:  model.StatusUninitialized,
		Config:  make(map[string]any),
	}
}

// Name returns the plugin's unique name
func (p *BasePlugin) Name() string {
	return p.name
}

// Version returns the plugin version
func (p *BasePlugin) Version() string {
	return p.version
}

// GetStatus returns the current plugin status
func (p *BasePlugin) GetStatus() model.ComponentStatus {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}

// SetStatus updates the plugin status
func (p *BasePlugin) SetStatus(status model.ComponentStatus) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status = status
}

// Init stores the plugin configuration
func (p *BasePlugin) Init(config map[string]any) error {
	if config == nil {
		config = make(map[string]any)
	}
	p.Config = config
	return nil
}

// Start keeps a reference to the core API
func (p *BasePlugin) Start(core model.CoreAPI) error {
	p.core = core
	return nil
}

// Stop does nothing by default
func (p *BasePlugin) Stop() error {
	return nil
}

// Core returns the API given to Start, nil before that
func (p *BasePlugin) Core() model.CoreAPI {
	return p.core
}

// ConfigString reads a string option
func (p *BasePlugin) ConfigString(key, defaultValue string) string {
	if v, ok := p.Config[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}

// ConfigBool reads a boolean option
func (p *BasePlugin) ConfigBool(key string, defaultValue bool) bool {
	if v, ok := p.Config[key].(bool); ok {
		return v
	}
	return defaultValue
}

// ConfigFloat reads a numeric option
func (p *BasePlugin) ConfigFloat(key string, defaultValue float64) (float64, error) {
	switch v := p.Config[key].(type) {
	case nil:
		return defaultValue, nil
	case int:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("option %s: expected a number, got %T", key, v)
	}
}

// ConfigDuration reads a duration written as "500ms" or as a number of seconds
func (p *BasePlugin) ConfigDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	switch v := p.Config[key].(type) {
	case nil:
		return defaultValue, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("option %s: %w", key, err)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("option %s: expected a duration, got %T", key, v)
	}
}

// ConfigStrings reads a list of strings
func (p *BasePlugin) ConfigStrings(key string) ([]string, error) {
	switch v := p.Config[key].(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("option %s: expected strings, got %T", key, item)
			}
			result = append(result, s)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("option %s: expected a list of strings, got %T", key, v)
	}
}

// ConfigUnit reads a unit such as "mJ"
func (p *BasePlugin) ConfigUnit(key string, defaultValue model.UnitLike) (model.PrefixedUnit, error) {
	s, ok := p.Config[key].(string)
	if !ok {
		if _, set := p.Config[key]; set {
			return model.PrefixedUnit{}, fmt.Errorf("option %s: expected a unit, got %T", key, p.Config[key])
		}
		return defaultValue.PrefixedUnit(), nil
	}
	unit, err := model.ParseUnit(s)
	if err != nil {
		return model.PrefixedUnit{}, fmt.Errorf("option %s: %w", key, err)
	}
	return unit, nil
}
