package core

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigManager holds the agent configuration, loaded from YAML
//
// A typical file looks like:
//
//	pipeline:
//	  poll_interval: 1s
//	  flush_interval: 5s
//	  buffer_size: 1000
//	plugins:
//	  counter:
//	    enabled: true
//	    config:
//	      metric: coffee_counter
type ConfigManager struct {
	config     map[string]any
	configFile string
	mutex      sync.RWMutex
	BaseComponent
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() *ConfigManager {
	return &ConfigManager{
		config:        make(map[string]any),
		BaseComponent: NewBaseComponent("config_manager", "Configuration Manager"),
	}
}

// LoadConfig loads configuration from a YAML file
func (m *ConfigManager) LoadConfig(configFile string) error {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	if err := m.LoadBytes(data); err != nil {
		return err
	}

	m.mutex.Lock()
	m.configFile = configFile
	m.mutex.Unlock()
	return nil
}

// LoadBytes replaces the configuration with the given YAML document
func (m *ConfigManager) LoadBytes(data []byte) error {
	var config map[string]any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	if config == nil {
		config = make(map[string]any)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.config = config
	return nil
}

// SaveConfig writes the current configuration as YAML. An empty path
// reuses the file the configuration was loaded from.
func (m *ConfigManager) SaveConfig(configFile string) error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if configFile == "" {
		configFile = m.configFile
	}
	if configFile == "" {
		return fmt.Errorf("no config file specified")
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// GetConfig retrieves the value at a dotted path such as "pipeline.poll_interval"
func (m *ConfigManager) GetConfig(path string, defaultValue any) any {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return lookup(m.config, path, defaultValue)
}

func lookup(config map[string]any, path string, defaultValue any) any {
	if path == "" {
		return config
	}

	current := config
	parts := strings.Split(path, ".")
	for i, part := range parts {
		v, ok := current[part]
		if !ok {
			return defaultValue
		}
		if i == len(parts)-1 {
			return v
		}
		current, ok = v.(map[string]any)
		if !ok {
			return defaultValue
		}
	}
	return defaultValue
}

// SetConfig sets the value at a dotted path, creating intermediate maps
func (m *ConfigManager) SetConfig(path string, value any) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if path == "" {
		newConfig, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("cannot set root config to non-map value")
		}
		m.config = newConfig
		return nil
	}

	parts := strings.Split(path, ".")
	current := m.config
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
	return nil
}

// Duration reads a duration written either as a Go duration string ("500ms")
// or as a number of seconds
func (m *ConfigManager) Duration(path string, defaultValue time.Duration) time.Duration {
	switch v := m.GetConfig(path, nil).(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case int:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	}
	return defaultValue
}

// Int reads an integer value
func (m *ConfigManager) Int(path string, defaultValue int) int {
	switch v := m.GetConfig(path, nil).(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return defaultValue
}

// String reads a string value
func (m *ConfigManager) String(path string, defaultValue string) string {
	if v, ok := m.GetConfig(path, nil).(string); ok {
		return v
	}
	return defaultValue
}

// Bool reads a boolean value
func (m *ConfigManager) Bool(path string, defaultValue bool) bool {
	if v, ok := m.GetConfig(path, nil).(bool); ok {
		return v
	}
	return defaultValue
}

// PluginNames returns the names of every plugin section, sorted
func (m *ConfigManager) PluginNames() []string {
	plugins, _ := m.GetConfig("plugins", nil).(map[string]any)
	names := make([]string, 0, len(plugins))
	for name := range plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PluginEnabled reports whether a plugin section exists and is not disabled
func (m *ConfigManager) PluginEnabled(name string) bool {
	plugins, _ := m.GetConfig("plugins", nil).(map[string]any)
	section, exists := plugins[name]
	if !exists {
		return false
	}
	fields, _ := section.(map[string]any)
	enabled, ok := fields["enabled"].(bool)
	return !ok || enabled
}

// PluginConfig returns the configuration given to a plugin's Init, never nil
func (m *ConfigManager) PluginConfig(name string) map[string]any {
	if config, ok := m.GetConfig("plugins."+name+".config", nil).(map[string]any); ok {
		return config
	}
	return make(map[string]any)
}

// PipelineOptions reads the pipeline section
func (m *ConfigManager) PipelineOptions() PipelineOptions {
	defaults := DefaultPipelineOptions()
	return PipelineOptions{
		PollInterval:  m.Duration("pipeline.poll_interval", defaults.PollInterval),
		FlushInterval: m.Duration("pipeline.flush_interval", defaults.FlushInterval),
		BufferSize:    m.Int("pipeline.buffer_size", defaults.BufferSize),
	}
}
