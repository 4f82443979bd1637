package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sliink/meter/internal/model"
)

// ErrBuilderUsed is returned when Build is called twice on the same builder
var ErrBuilderUsed = errors.New("builder has already been used")

// PluginsInitHook runs once every plugin has been initialized
type PluginsInitHook func(plugins []model.Plugin) error

// PluginsStartHook runs once every plugin has been started
type PluginsStartHook func(state *StartupState) error

// OperationBeginHook runs after the pipeline is assembled, before it starts
type OperationBeginHook func(pipeline PipelineInspector) error

// FailureReporter receives fatal check failures. *testing.T satisfies it.
type FailureReporter interface {
	Errorf(format string, args ...any)
	FailNow()
}

// TestExpectations declares the state that must hold at bootstrap
// checkpoints, by registering hooks on a builder
type TestExpectations interface {
	Setup(t FailureReporter, b *Builder) *Builder
}

// StartupState is the view given to PluginsStartHook
type StartupState struct {
	metrics  *MetricRegistry
	pipeline *Pipeline
}

// Metrics returns the metric registry
func (s *StartupState) Metrics() model.MetricLookup {
	return s.metrics
}

// Inspect returns the elements registered so far
func (s *StartupState) Inspect() PipelineSnapshot {
	return s.pipeline.Inspect()
}

// Builder assembles an Agent. The hooks registered on it are called
// synchronously, in order, on the goroutine that calls Build.
type Builder struct {
	plugins    []model.Plugin
	config     *ConfigManager
	logger     *slog.Logger
	opts       *PipelineOptions
	initHooks  []PluginsInitHook
	startHooks []PluginsStartHook
	beginHooks []OperationBeginHook
	used       bool
}

// NewBuilder creates a builder for an agent running the given plugins
func NewBuilder(plugins ...model.Plugin) *Builder {
	return &Builder{plugins: plugins}
}

// WithConfig sets the configuration the plugins and pipeline are read from
func (b *Builder) WithConfig(config *ConfigManager) *Builder {
	b.config = config
	return b
}

// WithLogger sets the agent logger
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithPipelineOptions overrides the pipeline section of the configuration
func (b *Builder) WithPipelineOptions(opts PipelineOptions) *Builder {
	b.opts = &opts
	return b
}

// AfterPluginsInit registers a hook called after every plugin is initialized
func (b *Builder) AfterPluginsInit(fn PluginsInitHook) *Builder {
	b.initHooks = append(b.initHooks, fn)
	return b
}

// AfterPluginsStart registers a hook called after every plugin is started
func (b *Builder) AfterPluginsStart(fn PluginsStartHook) *Builder {
	b.startHooks = append(b.startHooks, fn)
	return b
}

// BeforeOperationBegin registers a hook called right before the pipeline starts
func (b *Builder) BeforeOperationBegin(fn OperationBeginHook) *Builder {
	b.beginHooks = append(b.beginHooks, fn)
	return b
}

// WithExpectations lets e register its checks on the builder
func (b *Builder) WithExpectations(t FailureReporter, e TestExpectations) *Builder {
	return e.Setup(t, b)
}

// Build runs the bootstrap sequence up to, but not including, the start of
// the measurement pipeline: plugins are initialized, then started, and the
// hooks of each phase run in between. The returned agent is ready to Start.
func (b *Builder) Build() (*Agent, error) {
	if b.used {
		return nil, ErrBuilderUsed
	}
	b.used = true

	config := b.config
	if config == nil {
		config = NewConfigManager()
	}
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := config.PipelineOptions()
	if b.opts != nil {
		opts = *b.opts
	}

	a := newAgent(config, opts, logger)
	ok := false
	// a failed check may unwind the goroutine without returning
	defer func() {
		if !ok {
			a.plugins.Stop()
			a.setPhase(model.PhaseShutdown)
		}
	}()
	if err := a.bootstrap(b); err != nil {
		return nil, err
	}
	ok = true
	return a, nil
}

// BuildAndStart builds the agent and starts its pipeline
func (b *Builder) BuildAndStart(ctx context.Context) (*Agent, error) {
	a, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := a.Start(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Agent) bootstrap(b *Builder) error {
	for _, p := range b.plugins {
		if err := a.plugins.RegisterPlugin(p); err != nil {
			return err
		}
		a.health.RegisterComponent("plugin:"+p.Name(), p)
	}
	plugins := a.plugins.GetAllPlugins()

	for _, p := range plugins {
		if err := p.Init(a.config.PluginConfig(p.Name())); err != nil {
			p.SetStatus(model.StatusError)
			return fmt.Errorf("plugin %s: init failed: %w", p.Name(), err)
		}
		p.SetStatus(model.StatusInitialized)
		a.PublishEvent(model.EventPluginInitialized, p.Name(), p.Version())
		a.logger.Debug("plugin initialized", slog.String("plugin", p.Name()), slog.String("version", p.Version()))
	}
	a.setPhase(model.PhasePluginsInitialized)
	for _, hook := range b.initHooks {
		if err := hook(plugins); err != nil {
			return fmt.Errorf("after plugins init: %w", err)
		}
	}

	for _, p := range plugins {
		if err := p.Start(&pluginContext{agent: a, plugin: p.Name()}); err != nil {
			p.SetStatus(model.StatusError)
			return fmt.Errorf("plugin %s: start failed: %w", p.Name(), err)
		}
		p.SetStatus(model.StatusRunning)
		a.PublishEvent(model.EventPluginStarted, p.Name(), nil)
	}
	a.setPhase(model.PhasePluginsStarted)
	state := &StartupState{metrics: a.metrics, pipeline: a.pipeline}
	for _, hook := range b.startHooks {
		if err := hook(state); err != nil {
			return fmt.Errorf("after plugins start: %w", err)
		}
	}

	for _, hook := range b.beginHooks {
		if err := hook(a.pipeline); err != nil {
			return fmt.Errorf("before operation begin: %w", err)
		}
	}

	a.logger.Info("agent bootstrapped",
		slog.String("run_id", a.RunID()),
		slog.Int("plugins", len(plugins)),
		slog.Int("metrics", a.metrics.Len()),
	)
	return nil
}

// pluginContext is the CoreAPI handed to a plugin's Start
type pluginContext struct {
	agent  *Agent
	plugin string
}

func (c *pluginContext) CreateMetric(def model.MetricDef) (model.MetricID, error) {
	id, err := c.agent.metrics.Register(def)
	if err != nil {
		return 0, fmt.Errorf("plugin %s: %w", c.plugin, err)
	}
	c.agent.PublishEvent(model.EventMetricRegistered, c.plugin, def)
	return id, nil
}

func (c *pluginContext) AddSource(name string, source model.Source) error {
	return c.added(model.SourceKind, name, c.agent.pipeline.AddSource(model.NewSourceName(c.plugin, name), source))
}

func (c *pluginContext) AddTransform(name string, transform model.Transform) error {
	return c.added(model.TransformKind, name, c.agent.pipeline.AddTransform(model.NewTransformName(c.plugin, name), transform))
}

func (c *pluginContext) AddOutput(name string, output model.Output) error {
	return c.added(model.OutputKind, name, c.agent.pipeline.AddOutput(model.NewOutputName(c.plugin, name), output))
}

func (c *pluginContext) added(kind model.ElementKind, name string, err error) error {
	if err != nil {
		return fmt.Errorf("plugin %s: %w", c.plugin, err)
	}
	c.agent.PublishEvent(model.EventElementRegistered, c.plugin, map[string]any{
		"kind": kind,
		"name": name,
	})
	return nil
}

func (c *pluginContext) PublishEvent(eventType model.EventType, sourceID string, data any) {
	c.agent.PublishEvent(eventType, sourceID, data)
}
