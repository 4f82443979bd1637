package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sliink/meter/internal/model"
)

var (
	// ErrShutdownTimeout is returned when the pipeline does not stop in time
	ErrShutdownTimeout = errors.New("timed out waiting for shutdown")
	// ErrNotStarted is returned when waiting on an agent that never started
	ErrNotStarted = errors.New("agent has not been started")
)

// Agent is a bootstrapped measurement agent. It is created by Builder.Build
// and runs its pipeline once started.
type Agent struct {
	runID    string
	phase    model.Phase
	eventBus *EventBus
	plugins  *PluginRegistry
	metrics  *MetricRegistry
	pipeline *Pipeline
	config   *ConfigManager
	health   *HealthMonitor
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
	mutex    sync.Mutex
	BaseComponent
}

func newAgent(config *ConfigManager, opts PipelineOptions, logger *slog.Logger) *Agent {
	runID := uuid.NewString()
	logger = logger.With(slog.String("run_id", runID))
	metrics := NewMetricRegistry()

	a := &Agent{
		runID:         runID,
		phase:         model.PhaseCreated,
		eventBus:      NewEventBus(),
		plugins:       NewPluginRegistry(),
		metrics:       metrics,
		pipeline:      NewPipeline(metrics, opts, logger),
		config:        config,
		health:        NewHealthMonitor(),
		logger:        logger,
		BaseComponent: NewBaseComponent("agent", "Measurement Agent"),
	}
	a.pipeline.publish = a.PublishEvent

	for _, c := range []Component{a.eventBus, a.plugins, a.metrics, a.config, a.health} {
		c.Initialize()
		c.Start()
	}
	a.pipeline.Initialize()

	for _, eventType := range loggedEvents {
		a.eventBus.Subscribe(eventType, "agent_log", a.logEvent)
	}

	a.health.RegisterComponent(a.ID(), a)
	a.health.RegisterComponent(a.eventBus.ID(), a.eventBus)
	a.health.RegisterComponent(a.plugins.ID(), a.plugins)
	a.health.RegisterComponent(a.metrics.ID(), a.metrics)
	a.health.RegisterComponent(a.pipeline.ID(), a.pipeline)
	a.health.RegisterComponent(a.config.ID(), a.config)
	a.SetStatus(model.StatusInitialized)
	return a
}

// RunID returns the unique identifier of this agent run
func (a *Agent) RunID() string {
	return a.runID
}

// Phase returns the current bootstrap phase
func (a *Agent) Phase() model.Phase {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.phase
}

func (a *Agent) setPhase(phase model.Phase) {
	a.mutex.Lock()
	a.phase = phase
	a.mutex.Unlock()

	a.health.SetDetail("phase", phase)
	a.PublishEvent(model.EventPhaseChange, a.ID(), phase)
}

// loggedEvents are the lifecycle events written to the agent log.
// DATA_SENT is left out, it fires on every flush.
var loggedEvents = []model.EventType{
	model.EventPhaseChange,
	model.EventPluginInitialized,
	model.EventPluginStarted,
	model.EventMetricRegistered,
	model.EventElementRegistered,
	model.EventError,
}

func (a *Agent) logEvent(e Event) {
	level := slog.LevelDebug
	if e.Type == model.EventError {
		level = slog.LevelWarn
	}
	a.logger.Log(context.Background(), level, "agent event",
		slog.String("type", string(e.Type)),
		slog.String("source", e.SourceID),
		slog.Any("data", e.Data),
	)
}

// Metrics returns the metric registry
func (a *Agent) Metrics() *MetricRegistry {
	return a.metrics
}

// Plugins returns the plugin registry
func (a *Agent) Plugins() *PluginRegistry {
	return a.plugins
}

// Pipeline returns the measurement pipeline
func (a *Agent) Pipeline() *Pipeline {
	return a.pipeline
}

// Health returns the health monitor
func (a *Agent) Health() *HealthMonitor {
	return a.health
}

// Events returns the event bus
func (a *Agent) Events() *EventBus {
	return a.eventBus
}

// Config returns the configuration manager
func (a *Agent) Config() *ConfigManager {
	return a.config
}

// PublishEvent publishes an event to the event bus
func (a *Agent) PublishEvent(eventType model.EventType, sourceID string, data any) {
	a.eventBus.Publish(NewEvent(eventType, sourceID, data))
}

// Start runs the measurement pipeline in the background until ctx is
// cancelled or Shutdown is called
func (a *Agent) Start(ctx context.Context) error {
	a.mutex.Lock()
	if a.done != nil {
		a.mutex.Unlock()
		return ErrPipelineRunning
	}
	if a.phase != model.PhasePluginsStarted {
		phase := a.phase
		a.mutex.Unlock()
		return fmt.Errorf("cannot start agent in phase %s", phase)
	}
	ctx, a.cancel = context.WithCancel(ctx)
	a.done = make(chan struct{})
	done := a.done
	a.mutex.Unlock()

	a.health.SetDetail("metrics", a.metrics.Len())
	a.SetStatus(model.StatusRunning)
	a.setPhase(model.PhaseOperational)

	go func() {
		defer close(done)
		if err := a.pipeline.Run(ctx); err != nil {
			a.logger.Error("pipeline failed", slog.Any("error", err))
			a.PublishEvent(model.EventError, a.pipeline.ID(), err)
		}
	}()
	return nil
}

// Shutdown asks the pipeline to stop. It does not wait.
func (a *Agent) Shutdown() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

// WaitForShutdown waits for the pipeline to stop, then stops the plugins.
// A non-positive timeout waits forever.
func (a *Agent) WaitForShutdown(timeout time.Duration) error {
	a.mutex.Lock()
	done := a.done
	a.mutex.Unlock()
	if done == nil {
		return ErrNotStarted
	}

	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
			return ErrShutdownTimeout
		}
	} else {
		<-done
	}

	a.Stop()
	return nil
}

// Stop stops every plugin and the agent components
func (a *Agent) Stop() bool {
	ok := a.plugins.Stop()
	if !ok {
		a.logger.Warn("some plugins failed to stop")
	}
	a.SetStatus(model.StatusStopped)
	a.setPhase(model.PhaseShutdown)
	a.health.Stop()
	a.config.Stop()
	a.metrics.Stop()
	a.eventBus.Stop()
	return ok
}
