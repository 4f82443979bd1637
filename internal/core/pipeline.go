package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sliink/meter/internal/model"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrElementExists is returned when an element name is registered twice
	ErrElementExists = errors.New("element already registered")
	// ErrPipelineRunning is returned when the pipeline is modified after Run
	ErrPipelineRunning = errors.New("pipeline is already running")
)

// PipelineSnapshot is a point-in-time copy of the registered element names
type PipelineSnapshot struct {
	sources    []model.SourceName
	transforms []model.TransformName
	outputs    []model.OutputName
}

// Sources returns the names of the registered sources, in registration order
func (s PipelineSnapshot) Sources() []model.SourceName {
	return append([]model.SourceName(nil), s.sources...)
}

// Transforms returns the names of the registered transforms, in application order
func (s PipelineSnapshot) Transforms() []model.TransformName {
	return append([]model.TransformName(nil), s.transforms...)
}

// Outputs returns the names of the registered outputs, in registration order
func (s PipelineSnapshot) Outputs() []model.OutputName {
	return append([]model.OutputName(nil), s.outputs...)
}

// PipelineInspector gives read-only access to the pipeline elements
type PipelineInspector interface {
	Inspect() PipelineSnapshot
}

// PipelineOptions tunes the measurement pipeline
type PipelineOptions struct {
	PollInterval  time.Duration
	FlushInterval time.Duration
	BufferSize    int
}

// DefaultPipelineOptions returns the options used when none are configured
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		PollInterval:  time.Second,
		FlushInterval: time.Second,
		BufferSize:    1000,
	}
}

type sourceEntry struct {
	name   model.SourceName
	source model.Source
}

type transformEntry struct {
	name      model.TransformName
	transform model.Transform
}

type outputEntry struct {
	name   model.OutputName
	output model.Output
}

// Pipeline polls sources, applies transforms in order and hands the
// results to every output
type Pipeline struct {
	sources     []sourceEntry
	transforms  []transformEntry
	outputs     []outputEntry
	names       map[string]struct{}
	metrics     model.MetricLookup
	buffers     *BufferManager
	opts        PipelineOptions
	logger      *slog.Logger
	publish     func(eventType model.EventType, sourceID string, data any)
	transformMu sync.Mutex
	mutex       sync.RWMutex
	BaseComponent
}

// NewPipeline creates an empty pipeline. Zero options fall back on
// DefaultPipelineOptions.
func NewPipeline(metrics model.MetricLookup, opts PipelineOptions, logger *slog.Logger) *Pipeline {
	defaults := DefaultPipelineOptions()
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaults.PollInterval
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = defaults.FlushInterval
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaults.BufferSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		names:         make(map[string]struct{}),
		metrics:       metrics,
		buffers:       NewBufferManager(opts.BufferSize),
		opts:          opts,
		logger:        logger,
		publish:       func(model.EventType, string, any) {},
		BaseComponent: NewBaseComponent("pipeline", "Measurement Pipeline"),
	}
}

func (p *Pipeline) reserve(kind model.ElementKind, name model.ElementName) error {
	if name.Plugin == "" || name.Name == "" {
		return fmt.Errorf("invalid %s name %q", kind, name.String())
	}
	if p.GetStatus() == model.StatusRunning {
		return ErrPipelineRunning
	}
	key := string(kind) + ":" + name.String()
	if _, exists := p.names[key]; exists {
		return fmt.Errorf("%w: %s %s", ErrElementExists, kind, name)
	}
	p.names[key] = struct{}{}
	return nil
}

// AddSource registers a source
func (p *Pipeline) AddSource(name model.SourceName, source model.Source) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if err := p.reserve(model.SourceKind, name.ElementName); err != nil {
		return err
	}
	p.sources = append(p.sources, sourceEntry{name: name, source: source})
	return nil
}

// AddTransform registers a transform. Transforms run in registration order.
func (p *Pipeline) AddTransform(name model.TransformName, transform model.Transform) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if err := p.reserve(model.TransformKind, name.ElementName); err != nil {
		return err
	}
	p.transforms = append(p.transforms, transformEntry{name: name, transform: transform})
	return nil
}

// AddOutput registers an output
func (p *Pipeline) AddOutput(name model.OutputName, output model.Output) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if err := p.reserve(model.OutputKind, name.ElementName); err != nil {
		return err
	}
	p.outputs = append(p.outputs, outputEntry{name: name, output: output})
	return nil
}

// Inspect returns the names of every registered element
func (p *Pipeline) Inspect() PipelineSnapshot {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	snap := PipelineSnapshot{
		sources:    make([]model.SourceName, len(p.sources)),
		transforms: make([]model.TransformName, len(p.transforms)),
		outputs:    make([]model.OutputName, len(p.outputs)),
	}
	for i, s := range p.sources {
		snap.sources[i] = s.name
	}
	for i, t := range p.transforms {
		snap.transforms[i] = t.name
	}
	for i, o := range p.outputs {
		snap.outputs[i] = o.name
	}
	return snap
}

// Buffers returns the per-output buffer manager
func (p *Pipeline) Buffers() *BufferManager {
	return p.buffers
}

// Run operates the pipeline until ctx is cancelled. Outputs get a last
// flush before Run returns.
func (p *Pipeline) Run(ctx context.Context) error {
	p.mutex.Lock()
	if p.GetStatus() == model.StatusRunning {
		p.mutex.Unlock()
		return ErrPipelineRunning
	}
	sources := append([]sourceEntry(nil), p.sources...)
	outputs := append([]outputEntry(nil), p.outputs...)
	p.buffers.Initialize()
	p.buffers.Start()
	p.SetStatus(model.StatusRunning)
	p.mutex.Unlock()

	p.logger.Info("measurement pipeline started",
		slog.Int("sources", len(sources)),
		slog.Int("transforms", len(p.transforms)),
		slog.Int("outputs", len(outputs)),
		slog.Duration("poll_interval", p.opts.PollInterval),
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		src := src
		g.Go(func() error {
			p.pollLoop(gctx, src, outputs)
			return nil
		})
	}

	// outputs keep flushing until every source has stopped
	pollers := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(pollers)
	}()

	var flushers sync.WaitGroup
	for _, out := range outputs {
		out := out
		flushers.Add(1)
		go func() {
			defer flushers.Done()
			p.flushLoop(pollers, out)
		}()
	}
	flushers.Wait()
	<-pollers

	p.buffers.Stop()
	p.SetStatus(model.StatusStopped)
	p.logger.Info("measurement pipeline stopped")
	return nil
}

func (p *Pipeline) pollLoop(ctx context.Context, src sourceEntry, outputs []outputEntry) {
	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ts := <-ticker.C:
			p.pollSource(src, outputs, ts)
		}
	}
}

// pollSource polls one source, runs the transforms and queues the result
// for every output
func (p *Pipeline) pollSource(src sourceEntry, outputs []outputEntry, ts time.Time) {
	buf := model.NewMeasurementBuffer(src.name)
	if err := src.source.Poll(buf, ts); err != nil {
		p.logger.Warn("source poll failed", slog.String("source", src.name.String()), slog.Any("error", err))
		p.publish(model.EventError, src.name.String(), err)
		return
	}
	if buf.Size() == 0 {
		return
	}
	if !p.applyTransforms(buf) {
		return
	}

	for i, out := range outputs {
		queued := buf
		if i < len(outputs)-1 {
			queued = buf.Clone()
		}
		if !p.buffers.Buffer(out.name.String(), queued) {
			p.logger.Warn("output buffer full, dropping measurements",
				slog.String("output", out.name.String()),
				slog.Int("points", queued.Size()),
			)
		}
	}
}

func (p *Pipeline) applyTransforms(buf *model.MeasurementBuffer) bool {
	p.transformMu.Lock()
	defer p.transformMu.Unlock()

	for _, t := range p.transforms {
		if err := t.transform.Apply(buf, p.metrics); err != nil {
			p.logger.Warn("transform failed", slog.String("transform", t.name.String()), slog.Any("error", err))
			p.publish(model.EventError, t.name.String(), err)
			return false
		}
		if buf.Size() == 0 {
			return false
		}
	}
	return true
}

func (p *Pipeline) flushLoop(done <-chan struct{}, out outputEntry) {
	ticker := time.NewTicker(p.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			p.flushOutput(out)
			return
		case <-ticker.C:
			p.flushOutput(out)
		}
	}
}

// flushOutput writes every queued buffer of one output
func (p *Pipeline) flushOutput(out outputEntry) {
	for _, buf := range p.buffers.Flush(out.name.String(), 0) {
		if err := out.output.Write(buf, p.metrics); err != nil {
			p.logger.Warn("output write failed", slog.String("output", out.name.String()), slog.Any("error", err))
			p.publish(model.EventError, out.name.String(), err)
			continue
		}
		p.publish(model.EventDataSent, out.name.String(), map[string]any{
			"source": buf.Source.String(),
			"points": buf.Size(),
		})
	}
}
