// Package support provides the JobFactory, which assembles record jobs from JSL
// definitions and registered component builders.
package support

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/fx"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	jsl "github.com/tigerroll/surfin-record/pkg/batch/core/config/jsl"
	metrics "github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/engine/job"
	exception "github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// JobListenersGroup is the Fx value group of listeners attached to every job the factory builds.
const JobListenersGroup = `group:"job_listeners"`

// JobFactory is the central factory for record jobs. It resolves the component
// references of a JSL definition against registered builders and seeds every job
// with the configured defaults, the metric recorder, the tracer and the shared listeners.
type JobFactory struct {
	config            *config.Config
	definitions       *jsl.Definitions
	metricRecorder    metrics.MetricRecorder
	tracer            metrics.Tracer
	listeners         []interface{}
	mu                sync.RWMutex
	componentBuilders map[string]jsl.ComponentBuilder
}

// JobFactoryParams defines the parameters NewJobFactory receives via Fx.
type JobFactoryParams struct {
	fx.In
	Cfg            *config.Config         // Global configuration for the framework.
	Definitions    *jsl.Definitions       `optional:"true"` // Loaded JSL definitions.
	MetricRecorder metrics.MetricRecorder // MetricRecorder for recording metrics.
	Tracer         metrics.Tracer         // Tracer for distributed tracing.
	Listeners      []interface{}          `group:"job_listeners"` // Listeners attached to every job.
}

// NewJobFactory creates a new instance of JobFactory.
func NewJobFactory(p JobFactoryParams) *JobFactory {
	defs := p.Definitions
	if defs == nil {
		defs = jsl.NewDefinitions()
	}
	return &JobFactory{
		config:            p.Cfg,
		definitions:       defs,
		metricRecorder:    p.MetricRecorder,
		tracer:            p.Tracer,
		listeners:         p.Listeners,
		componentBuilders: make(map[string]jsl.ComponentBuilder),
	}
}

// GetConfig returns the Config held by the JobFactory.
func (f *JobFactory) GetConfig() *config.Config {
	return f.config
}

// Definitions returns the JSL definitions known to the factory.
func (f *JobFactory) Definitions() *jsl.Definitions {
	return f.definitions
}

// RegisterComponentBuilder registers a component builder function with the given name.
func (f *JobFactory) RegisterComponentBuilder(name string, builder jsl.ComponentBuilder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.componentBuilders[name]; exists {
		logger.Warnf("Component builder '%s' already registered. Overwriting.", name)
	}
	f.componentBuilders[name] = builder
}

// NewJobBuilder returns a builder seeded with the configured defaults, the factory's
// metric recorder and tracer, and the shared listeners.
func (f *JobFactory) NewJobBuilder() *job.JobBuilder {
	b := job.NewJobBuilder().
		FromConfig(f.config.Surfin.Batch).
		MetricRecorder(f.metricRecorder).
		Tracer(f.tracer)
	for _, l := range f.listeners {
		b.Listener(l)
	}
	return b
}

// CreateJob builds a new job instance from the definition with the given ID.
// Every call returns a fresh job, so it can be used as a job supplier.
func (f *JobFactory) CreateJob(id string) (*job.BatchJob, error) {
	def, ok := f.definitions.Get(id)
	if !ok {
		return nil, exception.NewBatchError("job_factory", fmt.Sprintf("no JSL definition with id '%s'", id), exception.ErrJobMisconfigured, false, false)
	}
	return f.CreateJobFromDefinition(def)
}

// CreateJobFromDefinition builds a job from def.
func (f *JobFactory) CreateJobFromDefinition(def jsl.Job) (*job.BatchJob, error) {
	b := f.NewJobBuilder().Named(def.Name)
	if def.BatchSize > 0 {
		b.BatchSize(def.BatchSize)
	}
	if def.ErrorThreshold != nil {
		b.ErrorThreshold(*def.ErrorThreshold)
	}
	if def.Monitoring != nil {
		b.EnableMonitoring(*def.Monitoring)
	}

	var errs []error
	build := func(ref jsl.ComponentRef) interface{} {
		c, err := f.buildComponent(ref)
		if err != nil {
			errs = append(errs, err)
		}
		return c
	}

	if c := build(def.Reader); c != nil {
		if r, ok := c.(port.RecordReader); ok {
			b.Reader(r)
		} else {
			errs = append(errs, fmt.Errorf("component '%s' is not a record reader", def.Reader.Ref))
		}
	}
	for _, ref := range def.Filters {
		if c := build(ref); c != nil {
			if s, ok := c.(port.RecordFilter); ok {
				b.Filter(s)
			} else {
				errs = append(errs, fmt.Errorf("component '%s' is not a record filter", ref.Ref))
			}
		}
	}
	for _, ref := range def.Mappers {
		if c := build(ref); c != nil {
			if s, ok := c.(port.RecordMapper); ok {
				b.Mapper(s)
			} else {
				errs = append(errs, fmt.Errorf("component '%s' is not a record mapper", ref.Ref))
			}
		}
	}
	for _, ref := range def.Validators {
		if c := build(ref); c != nil {
			if s, ok := c.(port.RecordValidator); ok {
				b.Validator(s)
			} else {
				errs = append(errs, fmt.Errorf("component '%s' is not a record validator", ref.Ref))
			}
		}
	}
	for _, ref := range def.Processors {
		if c := build(ref); c != nil {
			if s, ok := c.(port.RecordProcessor); ok {
				b.Processor(s)
			} else {
				errs = append(errs, fmt.Errorf("component '%s' is not a record processor", ref.Ref))
			}
		}
	}
	if !def.Writer.IsZero() {
		if c := build(def.Writer); c != nil {
			if w, ok := c.(port.RecordWriter); ok {
				b.Writer(w)
			} else {
				errs = append(errs, fmt.Errorf("component '%s' is not a record writer", def.Writer.Ref))
			}
		}
	}
	for _, ref := range def.Listeners {
		if c := build(ref); c != nil {
			b.Listener(c)
		}
	}

	if len(errs) > 0 {
		return nil, exception.NewBatchError("job_factory", fmt.Sprintf("failed to assemble job '%s'", def.ID), errors.Join(append([]error{exception.ErrJobMisconfigured}, errs...)...), false, false)
	}
	return b.Build()
}

func (f *JobFactory) buildComponent(ref jsl.ComponentRef) (interface{}, error) {
	f.mu.RLock()
	builder, ok := f.componentBuilders[ref.Ref]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no component builder registered as '%s'", ref.Ref)
	}
	properties := ref.Properties
	if properties == nil {
		properties = map[string]string{}
	}
	c, err := builder(f.config, properties)
	if err != nil {
		return nil, fmt.Errorf("component '%s': %w", ref.Ref, err)
	}
	return c, nil
}
