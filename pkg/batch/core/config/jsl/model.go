// Package jsl defines the Job Specification Language: YAML documents that describe a
// record job by naming the registered components it is assembled from.
//
//	id: import-people
//	name: import-people
//	batch-size: 100
//	error-threshold: 10
//	reader:
//	  ref: sliceReader
//	  properties:
//	    source: people
//	mappers:
//	  - ref: upperCaseMapper
//	writer:
//	  ref: loggingRecordWriter
package jsl

import (
	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
)

// JSLDefinitionBytes holds the content of a JSL file as a byte slice.
type JSLDefinitionBytes []byte

// Job is the definition of one record job.
type Job struct {
	// ID is the unique identifier for the job definition.
	ID string `yaml:"id"`
	// Name is the job name used in reports. It defaults to ID.
	Name string `yaml:"name,omitempty"`
	// Description is an optional description for the job.
	Description string `yaml:"description,omitempty"`
	// BatchSize overrides the configured default batch size when positive.
	BatchSize int `yaml:"batch-size,omitempty"`
	// ErrorThreshold overrides the configured default error threshold when set.
	ErrorThreshold *int64 `yaml:"error-threshold,omitempty"`
	// Monitoring overrides the configured monitoring flag when set.
	Monitoring *bool `yaml:"monitoring,omitempty"`

	Reader     ComponentRef   `yaml:"reader"`
	Filters    []ComponentRef `yaml:"filters,omitempty"`
	Mappers    []ComponentRef `yaml:"mappers,omitempty"`
	Validators []ComponentRef `yaml:"validators,omitempty"`
	Processors []ComponentRef `yaml:"processors,omitempty"`
	Writer     ComponentRef   `yaml:"writer,omitempty"`
	// Listeners are registered for every listener interface they implement.
	Listeners []ComponentRef `yaml:"listeners,omitempty"`
}

// ComponentRef refers to a registered component builder.
type ComponentRef struct {
	// Ref is the reference name of the component builder.
	Ref string `yaml:"ref"`
	// Properties is passed to the builder.
	Properties map[string]string `yaml:"properties,omitempty"`
}

// IsZero reports whether the reference is empty.
func (c ComponentRef) IsZero() bool { return c.Ref == "" }

// ComponentBuilder creates a component (reader, writer, stage or listener) from its properties.
type ComponentBuilder func(cfg *config.Config, properties map[string]string) (interface{}, error)
