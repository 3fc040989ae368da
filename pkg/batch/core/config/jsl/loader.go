package jsl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// Definitions holds loaded job definitions by ID.
type Definitions struct {
	jobs map[string]Job
}

// NewDefinitions creates an empty set of definitions.
func NewDefinitions() *Definitions {
	return &Definitions{jobs: make(map[string]Job)}
}

// LoadDefinitions parses every YAML document in data.
func LoadDefinitions(data []byte) (*Definitions, error) {
	defs := NewDefinitions()
	if err := defs.Load(data); err != nil {
		return nil, err
	}
	return defs, nil
}

// Load parses every YAML document in data and adds the jobs it defines.
func (d *Definitions) Load(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var jobDef Job
		err := decoder.Decode(&jobDef)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return exception.NewBatchError("jsl_loader", "failed to parse JSL document", err, false, false)
		}
		if err := d.Add(jobDef); err != nil {
			return err
		}
	}
	logger.Infof("JSL definition loading completed. Number of jobs loaded: %d", len(d.jobs))
	return nil
}

// Add validates and registers one definition.
func (d *Definitions) Add(jobDef Job) error {
	if jobDef.ID == "" {
		return exception.NewBatchError("jsl_loader", "'id' is not defined in JSL document", nil, false, false)
	}
	if jobDef.Reader.IsZero() {
		return exception.NewBatchError("jsl_loader", fmt.Sprintf("JSL job '%s' does not define a reader", jobDef.ID), nil, false, false)
	}
	if _, exists := d.jobs[jobDef.ID]; exists {
		return exception.NewBatchError("jsl_loader", fmt.Sprintf("JSL job ID '%s' is duplicated", jobDef.ID), nil, false, false)
	}
	if jobDef.Name == "" {
		jobDef.Name = jobDef.ID
	}
	d.jobs[jobDef.ID] = jobDef
	logger.Debugf("Loaded JSL job '%s'.", jobDef.ID)
	return nil
}

// Get retrieves a definition by ID.
func (d *Definitions) Get(id string) (Job, bool) {
	job, ok := d.jobs[id]
	return job, ok
}

// IDs returns the loaded definition IDs in sorted order.
func (d *Definitions) IDs() []string {
	ids := make([]string, 0, len(d.jobs))
	for id := range d.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of loaded definitions.
func (d *Definitions) Len() int { return len(d.jobs) }
