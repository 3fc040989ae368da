package stage

import (
	"context"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

type stageFunc func(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error)

// Composite runs a record through an ordered list of delegates. It stops as soon as a
// delegate drops the record (returns nil) or fails, so later delegates never see it.
// A Composite satisfies every stage interface and can be registered in any position.
type Composite struct {
	delegates []stageFunc
}

func (c *Composite) apply(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
	current := record
	for _, delegate := range c.delegates {
		out, err := delegate(ctx, current)
		if err != nil || out == nil {
			return nil, err
		}
		current = out
	}
	return current, nil
}

// Len returns the number of delegates.
func (c *Composite) Len() int { return len(c.delegates) }

func (c *Composite) Filter(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
	return c.apply(ctx, record)
}

func (c *Composite) MapRecord(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
	return c.apply(ctx, record)
}

func (c *Composite) ValidateRecord(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
	return c.apply(ctx, record)
}

func (c *Composite) ProcessRecord(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
	return c.apply(ctx, record)
}

// Filters composes filters.
func Filters(filters ...port.RecordFilter) *Composite {
	c := &Composite{}
	for _, f := range filters {
		c.delegates = append(c.delegates, f.Filter)
	}
	return c
}

// Mappers composes mappers.
func Mappers(mappers ...port.RecordMapper) *Composite {
	c := &Composite{}
	for _, m := range mappers {
		c.delegates = append(c.delegates, m.MapRecord)
	}
	return c
}

// Validators composes validators.
func Validators(validators ...port.RecordValidator) *Composite {
	c := &Composite{}
	for _, v := range validators {
		c.delegates = append(c.delegates, v.ValidateRecord)
	}
	return c
}

// Processors composes processors.
func Processors(processors ...port.RecordProcessor) *Composite {
	c := &Composite{}
	for _, p := range processors {
		c.delegates = append(c.delegates, p.ProcessRecord)
	}
	return c
}

var (
	_ port.RecordFilter    = (*Composite)(nil)
	_ port.RecordMapper    = (*Composite)(nil)
	_ port.RecordValidator = (*Composite)(nil)
	_ port.RecordProcessor = (*Composite)(nil)
)
