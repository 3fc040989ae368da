// Package stage provides ready-made filters, mappers, validators and processors,
// adapters from plain functions, and composite stages.
package stage

import (
	"context"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// FilterFunc adapts a function to port.RecordFilter.
type FilterFunc func(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error)

func (f FilterFunc) Filter(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
	return f(ctx, record)
}

// MapperFunc adapts a function to port.RecordMapper.
type MapperFunc func(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error)

func (f MapperFunc) MapRecord(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
	return f(ctx, record)
}

// ValidatorFunc adapts a function to port.RecordValidator.
type ValidatorFunc func(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error)

func (f ValidatorFunc) ValidateRecord(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
	return f(ctx, record)
}

// ProcessorFunc adapts a function to port.RecordProcessor.
type ProcessorFunc func(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error)

func (f ProcessorFunc) ProcessRecord(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
	return f(ctx, record)
}

var (
	_ port.RecordFilter    = FilterFunc(nil)
	_ port.RecordMapper    = MapperFunc(nil)
	_ port.RecordValidator = ValidatorFunc(nil)
	_ port.RecordProcessor = ProcessorFunc(nil)
)
