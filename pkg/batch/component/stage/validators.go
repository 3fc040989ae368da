package stage

import (
	"context"
	"errors"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// NewPredicateValidator rejects the records for which valid returns false, with
// an error carrying message.
func NewPredicateValidator(valid Predicate, message string) ValidatorFunc {
	return func(_ context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
		if !valid(record) {
			return nil, errors.New(message)
		}
		return record, nil
	}
}

// NewTypedValidator adapts a check over payloads to a port.RecordValidator.
// A payload that is not a P is rejected.
func NewTypedValidator[P any](check func(payload P) error) ValidatorFunc {
	return func(_ context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
		typed, err := model.Typed[P](record)
		if err != nil {
			return nil, err
		}
		if err := check(typed.Payload()); err != nil {
			return nil, err
		}
		return record, nil
	}
}
