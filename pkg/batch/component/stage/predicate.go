package stage

import (
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// Predicate is a condition over a record. Filters, validators and dispatchers are
// built from predicates.
type Predicate func(record *model.AnyRecord) bool

// PayloadMatches builds a predicate over typed payloads. Records whose payload is not
// a P do not match.
func PayloadMatches[P any](test func(payload P) bool) Predicate {
	return func(record *model.AnyRecord) bool {
		payload, ok := model.PayloadAs[P](record)
		return ok && test(payload)
	}
}

// HeaderMatches builds a predicate over record headers.
func HeaderMatches(test func(header model.Header) bool) Predicate {
	return func(record *model.AnyRecord) bool {
		return test(record.Header())
	}
}

// Not negates p.
func Not(p Predicate) Predicate {
	return func(record *model.AnyRecord) bool { return !p(record) }
}

// And matches when every predicate matches.
func And(predicates ...Predicate) Predicate {
	return func(record *model.AnyRecord) bool {
		for _, p := range predicates {
			if !p(record) {
				return false
			}
		}
		return true
	}
}

// Or matches when at least one predicate matches.
func Or(predicates ...Predicate) Predicate {
	return func(record *model.AnyRecord) bool {
		for _, p := range predicates {
			if p(record) {
				return true
			}
		}
		return false
	}
}

// IsPoison matches poison records.
func IsPoison(record *model.AnyRecord) bool { return record.IsPoison() }
