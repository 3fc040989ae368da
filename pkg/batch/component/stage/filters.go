package stage

import (
	"context"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// PredicateFilter drops the records matching its predicate.
type PredicateFilter struct {
	drop Predicate
}

// NewPredicateFilter creates a filter dropping the records for which drop returns true.
func NewPredicateFilter(drop Predicate) *PredicateFilter {
	return &PredicateFilter{drop: drop}
}

// Filter returns nil for matching records and the record itself otherwise.
func (f *PredicateFilter) Filter(_ context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
	if f.drop(record) {
		return nil, nil
	}
	return record, nil
}

// RecordNumberBetweenFilter drops the records whose number is in [lower, upper].
func RecordNumberBetweenFilter(lower, upper int64) *PredicateFilter {
	return NewPredicateFilter(HeaderMatches(func(h model.Header) bool {
		return h.Number() >= lower && h.Number() <= upper
	}))
}

// RecordNumberEqualToFilter drops the records with the given numbers.
func RecordNumberEqualToFilter(numbers ...int64) *PredicateFilter {
	set := make(map[int64]struct{}, len(numbers))
	for _, n := range numbers {
		set[n] = struct{}{}
	}
	return NewPredicateFilter(HeaderMatches(func(h model.Header) bool {
		_, ok := set[h.Number()]
		return ok
	}))
}

// RecordNumberGreaterThanFilter drops the records whose number is greater than n.
func RecordNumberGreaterThanFilter(n int64) *PredicateFilter {
	return NewPredicateFilter(HeaderMatches(func(h model.Header) bool { return h.Number() > n }))
}

// PoisonRecordFilter drops poison records.
func PoisonRecordFilter() *PredicateFilter {
	return NewPredicateFilter(IsPoison)
}

// EmptyRecordFilter drops records with a nil payload or an empty string payload.
func EmptyRecordFilter() *PredicateFilter {
	return NewPredicateFilter(func(record *model.AnyRecord) bool {
		switch p := record.Payload().(type) {
		case nil:
			return true
		case string:
			return p == ""
		default:
			return false
		}
	})
}
