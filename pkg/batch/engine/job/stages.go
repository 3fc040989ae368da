package job

import (
	"context"
	"errors"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
)

// recordStage is one step of the per-record chain, tagged with the module name and
// error kind used when it fails.
type recordStage struct {
	module string
	kind   error
	apply  func(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error)
}

// stageChain applies stages in registration order. It stops at the first stage
// that drops the record or fails, so later stages never see it.
type stageChain []recordStage

// apply returns the output record, nil if a stage dropped it, or a record-scoped
// error if a stage failed.
func (c stageChain) apply(ctx context.Context, record *model.AnyRecord) (*model.AnyRecord, error) {
	current := record
	for _, st := range c {
		out, err := st.apply(ctx, current)
		if err != nil {
			return nil, asRecordError(st, current, err)
		}
		if out == nil {
			return nil, nil
		}
		current = out
	}
	return current, nil
}

func asRecordError(st recordStage, record *model.AnyRecord, err error) error {
	if exception.IsRecordScoped(err) {
		return err
	}
	return exception.NewRecordError(st.module, st.kind, record.Header().Number(), err)
}

// moduleOf returns the failing module recorded in a record error, for metrics labels.
func moduleOf(err error) string {
	var be *exception.BatchError
	if errors.As(err, &be) {
		return be.Module
	}
	return "pipeline"
}
