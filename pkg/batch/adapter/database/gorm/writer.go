package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// DefaultInsertChunkSize is the number of rows per INSERT statement when none is set.
const DefaultInsertChunkSize = 100

// GormRecordWriter inserts the payloads of each batch as rows of type T, all in one
// transaction. A batch either lands completely or not at all.
type GormRecordWriter[T any] struct {
	db        *gorm.DB
	table     string
	chunkSize int
}

// NewGormRecordWriter creates a writer inserting into table. An empty table lets GORM
// derive the table name from T. Payloads of map[string]interface{} need a table.
func NewGormRecordWriter[T any](db *gorm.DB, table string, chunkSize int) *GormRecordWriter[T] {
	if chunkSize < 1 {
		chunkSize = DefaultInsertChunkSize
	}
	return &GormRecordWriter[T]{db: db, table: table, chunkSize: chunkSize}
}

func (w *GormRecordWriter[T]) Open(ctx context.Context) error {
	logger.Debugf("GormRecordWriter: opened for table '%s'.", w.table)
	return nil
}

// WriteRecords inserts the batch. Every payload must be a T.
func (w *GormRecordWriter[T]) WriteRecords(ctx context.Context, batch model.Batch) error {
	if batch.IsEmpty() {
		return nil
	}
	rows := make([]T, 0, batch.Size())
	for _, r := range batch.Records() {
		row, ok := model.PayloadAs[T](r)
		if !ok {
			return exception.NewBatchError("writer", fmt.Sprintf("record %s has a payload of type %T, expected %T", r.Header(), r.Payload(), row), exception.ErrRecordWriting, false, false)
		}
		rows = append(rows, row)
	}

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if w.table != "" {
			tx = tx.Table(w.table)
		}
		return tx.CreateInBatches(rows, w.chunkSize).Error
	})
	if err != nil {
		return exception.NewBatchError("writer", fmt.Sprintf("failed to insert batch #%d (%d rows)", batch.Header().Number(), len(rows)), err, false, true)
	}
	logger.Debugf("GormRecordWriter: inserted %d rows for batch #%d.", len(rows), batch.Header().Number())
	return nil
}

// Close does nothing: the connection belongs to the resolver.
func (w *GormRecordWriter[T]) Close(ctx context.Context) error { return nil }

var _ port.RecordWriter = (*GormRecordWriter[map[string]interface{}])(nil)
