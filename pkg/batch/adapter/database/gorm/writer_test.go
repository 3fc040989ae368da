package gorm_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	gormadapter "github.com/tigerroll/surfin-record/pkg/batch/adapter/database/gorm"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
)

type customer struct {
	ID   int64 `gorm:"primaryKey"`
	Name string
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger: gormadapter.NewGormLogger("SILENT"),
	})
	require.NoError(t, err)
	return db, mock
}

func customerBatch(number int64, names ...string) model.Batch {
	headers := model.NewHeaderSequence("customers")
	records := make([]*model.AnyRecord, len(names))
	for i, name := range names {
		records[i] = model.NewRecord[any](headers.Next(), customer{ID: int64(i + 1), Name: name})
	}
	return model.NewBatch(model.NewHeader(number, "customers", time.Now()), records...)
}

func TestGormRecordWriter_InsertsBatchInTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	writer := gormadapter.NewGormRecordWriter[customer](db, "", 10)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `customers`")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 2))
	mock.ExpectCommit()

	ctx := context.Background()
	require.NoError(t, writer.Open(ctx))
	require.NoError(t, writer.WriteRecords(ctx, customerBatch(1, "alice", "bob")))
	require.NoError(t, writer.Close(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRecordWriter_FailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	writer := gormadapter.NewGormRecordWriter[customer](db, "", 10)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `customers`")).
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := writer.WriteRecords(context.Background(), customerBatch(2, "alice"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "duplicate key")
	var batchErr *exception.BatchError
	assert.ErrorAs(t, err, &batchErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRecordWriter_RejectsForeignPayload(t *testing.T) {
	db, mock := newMockDB(t)
	writer := gormadapter.NewGormRecordWriter[customer](db, "", 10)

	batch := model.NewBatch(model.NewHeader(1, "test", time.Now()),
		model.NewRecord[any](model.NewHeaderSequence("test").Next(), "not a customer"))

	err := writer.WriteRecords(context.Background(), batch)
	assert.ErrorIs(t, err, exception.ErrRecordWriting)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRecordWriter_EmptyBatchIsNoop(t *testing.T) {
	db, mock := newMockDB(t)
	writer := gormadapter.NewGormRecordWriter[customer](db, "", 0)

	batch := model.NewBatch(model.NewHeader(1, "test", time.Now()))
	require.NoError(t, writer.WriteRecords(context.Background(), batch))
	assert.NoError(t, mock.ExpectationsWereMet())
}
