package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// RowMapper turns the current row of a result set into a record payload.
type RowMapper func(rows *sql.Rows) (any, error)

// SqlRecordReader reads the rows of a query through a database cursor, one record per row.
// Records are numbered from 1 and carry the reader's name as their source.
type SqlRecordReader struct {
	db      *sql.DB
	name    string
	query   string
	args    []any
	mapper  RowMapper
	rows    *sql.Rows
	headers *model.HeaderSequence
}

// NewSqlRecordReader creates a reader executing query with args when opened.
func NewSqlRecordReader(db *sql.DB, name string, query string, args []any, mapper RowMapper) *SqlRecordReader {
	return &SqlRecordReader{
		db:     db,
		name:   name,
		query:  query,
		args:   args,
		mapper: mapper,
	}
}

// Open executes the query.
func (r *SqlRecordReader) Open(ctx context.Context) error {
	logger.Infof("SqlRecordReader '%s': executing query: %s", r.name, r.query)
	rows, err := r.db.QueryContext(ctx, r.query, r.args...)
	if err != nil {
		return exception.NewBatchError("reader", fmt.Sprintf("failed to execute query for SqlRecordReader '%s'", r.name), err, false, false)
	}
	r.rows = rows
	r.headers = model.NewHeaderSequence(r.name)
	return nil
}

// ReadRecord advances the cursor and maps the row. It returns nil when the rows are exhausted.
func (r *SqlRecordReader) ReadRecord(ctx context.Context) (*model.AnyRecord, error) {
	if r.rows == nil {
		return nil, exception.NewBatchError("reader", fmt.Sprintf("SqlRecordReader '%s' is not open", r.name), errors.New("reader not initialized"), false, false)
	}
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, exception.NewBatchError("reader", fmt.Sprintf("error during row iteration for SqlRecordReader '%s'", r.name), err, false, false)
		}
		return nil, nil
	}

	payload, err := r.mapper(r.rows)
	if err != nil {
		return nil, exception.NewBatchError("reader", fmt.Sprintf("failed to map row for SqlRecordReader '%s'", r.name), err, false, false)
	}
	return model.NewRecord[any](r.headers.Next(), payload), nil
}

// Close releases the cursor.
func (r *SqlRecordReader) Close(context.Context) error {
	if r.rows == nil {
		return nil
	}
	err := r.rows.Close()
	r.rows = nil
	if err != nil {
		return exception.NewBatchError("reader", fmt.Sprintf("failed to close rows for SqlRecordReader '%s'", r.name), err, false, false)
	}
	logger.Debugf("SqlRecordReader '%s': cursor closed.", r.name)
	return nil
}

var _ port.RecordReader = (*SqlRecordReader)(nil)

// ColumnMapRowMapper maps a row to a map from column name to value. Byte slices are
// converted to strings.
func ColumnMapRowMapper(rows *sql.Rows) (any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	if err := rows.Scan(pointers...); err != nil {
		return nil, err
	}
	row := make(map[string]interface{}, len(columns))
	for i, column := range columns {
		if b, ok := values[i].([]byte); ok {
			row[column] = string(b)
			continue
		}
		row[column] = values[i]
	}
	return row, nil
}
