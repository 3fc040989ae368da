// Package item provides generic record readers and writers and decorators for them.
package item

import (
	"context"
	"errors"
	"io"
	"iter"
	"time"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// IterableRecordReader reads the values of an iterator, wrapping each one in a record
// with a header numbered from 1 and stamped with the reader's source name.
type IterableRecordReader struct {
	source  string
	seq     iter.Seq[any]
	next    func() (any, bool)
	stop    func()
	headers *model.HeaderSequence
}

// NewIterableRecordReader creates a reader over seq. The iterator is started by Open.
func NewIterableRecordReader(source string, seq iter.Seq[any]) *IterableRecordReader {
	return &IterableRecordReader{source: source, seq: seq}
}

// NewSliceRecordReader creates a reader over a copy of items.
func NewSliceRecordReader[P any](source string, items []P) *IterableRecordReader {
	snapshot := append([]P(nil), items...)
	return NewIterableRecordReader(source, func(yield func(any) bool) {
		for _, item := range snapshot {
			if !yield(item) {
				return
			}
		}
	})
}

func (r *IterableRecordReader) Open(context.Context) error {
	if r.next != nil {
		return errors.New("iterable record reader is already open")
	}
	r.headers = model.NewHeaderSequence(r.source)
	r.next, r.stop = iter.Pull(r.seq)
	return nil
}

// ReadRecord returns the next value as a record, or nil when the iterator is exhausted.
func (r *IterableRecordReader) ReadRecord(context.Context) (*model.AnyRecord, error) {
	if r.next == nil {
		return nil, errors.New("iterable record reader is not open")
	}
	value, ok := r.next()
	if !ok {
		return nil, nil
	}
	return model.NewRecord[any](r.headers.Next(), value), nil
}

func (r *IterableRecordReader) Close(context.Context) error {
	if r.stop != nil {
		r.stop()
	}
	return nil
}

// PoisonTerminatedReader decorates a reader so that the end of its stream is followed
// by exactly one poison record. Jobs feeding a dispatcher use it to tell downstream
// workers that no more records will come.
type PoisonTerminatedReader struct {
	delegate port.RecordReader
	sent     bool
	last     int64
	source   string
}

// NewPoisonTerminatedReader wraps delegate.
func NewPoisonTerminatedReader(delegate port.RecordReader) *PoisonTerminatedReader {
	return &PoisonTerminatedReader{delegate: delegate}
}

func (r *PoisonTerminatedReader) Open(ctx context.Context) error {
	return r.delegate.Open(ctx)
}

func (r *PoisonTerminatedReader) ReadRecord(ctx context.Context) (*model.AnyRecord, error) {
	if r.sent {
		return nil, nil
	}
	record, err := r.delegate.ReadRecord(ctx)
	if err != nil && !isEndOfStream(err) {
		return nil, err
	}
	if record != nil && err == nil {
		r.last = record.Header().Number()
		r.source = record.Header().Source()
		return record, nil
	}
	r.sent = true
	logger.Debugf("PoisonTerminatedReader: end of stream after record #%d, emitting poison.", r.last)
	return model.NewPoisonRecord(model.NewHeader(r.last+1, r.source, time.Now())), nil
}

func (r *PoisonTerminatedReader) Close(ctx context.Context) error {
	return r.delegate.Close(ctx)
}

func isEndOfStream(err error) bool {
	return errors.Is(err, port.ErrNoMoreRecords) || errors.Is(err, io.EOF)
}

var (
	_ port.RecordReader = (*IterableRecordReader)(nil)
	_ port.RecordReader = (*PoisonTerminatedReader)(nil)
)
