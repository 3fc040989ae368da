package model

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Header carries the provenance of a record: its position in the source, the
// source's name and the time the record was created. Headers are immutable.
type Header struct {
	number       int64
	source       string
	creationDate time.Time
}

// NewHeader creates a header for the record at position number of source.
func NewHeader(number int64, source string, creationDate time.Time) Header {
	return Header{number: number, source: source, creationDate: creationDate}
}

// Number returns the record's sequence number, starting at 1.
func (h Header) Number() int64 { return h.number }

// Source returns the name of the data source the record came from.
func (h Header) Source() string { return h.source }

// CreationDate returns the time the record was read.
func (h Header) CreationDate() time.Time { return h.creationDate }

func (h Header) String() string {
	return fmt.Sprintf("Header{number=%d, source=%q, creationDate=%s}", h.number, h.source, h.creationDate.Format(time.RFC3339Nano))
}

// HeaderSequence hands out headers with strictly increasing numbers for one source.
// Readers own one sequence each; it is safe for concurrent use.
type HeaderSequence struct {
	source string
	last   atomic.Int64
	now    func() time.Time
}

// NewHeaderSequence creates a sequence whose first header is numbered 1.
func NewHeaderSequence(source string) *HeaderSequence {
	return &HeaderSequence{source: source, now: time.Now}
}

// Next returns the next header in the sequence.
func (s *HeaderSequence) Next() Header {
	return NewHeader(s.last.Add(1), s.source, s.now())
}

// Last returns the number of the most recent header, or 0 if none was issued.
func (s *HeaderSequence) Last() int64 {
	return s.last.Load()
}

// PoisonPill is the payload of a poison record. A queue-fed job that reads a
// poison record stops reading without treating it as data.
type PoisonPill struct{}

// Record is one unit of data flowing through a job: a header plus a payload of type P.
// Records are immutable; stages that change the payload produce a new record with
// WithPayload.
type Record[P any] struct {
	header  Header
	payload P
}

// AnyRecord is a record whose payload type is only known at runtime. It is the
// type carried between the stages of a job, since stages may change the payload type.
type AnyRecord = Record[any]

// NewRecord creates a record.
func NewRecord[P any](header Header, payload P) *Record[P] {
	return &Record[P]{header: header, payload: payload}
}

// NewPoisonRecord creates a poison record carrying the given header.
func NewPoisonRecord(header Header) *AnyRecord {
	return &AnyRecord{header: header, payload: PoisonPill{}}
}

// Header returns the record's header.
func (r *Record[P]) Header() Header { return r.header }

// Payload returns the record's payload.
func (r *Record[P]) Payload() P { return r.payload }

// IsPoison reports whether the record carries a PoisonPill payload.
func (r *Record[P]) IsPoison() bool {
	_, ok := any(r.payload).(PoisonPill)
	return ok
}

func (r *Record[P]) String() string {
	if r.IsPoison() {
		return fmt.Sprintf("Record{header=%s, payload=<poison>}", r.header)
	}
	return fmt.Sprintf("Record{header=%s, payload=%v}", r.header, r.payload)
}

// WithPayload returns a new record with r's header and the given payload.
func WithPayload[P, Q any](r *Record[P], payload Q) *Record[Q] {
	return &Record[Q]{header: r.header, payload: payload}
}

// Erase converts a typed record into an AnyRecord.
func Erase[P any](r *Record[P]) *AnyRecord {
	if r == nil {
		return nil
	}
	return &AnyRecord{header: r.header, payload: r.payload}
}

// PayloadAs returns the payload of r as a P, and whether the conversion succeeded.
func PayloadAs[P any](r *AnyRecord) (P, bool) {
	p, ok := r.payload.(P)
	return p, ok
}

// Typed converts r to a Record[P], failing if the payload is not a P.
func Typed[P any](r *AnyRecord) (*Record[P], error) {
	p, ok := r.payload.(P)
	if !ok {
		var zero P
		return nil, fmt.Errorf("record #%d: payload is %T, not %T", r.header.number, r.payload, zero)
	}
	return &Record[P]{header: r.header, payload: p}, nil
}
