package model

import (
	"fmt"
	"strings"
)

// Batch is an ordered group of records written together. Writer failure
// semantics apply to the batch as a whole.
type Batch struct {
	header  Header
	records []*AnyRecord
}

// NewBatch creates a batch holding a copy of records.
func NewBatch(header Header, records ...*AnyRecord) Batch {
	copied := make([]*AnyRecord, len(records))
	copy(copied, records)
	return Batch{header: header, records: copied}
}

// Header returns the batch header. Batch numbers form their own sequence per job run.
func (b Batch) Header() Header { return b.header }

// Records returns the records of the batch in read order.
func (b Batch) Records() []*AnyRecord {
	out := make([]*AnyRecord, len(b.records))
	copy(out, b.records)
	return out
}

// Payloads returns the payloads of the batch's records in order.
func (b Batch) Payloads() []any {
	out := make([]any, len(b.records))
	for i, r := range b.records {
		out[i] = r.Payload()
	}
	return out
}

// Size returns the number of records in the batch.
func (b Batch) Size() int { return len(b.records) }

// IsEmpty reports whether the batch holds no records.
func (b Batch) IsEmpty() bool { return len(b.records) == 0 }

func (b Batch) String() string {
	numbers := make([]string, len(b.records))
	for i, r := range b.records {
		numbers[i] = fmt.Sprint(r.Header().Number())
	}
	return fmt.Sprintf("Batch{number=%d, size=%d, records=[%s]}", b.header.Number(), len(b.records), strings.Join(numbers, ","))
}
