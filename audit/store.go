package audit

import (
	"context"
	"math"
	"time"
)

// Range bounds a query by sort key, inclusive on both ends.
type Range struct {
	From int64
	To   int64
}

// Within returns the range [now-d, now].
func Within(now time.Time, d time.Duration) *Range {
	return &Range{From: EpochMillis(now.Add(-d)), To: EpochMillis(now)}
}

// Since returns the open-ended range starting at t.
func Since(t time.Time) *Range {
	return &Range{From: EpochMillis(t), To: math.MaxInt64}
}

// Contains reports whether sortKey lies in the range. A nil range contains everything.
func (r *Range) Contains(sortKey int64) bool {
	if r == nil {
		return true
	}
	return sortKey >= r.From && sortKey <= r.To
}

// Store is the keyed, time-ordered audit store.
//
// QueryLatest returns the record with the largest sort key in the partition,
// optionally restricted to a range. A nil record with a nil error means absent.
type Store interface {
	Put(ctx context.Context, rec *Record) error
	QueryLatest(ctx context.Context, partitionKey string, within *Range) (*Record, error)
}

// SupplementStore is implemented by stores that keep supplement records.
// Adapters type-assert for it and skip supplements when it is missing.
type SupplementStore interface {
	PutSupplement(ctx context.Context, sup *Supplement) error
}

// Lister is implemented by stores that can page through a partition, newest first.
type Lister interface {
	ListRecords(ctx context.Context, partitionKey string, limit int) ([]*Record, error)
}
