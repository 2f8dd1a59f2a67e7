// Package audittest provides an in-memory audit.Store for tests.
package audittest

import (
	"context"
	"sort"
	"sync"

	"cvgateway/audit"
)

// Store is an in-memory audit.Store with failure injection and call counters.
type Store struct {
	mu          sync.Mutex
	records     map[string][]*audit.Record
	supplements []*audit.Supplement

	// PutErr, when set, is returned by every Put.
	PutErr error
	// SupplementErr, when set, is returned by every PutSupplement.
	SupplementErr error
	// QueryErr, when set, is returned by every QueryLatest.
	QueryErr error
	// OnQuery, when set, runs before each QueryLatest with the 1-based call number.
	// A non-nil record it returns is answered instead of the stored data.
	OnQuery func(n int, partitionKey string, within *audit.Range) *audit.Record

	puts    int
	queries int
}

func New() *Store {
	return &Store{records: make(map[string][]*audit.Record)}
}

// Seed stores records without counting them as puts.
func (s *Store) Seed(recs ...*audit.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range recs {
		s.records[r.PartitionKey] = append(s.records[r.PartitionKey], r)
	}
}

func (s *Store) Put(_ context.Context, rec *audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.PutErr != nil {
		return s.PutErr
	}
	s.records[rec.PartitionKey] = append(s.records[rec.PartitionKey], rec)
	return nil
}

func (s *Store) PutSupplement(_ context.Context, sup *audit.Supplement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SupplementErr != nil {
		return s.SupplementErr
	}
	s.supplements = append(s.supplements, sup)
	return nil
}

func (s *Store) QueryLatest(_ context.Context, partitionKey string, within *audit.Range) (*audit.Record, error) {
	s.mu.Lock()
	s.queries++
	n := s.queries
	hook := s.OnQuery
	err := s.QueryErr
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if hook != nil {
		if rec := hook(n, partitionKey, within); rec != nil {
			return rec, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *audit.Record
	for _, r := range s.records[partitionKey] {
		if !within.Contains(r.SortKey) {
			continue
		}
		if latest == nil || r.SortKey > latest.SortKey {
			latest = r
		}
	}
	return latest, nil
}

func (s *Store) ListRecords(_ context.Context, partitionKey string, limit int) ([]*audit.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := append([]*audit.Record(nil), s.records[partitionKey]...)
	sort.Slice(recs, func(i, j int) bool { return recs[i].SortKey > recs[j].SortKey })
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// Records returns all stored records for a partition in insertion order.
func (s *Store) Records(partitionKey string) []*audit.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*audit.Record(nil), s.records[partitionKey]...)
}

func (s *Store) Supplements() []*audit.Supplement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*audit.Supplement(nil), s.supplements...)
}

func (s *Store) Puts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func (s *Store) Queries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries
}
