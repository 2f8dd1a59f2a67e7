// Package recordcache puts a Redis copy of the latest audit record per partition
// in front of the SQL audit store.
package recordcache

import (
	"context"
	"log"

	"cvgateway/audit"
)

// Backend is the durable store behind the cache.
type Backend interface {
	audit.Store
	audit.SupplementStore
	audit.Lister
}

// Emitter is told about every record that reached the durable store.
type Emitter interface {
	EmitRecordSaved(rec *audit.Record)
}

type latestCache interface {
	SetLatestIfNewer(ctx context.Context, rec *audit.Record) error
	GetLatest(ctx context.Context, partitionKey string) (*audit.Record, error)
	Delete(ctx context.Context, partitionKey string) error
}

// Manager provides write-through record storage: SQL first, then Redis.
// A nil Redis store turns the manager into a pass-through.
type Manager struct {
	db      Backend
	cache   latestCache
	emitter Emitter
}

func NewManager(db Backend, redis *RedisStore) *Manager {
	m := &Manager{db: db}
	if redis != nil {
		m.cache = redis
	}
	return m
}

// SetEmitter registers the record-saved listener. Call before serving traffic.
func (m *Manager) SetEmitter(e Emitter) { m.emitter = e }

// Put writes the record to SQL and then refreshes the cached latest copy.
// A failed refresh evicts the cached copy so reads go to SQL.
func (m *Manager) Put(ctx context.Context, rec *audit.Record) error {
	if err := m.db.Put(ctx, rec); err != nil {
		return err
	}
	if m.cache != nil {
		if err := m.cache.SetLatestIfNewer(ctx, rec); err != nil {
			log.Printf("recordcache: write %s: %v", rec.PartitionKey, err)
			if err := m.cache.Delete(ctx, rec.PartitionKey); err != nil {
				log.Printf("recordcache: evict %s: %v", rec.PartitionKey, err)
			}
		}
	}
	if m.emitter != nil {
		m.emitter.EmitRecordSaved(rec)
	}
	return nil
}

// QueryLatest answers from Redis when the cached record satisfies the range,
// and falls back to SQL otherwise.
func (m *Manager) QueryLatest(ctx context.Context, partitionKey string, within *audit.Range) (*audit.Record, error) {
	if m.cache != nil {
		rec, err := m.cache.GetLatest(ctx, partitionKey)
		if err != nil {
			log.Printf("recordcache: read %s: %v", partitionKey, err)
		} else if rec != nil && within.Contains(rec.SortKey) {
			return rec, nil
		}
	}
	return m.db.QueryLatest(ctx, partitionKey, within)
}

func (m *Manager) PutSupplement(ctx context.Context, sup *audit.Supplement) error {
	return m.db.PutSupplement(ctx, sup)
}

func (m *Manager) ListRecords(ctx context.Context, partitionKey string, limit int) ([]*audit.Record, error) {
	return m.db.ListRecords(ctx, partitionKey, limit)
}
