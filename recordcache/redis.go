package recordcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cvgateway/audit"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the latest audit record per partition.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func latestKey(partitionKey string) string {
	return fmt.Sprintf("cvgateway:record:%s:latest", partitionKey)
}

// setIfNewer replaces KEYS[1] only when it is absent or holds a record whose
// sort_key is not larger than ARGV[2]. Returns 1 when written.
var setIfNewer = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if cur then
	local ok, rec = pcall(cjson.decode, cur)
	if ok and type(rec) == "table" and tonumber(rec["sort_key"]) ~= nil
		and tonumber(rec["sort_key"]) > tonumber(ARGV[2]) then
		return 0
	end
end
if tonumber(ARGV[3]) > 0 then
	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
else
	redis.call("SET", KEYS[1], ARGV[1])
end
return 1
`)

// SetLatestIfNewer stores rec as the cached latest record unless Redis already
// holds one with a larger sort key. The compare and the write run as one script.
func (r *RedisStore) SetLatestIfNewer(ctx context.Context, rec *audit.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	keys := []string{latestKey(rec.PartitionKey)}
	return setIfNewer.Run(ctx, r.client, keys, data, rec.SortKey, r.ttl.Milliseconds()).Err()
}

// Delete drops the cached latest record so reads fall back to SQL.
func (r *RedisStore) Delete(ctx context.Context, partitionKey string) error {
	return r.client.Del(ctx, latestKey(partitionKey)).Err()
}

func (r *RedisStore) GetLatest(ctx context.Context, partitionKey string) (*audit.Record, error) {
	data, err := r.client.Get(ctx, latestKey(partitionKey)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec audit.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
