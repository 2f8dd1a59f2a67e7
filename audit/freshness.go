package audit

import (
	"context"
	"log"
	"time"
)

// FreshRecord returns the latest record for the identity written within the last
// windowMinutes, or nil. A window of zero or less disables the check. Store errors
// are logged and treated as "no fresh record" so the caller falls through to upstream.
func FreshRecord(ctx context.Context, store Store, program, subscriber string, windowMinutes int, now time.Time) *Record {
	if windowMinutes <= 0 || store == nil {
		return nil
	}
	pk := PartitionKey(program, subscriber)
	rec, err := store.QueryLatest(ctx, pk, Within(now, time.Duration(windowMinutes)*time.Minute))
	if err != nil {
		log.Printf("audit: freshness lookup %s: %v", pk, err)
		return nil
	}
	return rec
}
