package messaging

import (
	"time"

	"cvgateway/audit"
	"cvgateway/status"
)

// RecordSaved announces a new current audit record for an identity.
type RecordSaved struct {
	PartitionKey string        `json:"partition_key"`
	SortKey      int64         `json:"sort_key"`
	Program      string        `json:"program"`
	Subscriber   string        `json:"subscriber"`
	Status       status.Status `json:"status"`
	VIN          string        `json:"vin,omitempty"`
	Latitude     float64       `json:"latitude"`
	Longitude    float64       `json:"longitude"`
	Timestamp    time.Time     `json:"timestamp"`
}

func NewRecordSaved(rec *audit.Record) RecordSaved {
	return RecordSaved{
		PartitionKey: rec.PartitionKey,
		SortKey:      rec.SortKey,
		Program:      rec.Program,
		Subscriber:   rec.Subscriber,
		Status:       rec.Status,
		VIN:          rec.VIN,
		Latitude:     rec.Latitude,
		Longitude:    rec.Longitude,
		Timestamp:    rec.Timestamp,
	}
}
