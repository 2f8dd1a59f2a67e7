// Package audit defines the audit record persisted for every saved or retrieved
// vehicle snapshot, the store contract adapters use to read and write it, and the
// freshness check that lets a recent record stand in for an upstream call.
package audit

import (
	"encoding/json"
	"time"

	"cvgateway/status"
)

// Record is one observed or saved snapshot of vehicle/call state for an identity.
// Records are append-only; the one with the largest SortKey in a partition is current.
type Record struct {
	PartitionKey string        `json:"partition_key"`
	SortKey      int64         `json:"sort_key"`
	Program      string        `json:"program"`
	Subscriber   string        `json:"subscriber"`
	Status       status.Status `json:"status"`
	Message      string        `json:"message,omitempty"`

	MSISDN      string    `json:"msisdn,omitempty"`
	ReferenceID string    `json:"reference_id,omitempty"`
	EventID     string    `json:"event_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	CallDate    string    `json:"call_date,omitempty"`
	CallTime    string    `json:"call_time,omitempty"`
	Language    string    `json:"language,omitempty"`
	CountryCode string    `json:"country_code,omitempty"`

	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Altitude         string  `json:"altitude,omitempty"`
	HeadingDirection string  `json:"heading_direction,omitempty"`

	VIN           string `json:"vin,omitempty"`
	Brand         string `json:"brand,omitempty"`
	ModelName     string `json:"model_name,omitempty"`
	ModelYear     string `json:"model_year,omitempty"`
	ModelCode     string `json:"model_code,omitempty"`
	ModelDesc     string `json:"model_desc,omitempty"`
	Odometer      string `json:"odometer,omitempty"`
	OdometerScale string `json:"odometer_scale,omitempty"`
	Mileage       string `json:"mileage,omitempty"`
	MileageUnit   string `json:"mileage_unit,omitempty"`

	// Extra carries provider-specific descriptors with no common column.
	Extra map[string]string `json:"extra,omitempty"`
	// Raw is the inbound payload as received, when the provider keeps it.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// Supplement is a secondary record saved next to a primary record (device,
// registration and similar detail). Supplements are never read back by adapters.
type Supplement struct {
	PartitionKey string          `json:"partition_key"`
	SortKey      int64           `json:"sort_key"`
	Program      string          `json:"program"`
	Subscriber   string          `json:"subscriber"`
	Data         json.RawMessage `json:"data"`
}

// PartitionKey builds the store partition key for an identity.
func PartitionKey(program, subscriber string) string {
	return program + "-" + subscriber
}

// NewRecord returns a record keyed for the identity and stamped with now.
func NewRecord(program, subscriber string, now time.Time) *Record {
	return &Record{
		PartitionKey: PartitionKey(program, subscriber),
		SortKey:      EpochMillis(now),
		Program:      program,
		Subscriber:   subscriber,
		Timestamp:    now.UTC(),
	}
}

// EpochMillis converts t to milliseconds since the Unix epoch.
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromEpoch converts an epoch value to UTC time. Ten digit values are seconds,
// anything else is milliseconds.
func FromEpoch(v int64) time.Time {
	if v >= 1e9 && v < 1e10 {
		return time.Unix(v, 0).UTC()
	}
	return time.UnixMilli(v).UTC()
}

// SetExtra records a provider-specific field, skipping blanks.
func (r *Record) SetExtra(key, value string) {
	if value == "" {
		return
	}
	if r.Extra == nil {
		r.Extra = make(map[string]string)
	}
	r.Extra[key] = value
}
