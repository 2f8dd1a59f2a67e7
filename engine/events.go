package engine

import "cvgateway/audit"

const (
	EventRecordSaved EventType = iota + 1
	EventDatabaseConnected
	EventDatabaseDisconnected
	EventCacheConnected
	EventCacheDisconnected
	EventMessagingConnected
	EventMessagingDisconnected
)

type RecordSavedEvent struct {
	Record *audit.Record
}

type ConnectionEvent struct {
	Detail string
}
