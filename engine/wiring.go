package engine

import (
	"cvgateway/messaging"
)

const eventSource = "cvgateway"

func (e *Engine) wireEventHandlers() {
	// Stage every saved record for publication; the drainer sends it later.
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(RecordSavedEvent)
		if e.msgClient == nil {
			return
		}
		env := messaging.NewEnvelope(messaging.TypeRecordSaved, eventSource, messaging.NewRecordSaved(ev.Record))
		if err := messaging.Enqueue(e.db, e.cfg.Messaging.RecordsTopic, env); err != nil {
			e.logFn("engine: enqueue record %s/%d: %v", ev.Record.PartitionKey, ev.Record.SortKey, err)
		}
	}, EventRecordSaved)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(ConnectionEvent)
		switch evt.Type {
		case EventDatabaseConnected, EventCacheConnected, EventMessagingConnected:
			e.logFn("engine: connected: %s", ev.Detail)
		default:
			e.logFn("engine: disconnected: %s", ev.Detail)
		}
	}, EventDatabaseConnected, EventDatabaseDisconnected,
		EventCacheConnected, EventCacheDisconnected,
		EventMessagingConnected, EventMessagingDisconnected)
}
