package engine

import "cvgateway/audit"

// recordEmitter bridges recordcache.Emitter to the EventBus.
type recordEmitter struct {
	bus *EventBus
}

func (e *recordEmitter) EmitRecordSaved(rec *audit.Record) {
	e.bus.Emit(Event{Type: EventRecordSaved, Payload: RecordSavedEvent{Record: rec}})
}
