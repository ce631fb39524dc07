package bus

import "time"

// Event kinds published by the chat store and the daemon.
const (
	KindStoreHydrated    = "store.hydrated"
	KindStoreWriteFailed = "store.write_failed"
	KindRoomCreated      = "room.created"
	KindRoomRenamed      = "room.renamed"
	KindRoomDeleted      = "room.deleted"
	KindMessageAppended  = "message.appended"
	KindStatusChanged    = "daemon.status_changed"
)

// Event represents a domain event published on the bus.
type Event struct {
	ID        string
	Kind      string
	Timestamp time.Time
	Payload   any
}
