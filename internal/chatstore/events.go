package chatstore

// Hydrated is the payload of store.hydrated.
type Hydrated struct {
	Rooms  int  `json:"rooms"`
	Seeded bool `json:"seeded"`
	Pruned int  `json:"pruned"`
}

// RoomChanged is the payload of room.created and room.renamed.
type RoomChanged struct {
	Room ChatRoom `json:"room"`
}

// RoomDeleted is the payload of room.deleted.
type RoomDeleted struct {
	RoomID string `json:"roomId"`
}

// MessageAppended is the payload of message.appended.
type MessageAppended struct {
	RoomID  string  `json:"roomId"`
	Message Message `json:"message"`
}

// WriteFailed is the payload of store.write_failed.
type WriteFailed struct {
	Keys  []string `json:"keys"`
	Error string   `json:"error"`
}
