package api

import (
	"encoding/json"

	"github.com/matheus3301/gemchat/internal/chatstore"
)

type GetStatusRequest struct{}

type GetStatusResponse struct {
	Profile      string `json:"profile"`
	Status       string `json:"status"`
	UptimeMs     int64  `json:"uptimeMs"`
	RoomCount    int    `json:"roomCount"`
	MessageCount int    `json:"messageCount"`
}

type ListRoomsRequest struct{}

type ListRoomsResponse struct {
	Rooms []chatstore.ChatRoom `json:"rooms"`
}

type SearchRoomsRequest struct {
	Query string `json:"query"`
}

type CreateRoomRequest struct {
	Title string `json:"title"`
}

type CreateRoomResponse struct {
	Room chatstore.ChatRoom `json:"room"`
}

type DeleteRoomRequest struct {
	RoomID string `json:"roomId"`
}

type DeleteRoomResponse struct{}

type RenameRoomRequest struct {
	RoomID string `json:"roomId"`
	Title  string `json:"title"`
}

type RenameRoomResponse struct {
	Room chatstore.ChatRoom `json:"room"`
}

type ListMessagesRequest struct {
	RoomID string `json:"roomId"`
}

type ListMessagesResponse struct {
	Messages []chatstore.Message `json:"messages"`
}

// SendMessageRequest posts a user message; the assistant answers later.
type SendMessageRequest struct {
	RoomID string   `json:"roomId"`
	Text   string   `json:"text"`
	Images []string `json:"images,omitempty"`
}

type SendMessageResponse struct {
	Message        chatstore.Message `json:"message"`
	ReplyScheduled bool              `json:"replyScheduled"`
}

// AppendMessageRequest appends a message from either sender without
// scheduling a reply.
type AppendMessageRequest struct {
	RoomID  string            `json:"roomId"`
	Message chatstore.Message `json:"message"`
}

type AppendMessageResponse struct {
	Message chatstore.Message `json:"message"`
}

// WatchEventsRequest filters the stream by event kind prefix, e.g. "room.".
// An empty namespace streams everything.
type WatchEventsRequest struct {
	Namespace string `json:"namespace"`
}

// EventEnvelope is one bus event on the wire.
type EventEnvelope struct {
	EventID          string          `json:"eventId"`
	Profile          string          `json:"profile"`
	Kind             string          `json:"kind"`
	OccurredAtUnixMs int64           `json:"occurredAtUnixMs"`
	Payload          json.RawMessage `json:"payload,omitempty"`
}
