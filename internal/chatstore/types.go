package chatstore

import (
	"maps"
	"slices"
	"time"
)

// Persisted keys in the local key-value medium.
const (
	KeyRooms    = "chat-rooms"
	KeyMessages = "chat-messages"
)

// TimestampLayout is the locale-style clock format stamped on messages.
const TimestampLayout = "3:04:05 PM"

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// senderGemini is how older persisted histories name the assistant.
const senderGemini = "gemini"

// UnmarshalText maps the legacy "gemini" sender to SenderAssistant. Any other
// value is kept as-is and rejected later by validation.
func (s *Sender) UnmarshalText(b []byte) error {
	if string(b) == senderGemini {
		*s = SenderAssistant
		return nil
	}
	*s = Sender(b)
	return nil
}

// ChatRoom is a named conversation thread.
type ChatRoom struct {
	ID        string    `json:"id" validate:"required"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
}

// Message is one entry in a room's history. Image holds data URIs.
type Message struct {
	From      Sender   `json:"from" validate:"oneof=user assistant"`
	Text      string   `json:"text"`
	Image     []string `json:"image,omitempty" validate:"omitempty,dive,datauri"`
	Timestamp string   `json:"timestamp"`
}

func (m Message) clone() Message {
	if len(m.Image) == 0 {
		m.Image = nil
	} else {
		m.Image = slices.Clone(m.Image)
	}
	return m
}

// Snapshot is a deep copy of the store's collections.
type Snapshot struct {
	Rooms          []ChatRoom           `json:"rooms"`
	MessagesByRoom map[string][]Message `json:"messagesByRoom"`
}

func cloneHistory(history []Message) []Message {
	out := make([]Message, len(history))
	for i, m := range history {
		out[i] = m.clone()
	}
	return out
}

func cloneMessages(byRoom map[string][]Message) map[string][]Message {
	out := make(map[string][]Message, len(byRoom))
	for id, history := range byRoom {
		out[id] = cloneHistory(history)
	}
	return out
}

// withHistory returns a shallow copy of byRoom where roomID maps to history.
// Histories are never mutated in place, so sharing the other slices is safe.
func withHistory(byRoom map[string][]Message, roomID string, history []Message) map[string][]Message {
	out := maps.Clone(byRoom)
	if out == nil {
		out = make(map[string][]Message)
	}
	out[roomID] = history
	return out
}
