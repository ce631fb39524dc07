package chatstore

import "time"

// Seed rooms and histories written on first start.
func seedRooms() []ChatRoom {
	return []ChatRoom{
		{ID: "1752930361512", Title: "Startup Pitch Draft", CreatedAt: seedTime("2025-07-18T12:00:00Z")},
		{ID: "1752930361513", Title: "CSS Grid Confusion 😩", CreatedAt: seedTime("2025-07-17T10:30:00Z")},
		{ID: "1752930361514", Title: "Explain Redux Like I'm 5", CreatedAt: seedTime("2025-07-16T09:15:00Z")},
		{ID: "1752930361515", Title: "Generate Blog Ideas (AI)", CreatedAt: seedTime("2025-07-15T08:45:00Z")},
	}
}

func seedMessages() map[string][]Message {
	return map[string][]Message{
		"1752930361512": {
			{From: SenderUser, Text: "Hey, here's my pitch idea:", Timestamp: "10:00 AM"},
			{From: SenderAssistant, Text: "Great! Start with a one-liner that captures your value.", Timestamp: "10:01 AM"},
		},
		"1752930361513": {
			{From: SenderUser, Text: "Why is CSS Grid so confusing 😩", Timestamp: "11:00 AM"},
			{From: SenderAssistant, Text: "Want a visual layout example?", Timestamp: "11:01 AM"},
		},
		"1752930361514": {
			{From: SenderUser, Text: "Explain Redux like I'm 5", Timestamp: "9:15 AM"},
			{From: SenderAssistant, Text: "Imagine a single big toy box (store)...", Timestamp: "9:16 AM"},
		},
		"1752930361515": {
			{From: SenderUser, Text: "Can you give me blog post ideas?", Timestamp: "8:45 AM"},
			{From: SenderAssistant, Text: "Sure. Topics on frontend performance, accessibility?", Timestamp: "8:46 AM"},
		},
	}
}

func seedTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
