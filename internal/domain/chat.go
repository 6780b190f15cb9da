package domain

import "time"

// Chat is a conversation between two or more participants. Participants are
// either registered user IDs in decimal form or anonymous identifiers with an
// "anon_" prefix.
type Chat struct {
	ID           int64
	Participants []string
	CreatedAt    time.Time
}

// ChatMessage is a single message inside a chat.
type ChatMessage struct {
	ID        int64
	ChatID    int64
	SenderID  string
	Body      string
	CreatedAt time.Time
}
