package chat

import "time"

// Message is the durable record of one chat message between two users.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	ItemID     string    `json:"itemId,omitempty"`
	NoteID     string    `json:"noteId,omitempty"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Draft is the payload a client submits to compose a message. It arrives on
// both the live channel and the durable-write endpoint with the same shape.
type Draft struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	ItemID     string `json:"itemId,omitempty"`
	NoteID     string `json:"noteId,omitempty"`
}
