package models

import "time"

// Message is one direct message between two users.
type Message struct {
	ID          string
	SenderID    string
	RecipientID string
	Body        string
	CreatedAt   time.Time
}

// DummyMessage receives a message body from a JSON request.
type DummyMessage struct {
	Body string `json:"body" validate:"required,min=1,max=5000"`
}
