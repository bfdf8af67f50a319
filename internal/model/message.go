package model

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// MessageKind tags why a message exists, so outbound channels can pick what to forward.
type MessageKind string

const (
	KindChat     MessageKind = "chat"
	KindWelcome  MessageKind = "welcome"
	KindAlert    MessageKind = "alert"
	KindBriefing MessageKind = "briefing"
	KindReview   MessageKind = "review"
)

// Source is a web citation returned alongside a grounded model answer.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Message is one immutable turn of the conversation transcript.
type Message struct {
	ID        string      `json:"id"`
	Role      Role        `json:"role"`
	Kind      MessageKind `json:"kind,omitempty"`
	Text      string      `json:"text"`
	Timestamp time.Time   `json:"timestamp"`
	Sources   []Source    `json:"sources,omitempty"`
}

// NewMessage builds a message with a fresh, time-ordered identifier.
func NewMessage(role Role, kind MessageKind, text string, sources []Source) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Kind:      kind,
		Text:      text,
		Timestamp: time.Now(),
		Sources:   sources,
	}
}

// NewID returns a UUIDv7 string. V7 values sort by creation time.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
