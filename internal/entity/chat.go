package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one question and answer exchanged with the assistant.
type ChatMessage struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	ForestID  *uuid.UUID `json:"forest_id,omitempty"`
	Message   string     `json:"message"`
	Response  string     `json:"response"`
	CreatedAt time.Time  `json:"created_at"`
}
