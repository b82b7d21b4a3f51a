package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Interaction is one dispatched message: what the user sent, which intent it
// resolved to, and what went back.
type Interaction struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Intent         string    `json:"intent"`
	UserText       string    `json:"user_text"`
	Response       string    `json:"response"`
	CreatedAt      time.Time `json:"created_at"`
}
