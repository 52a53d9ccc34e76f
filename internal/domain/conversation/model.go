package conversation

import (
	"time"

	"github.com/google/uuid"

	"github.com/carelink/carelink/internal/platform/auth"
)

// Message roles inside a transcript.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the single assistant transcript a user owns. Every chat
// turn appends a user message and the assistant's reply as one unit.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      auth.Role `json:"role"`
	Context   string    `json:"context,omitempty"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
