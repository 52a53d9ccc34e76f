package conversation

import (
	"context"

	"github.com/google/uuid"

	"github.com/carelink/carelink/internal/platform/auth"
)

// Repository persists conversations, one row per user.
type Repository interface {
	// AppendTurn atomically creates the user's conversation if missing and
	// appends the turn's two messages, overwriting the stored context.
	AppendTurn(ctx context.Context, userID uuid.UUID, role auth.Role, convContext string, turn []Message) (*Conversation, error)
	// ListByUser returns the user's conversations newest-first, at most limit.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Conversation, error)
}
