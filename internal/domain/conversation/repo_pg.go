package conversation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carelink/carelink/internal/platform/auth"
	"github.com/carelink/carelink/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

const cols = `id, user_id, role, context, messages, created_at, updated_at`

func scan(row pgx.Row) (*Conversation, error) {
	var c Conversation
	var msgs []byte
	err := row.Scan(&c.ID, &c.UserID, &c.Role, &c.Context, &msgs, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(msgs, &c.Messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return &c, nil
}

// AppendTurn is a single statement so two concurrent first turns cannot
// create two rows: the UNIQUE(user_id) upsert either inserts the row with
// the turn or concatenates the turn onto the existing transcript.
func (r *repoPG) AppendTurn(ctx context.Context, userID uuid.UUID, role auth.Role, convContext string, turn []Message) (*Conversation, error) {
	encoded, err := json.Marshal(turn)
	if err != nil {
		return nil, fmt.Errorf("encode turn: %w", err)
	}
	return scan(r.conn(ctx).QueryRow(ctx, `
		INSERT INTO ai_conversations (id, user_id, role, context, messages)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			messages = ai_conversations.messages || EXCLUDED.messages,
			context = EXCLUDED.context,
			updated_at = NOW()
		RETURNING `+cols,
		uuid.New(), userID, role, convContext, encoded))
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Conversation, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+cols+` FROM ai_conversations WHERE user_id = $1 ORDER BY updated_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Conversation
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
