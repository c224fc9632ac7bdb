package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skilllinkup/backend/internal/models"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

const conversationColumns = `id, client_id, freelancer_id, order_id, created_at, updated_at`

func scanConversation(row interface{ Scan(...any) error }) (*models.Conversation, error) {
	var c models.Conversation
	err := row.Scan(&c.ID, &c.ClientID, &c.FreelancerID, &c.OrderID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindOrCreateConversation returns the existing conversation for the
// (client, freelancer, order) tuple or inserts a new one. The upsert keeps
// POST /api/messages/start idempotent.
func (r *MessageRepo) FindOrCreateConversation(ctx context.Context, c *models.Conversation) (*models.Conversation, error) {
	existing, err := scanConversation(r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+` FROM conversations
		WHERE client_id = $1 AND freelancer_id = $2 AND order_id IS NOT DISTINCT FROM $3
	`, c.ClientID, c.FreelancerID, c.OrderID))
	if err == nil {
		return existing, nil
	}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO conversations (id, client_id, freelancer_id, order_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, c.ID, c.ClientID, c.FreelancerID, c.OrderID).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *MessageRepo) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	return scanConversation(r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+` FROM conversations WHERE id = $1
	`, id))
}

func (r *MessageRepo) ListConversationsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+conversationColumns+` FROM conversations
		WHERE client_id = $1 OR freelancer_id = $1
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *MessageRepo) CreateMessage(ctx context.Context, m *models.Message) error {
	if err := r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, m.ID, m.ConversationID, m.SenderID, m.Body).Scan(&m.CreatedAt); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `UPDATE conversations SET updated_at = now() WHERE id = $1`, m.ConversationID)
	return err
}

func (r *MessageRepo) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]*models.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, conversation_id, sender_id, body, read_at, created_at
		FROM messages WHERE conversation_id = $1 ORDER BY created_at
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &m.ReadAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
