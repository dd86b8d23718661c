package postgres

import (
	"context"

	"buzzi-console/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepo queues bulk messages in message_outbox for the delivery worker.
type MessageRepo struct{ db *pgxpool.Pool }

func NewMessageRepo(db *pgxpool.Pool) *MessageRepo { return &MessageRepo{db: db} }

// DispatchBulkMessage writes one outbox row carrying the whole recipient list.
func (r *MessageRepo) DispatchBulkMessage(ctx context.Context, m models.BulkMessage) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO message_outbox (kind, recipients, body, subject)
		VALUES ($1, $2, $3, NULLIF($4, ''))`,
		m.Kind, m.Recipients, m.Body, m.Subject)
	return wrap("dispatch bulk message", err)
}
