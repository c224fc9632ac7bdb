package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentEventRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentEventRepo(pool *pgxpool.Pool) *PaymentEventRepo {
	return &PaymentEventRepo{pool: pool}
}

func (r *PaymentEventRepo) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// MarkProcessedTx records the provider event ID within the caller's
// transaction. Returns false when the event was already recorded, which makes
// webhook replays no-ops. The row only becomes visible on commit, so a
// rolled-back delivery does not block the provider's retry.
func (r *PaymentEventRepo) MarkProcessedTx(ctx context.Context, tx pgx.Tx, providerEventID string) (bool, error) {
	_, err := tx.Exec(ctx, `
		INSERT INTO payment_events (provider_event_id) VALUES ($1)
	`, providerEventID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
