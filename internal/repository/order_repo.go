package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skilllinkup/backend/internal/models"
)

// ErrFeeMismatch is returned when an order write violates the money split
// invariant: freelancer earnings plus platform fee must equal the amount.
var ErrFeeMismatch = errors.New("freelancer earnings plus platform fee must equal order amount")

type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

const orderColumns = `id, order_number, order_type, gig_id, title, amount_cents, platform_fee_cents, freelancer_earnings_cents, currency, status, escrow_status, delivery_deadline, client_id, freelancer_id, revision_count, revisions_used, requirements, created_at, updated_at, completed_at`

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.OrderType, &o.GigID, &o.Title, &o.AmountCents, &o.PlatformFeeCents, &o.FreelancerEarningsCents, &o.Currency, &o.Status, &o.EscrowStatus, &o.DeliveryDeadline, &o.ClientID, &o.FreelancerID, &o.RevisionCount, &o.RevisionsUsed, &o.Requirements, &o.CreatedAt, &o.UpdatedAt, &o.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateTx inserts the order inside the caller's checkout transaction.
// Rejects writes where the fee split does not reconcile to the amount.
func (r *OrderRepo) CreateTx(ctx context.Context, tx pgx.Tx, o *models.Order) error {
	if o.FreelancerEarningsCents+o.PlatformFeeCents != o.AmountCents {
		return ErrFeeMismatch
	}
	return tx.QueryRow(ctx, `
		INSERT INTO orders (id, order_number, order_type, gig_id, title, amount_cents, platform_fee_cents, freelancer_earnings_cents, currency, status, escrow_status, delivery_deadline, client_id, freelancer_id, revision_count, revisions_used, requirements)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at, updated_at
	`, o.ID, o.OrderNumber, o.OrderType, o.GigID, o.Title, o.AmountCents, o.PlatformFeeCents, o.FreelancerEarningsCents, o.Currency, o.Status, o.EscrowStatus, o.DeliveryDeadline, o.ClientID, o.FreelancerID, o.RevisionCount, o.RevisionsUsed, o.Requirements).Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

// GetByIDForUpdate locks the order row. Call within a transaction.
func (r *OrderRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Order, error) {
	return scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
}

func (r *OrderRepo) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE client_id = $1 OR freelancer_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// UpdateStatusTx moves the order to the given fulfillment/escrow state inside
// the caller's transaction. completedAt is set only when non-nil.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status, escrowStatus string, completedAt *time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE orders SET status = $2, escrow_status = $3, completed_at = COALESCE($4, completed_at), updated_at = now()
		WHERE id = $1
	`, id, status, escrowStatus, completedAt)
	return err
}

// IncrementRevisionsTx bumps revisions_used, guarded by the revision limit.
// Returns false when the limit is exhausted.
func (r *OrderRepo) IncrementRevisionsTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error) {
	result, err := tx.Exec(ctx, `
		UPDATE orders SET revisions_used = revisions_used + 1, updated_at = now()
		WHERE id = $1 AND revisions_used < revision_count
	`, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// NextOrderNumber issues an order number of the form SL-YYYYMMDD-NNNN from a
// database sequence, so concurrent checkouts never collide.
func (r *OrderRepo) NextOrderNumber(ctx context.Context, tx pgx.Tx, now time.Time) (string, error) {
	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("SL-%s-%04d", now.UTC().Format("20060102"), seq), nil
}

func (r *OrderRepo) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}
