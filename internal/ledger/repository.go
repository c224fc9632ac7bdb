package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// escrowAccountID is the system account that holds funds between checkout
// and settlement. platformAccountID collects platform fees.
var (
	escrowAccountID   = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	platformAccountID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

var errHoldNotFound = errors.New("no held escrow for order")

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// PlaceEscrowHold runs inside the caller's checkout transaction. It records
// the provider charge moving into escrow: an ESCROW_HOLD transaction plus an
// escrow_holds row in state HELD. The client side of the entry is backed by
// the external payment, so no wallet balance is touched here.
func (r *Repository) PlaceEscrowHold(ctx context.Context, tx pgx.Tx, orderID, clientID uuid.UUID, amountCents int64) error {
	var holdTxID uuid.UUID
	row := tx.QueryRow(ctx, `
		INSERT INTO transactions (tx_type, order_id, debit_account_id, credit_account_id, amount_cents)
		VALUES ('ESCROW_HOLD', $1, $2, $3, $4)
		RETURNING id
	`, orderID, clientID, escrowAccountID, amountCents)
	if err := row.Scan(&holdTxID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO escrow_holds (order_id, client_id, amount_cents, status, hold_tx_id)
		VALUES ($1, $2, $3, 'HELD', $4)
	`, orderID, clientID, amountCents, holdTxID)
	return err
}

// ReleaseEscrow runs inside the caller's settlement transaction: pays the
// freelancer their earnings, pays the platform its fee, and marks the hold
// released. earningsCents + feeCents must equal the held amount; the caller
// has already validated the split against the order row.
func (r *Repository) ReleaseEscrow(ctx context.Context, tx pgx.Tx, orderID, freelancerID uuid.UUID, earningsCents, feeCents int64) error {
	var amountCents int64
	var holdTxID uuid.UUID
	row := tx.QueryRow(ctx, `
		SELECT amount_cents, hold_tx_id FROM escrow_holds WHERE order_id = $1 AND status = 'HELD' FOR UPDATE
	`, orderID)
	if err := row.Scan(&amountCents, &holdTxID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errHoldNotFound
		}
		return err
	}
	if earningsCents+feeCents != amountCents {
		return errors.New("settlement split does not match held amount")
	}
	var releaseTxID uuid.UUID
	row = tx.QueryRow(ctx, `
		INSERT INTO transactions (tx_type, order_id, debit_account_id, credit_account_id, amount_cents)
		VALUES ('ESCROW_RELEASE', $1, $2, $3, $4)
		RETURNING id
	`, orderID, escrowAccountID, freelancerID, earningsCents)
	if err := row.Scan(&releaseTxID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO transactions (tx_type, order_id, debit_account_id, credit_account_id, amount_cents)
		VALUES ('PLATFORM_FEE', $1, $2, $3, $4)
	`, orderID, escrowAccountID, platformAccountID, feeCents); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE escrow_holds SET status = 'RELEASED', release_tx_id = $1 WHERE order_id = $2
	`, releaseTxID, orderID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + $1 WHERE user_id = $2
	`, earningsCents, freelancerID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + $1 WHERE user_id = $2
	`, feeCents, platformAccountID)
	return err
}

// RefundEscrow returns the full held amount to the client (order cancelled
// or payment refunded upstream). Runs inside the caller's transaction.
func (r *Repository) RefundEscrow(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	var clientID uuid.UUID
	var amountCents int64
	row := tx.QueryRow(ctx, `
		SELECT client_id, amount_cents FROM escrow_holds WHERE order_id = $1 AND status = 'HELD' FOR UPDATE
	`, orderID)
	if err := row.Scan(&clientID, &amountCents); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errHoldNotFound
		}
		return err
	}
	var refundTxID uuid.UUID
	row = tx.QueryRow(ctx, `
		INSERT INTO transactions (tx_type, order_id, debit_account_id, credit_account_id, amount_cents)
		VALUES ('ESCROW_REFUND', $1, $2, $3, $4)
		RETURNING id
	`, orderID, escrowAccountID, clientID, amountCents)
	if err := row.Scan(&refundTxID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE escrow_holds SET status = 'REFUNDED', release_tx_id = $1 WHERE order_id = $2
	`, refundTxID, orderID); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, `
		UPDATE accounts SET balance_cents = balance_cents + $1 WHERE user_id = $2
	`, amountCents, clientID)
	return err
}
