package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Service interface {
	PlaceEscrowHold(ctx context.Context, tx pgx.Tx, orderID, clientID uuid.UUID, amountCents int64) error
	ReleaseEscrow(ctx context.Context, tx pgx.Tx, orderID, freelancerID uuid.UUID, earningsCents, feeCents int64) error
	RefundEscrow(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) Service {
	return &service{repo: repo}
}

var _ Service = (*service)(nil)

func (s *service) PlaceEscrowHold(ctx context.Context, tx pgx.Tx, orderID, clientID uuid.UUID, amountCents int64) error {
	return s.repo.PlaceEscrowHold(ctx, tx, orderID, clientID, amountCents)
}

func (s *service) ReleaseEscrow(ctx context.Context, tx pgx.Tx, orderID, freelancerID uuid.UUID, earningsCents, feeCents int64) error {
	return s.repo.ReleaseEscrow(ctx, tx, orderID, freelancerID, earningsCents, feeCents)
}

func (s *service) RefundEscrow(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	return s.repo.RefundEscrow(ctx, tx, orderID)
}

// ErrHoldNotFound is returned when settling an order with no held escrow.
var ErrHoldNotFound = errHoldNotFound

// SplitFee computes the platform fee and freelancer earnings for an amount
// at the given fee percentage. Earnings absorb the rounding remainder so the
// two always sum back to the amount.
func SplitFee(amountCents int64, feePercent int) (feeCents, earningsCents int64) {
	feeCents = amountCents * int64(feePercent) / 100
	earningsCents = amountCents - feeCents
	return feeCents, earningsCents
}
