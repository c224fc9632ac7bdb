package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skilllinkup/backend/internal/ledger"
	"github.com/skilllinkup/backend/internal/models"
)

// Payment provider event types the reconciler understands.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
	EventPaymentRefunded  = "payment.refunded"
	EventPayoutPaid       = "payout.paid"
)

// ErrUnknownEventType marks provider events the reconciler does not map.
// The worker logs and drops these instead of retrying.
var ErrUnknownEventType = errors.New("unknown payment event type")

// PaymentEvent is the decoded webhook payload handed to the reconciler.
type PaymentEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	OrderID     uuid.UUID `json:"order_id"`
	AmountCents int64     `json:"amount_cents"`
}

// ApplyPaymentEvent reconciles one provider event against the order row.
// Transitions are idempotent with respect to order state: an event arriving
// after the order already moved on is a no-op, not an error.
func (s *Service) ApplyPaymentEvent(ctx context.Context, ev PaymentEvent) error {
	switch ev.Type {
	case EventPaymentSucceeded:
		return s.transition(ctx, ev.OrderID, func(ctx context.Context, tx pgx.Tx, o *models.Order) error {
			if o.Status != models.OrderStatusPending {
				return nil
			}
			return s.orders.UpdateStatusTx(ctx, tx, o.ID, models.OrderStatusInProgress, o.EscrowStatus, nil)
		})
	case EventPaymentFailed, EventPaymentRefunded:
		return s.transition(ctx, ev.OrderID, func(ctx context.Context, tx pgx.Tx, o *models.Order) error {
			switch o.Status {
			case models.OrderStatusCompleted, models.OrderStatusCancelled:
				return nil
			}
			if err := s.orders.UpdateStatusTx(ctx, tx, o.ID, models.OrderStatusCancelled, models.EscrowStatusRefunded, nil); err != nil {
				return err
			}
			if err := s.ledger.RefundEscrow(ctx, tx, o.ID); err != nil && !errors.Is(err, ledger.ErrHoldNotFound) {
				return err
			}
			return nil
		})
	case EventPayoutPaid:
		return s.transition(ctx, ev.OrderID, func(ctx context.Context, tx pgx.Tx, o *models.Order) error {
			if o.Status != models.OrderStatusCompleted || o.EscrowStatus == models.EscrowStatusReleased {
				return nil
			}
			if err := s.orders.UpdateStatusTx(ctx, tx, o.ID, o.Status, models.EscrowStatusReleased, nil); err != nil {
				return err
			}
			if err := s.ledger.ReleaseEscrow(ctx, tx, o.ID, o.FreelancerID, o.FreelancerEarningsCents, o.PlatformFeeCents); err != nil && !errors.Is(err, ledger.ErrHoldNotFound) {
				return err
			}
			return nil
		})
	default:
		return ErrUnknownEventType
	}
}
