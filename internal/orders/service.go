package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skilllinkup/backend/internal/ledger"
	"github.com/skilllinkup/backend/internal/models"
	"github.com/skilllinkup/backend/internal/notify"
)

var (
	// ErrNotFound covers both a missing order and an inaccessible one; the
	// handler turns it into a redirect, never a detail-page error.
	ErrNotFound = errors.New("order not found")

	ErrInvalidTransition  = errors.New("order is not in a state that allows this action")
	ErrNotParticipant     = errors.New("user is not a participant on this order")
	ErrRevisionsExhausted = errors.New("revision limit reached")
	ErrOwnGig             = errors.New("cannot order your own gig")
	ErrGigNotAvailable    = errors.New("gig is not available for purchase")
)

// OrderStore is the order persistence surface the service needs.
type OrderStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, o *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Order, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*models.Order, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status, escrowStatus string, completedAt *time.Time) error
	IncrementRevisionsTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)
	NextOrderNumber(ctx context.Context, tx pgx.Tx, now time.Time) (string, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// GigStore resolves the gig being purchased.
type GigStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error)
}

// UserDirectory resolves display names and email addresses for notifications
// and the order view.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	DisplayName(ctx context.Context, id uuid.UUID) (string, error)
}

// InsertEmailTxFunc enqueues a transactional email within the given
// transaction. Provided by main using river.Client.InsertTx.
type InsertEmailTxFunc func(ctx context.Context, tx pgx.Tx, args notify.SendEmailArgs) error

type Service struct {
	orders      OrderStore
	gigs        GigStore
	users       UserDirectory
	ledger      ledger.Service
	feePercent  int
	insertEmail InsertEmailTxFunc
	now         func() time.Time
}

func NewService(orders OrderStore, gigs GigStore, users UserDirectory, ledgerSvc ledger.Service, feePercent int, insertEmail InsertEmailTxFunc) *Service {
	if feePercent <= 0 || feePercent >= 100 {
		feePercent = 10
	}
	return &Service{
		orders:      orders,
		gigs:        gigs,
		users:       users,
		ledger:      ledgerSvc,
		feePercent:  feePercent,
		insertEmail: insertEmail,
		now:         time.Now,
	}
}

type CheckoutInput struct {
	GigID uuid.UUID `json:"gig_id"`
}

// Checkout creates a pending order for a gig in a single transaction: order
// row, escrow hold, order number, confirmation email. The money split is
// computed here and enforced again at the repository boundary.
func (s *Service) Checkout(ctx context.Context, clientID uuid.UUID, input CheckoutInput) (*models.Order, error) {
	gig, err := s.gigs.GetByID(ctx, input.GigID)
	if err != nil {
		return nil, ErrGigNotAvailable
	}
	if gig.Status != models.GigStatusActive {
		return nil, ErrGigNotAvailable
	}
	if gig.FreelancerID == clientID {
		return nil, ErrOwnGig
	}

	tx, err := s.orders.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := s.now()
	number, err := s.orders.NextOrderNumber(ctx, tx, now)
	if err != nil {
		return nil, err
	}
	feeCents, earningsCents := ledger.SplitFee(gig.PriceCents, s.feePercent)
	deadline := now.Add(time.Duration(gig.DeliveryDays) * 24 * time.Hour)

	order := &models.Order{
		ID:                      uuid.New(),
		OrderNumber:             number,
		OrderType:               models.OrderTypeGig,
		GigID:                   &gig.ID,
		Title:                   gig.Title,
		AmountCents:             gig.PriceCents,
		PlatformFeeCents:        feeCents,
		FreelancerEarningsCents: earningsCents,
		Currency:                gig.Currency,
		Status:                  models.OrderStatusPending,
		EscrowStatus:            models.EscrowStatusHeld,
		DeliveryDeadline:        &deadline,
		ClientID:                clientID,
		FreelancerID:            gig.FreelancerID,
		RevisionCount:           gig.RevisionLimit,
	}
	if order.Currency == "" {
		order.Currency = models.DefaultCurrency
	}
	if err := s.orders.CreateTx(ctx, tx, order); err != nil {
		return nil, err
	}
	if err := s.ledger.PlaceEscrowHold(ctx, tx, order.ID, clientID, order.AmountCents); err != nil {
		return nil, err
	}
	if err := s.enqueueOrderEmail(ctx, tx, clientID,
		fmt.Sprintf("Order %s confirmed", order.OrderNumber),
		fmt.Sprintf("Your order %s for %q has been placed. Payment is held in escrow until you accept the delivery.", order.OrderNumber, order.Title),
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

// GetForParticipant returns the order only when the user is the client or
// freelancer on it. Anything else collapses into ErrNotFound.
func (s *Service) GetForParticipant(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, ErrNotFound
	}
	if !order.IsParticipant(userID) {
		return nil, ErrNotFound
	}
	return order, nil
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	return s.orders.ListByParticipant(ctx, userID)
}

// View builds the display record for an order, resolving participant names.
// A failed name lookup degrades to an empty name rather than failing the
// page.
func (s *Service) View(ctx context.Context, order *models.Order) OrderView {
	clientName, _ := s.users.DisplayName(ctx, order.ClientID)
	freelancerName, _ := s.users.DisplayName(ctx, order.FreelancerID)
	return NewOrderView(order, clientName, freelancerName)
}

// Deliver marks an in-progress order as delivered. Freelancer only.
func (s *Service) Deliver(ctx context.Context, orderID, actorID uuid.UUID) error {
	return s.transition(ctx, orderID, func(ctx context.Context, tx pgx.Tx, o *models.Order) error {
		if o.FreelancerID != actorID {
			return ErrNotParticipant
		}
		if o.Status != models.OrderStatusInProgress {
			return ErrInvalidTransition
		}
		if err := s.orders.UpdateStatusTx(ctx, tx, o.ID, models.OrderStatusDelivered, o.EscrowStatus, nil); err != nil {
			return err
		}
		return s.enqueueOrderEmail(ctx, tx, o.ClientID,
			fmt.Sprintf("Order %s delivered", o.OrderNumber),
			fmt.Sprintf("The freelancer has delivered order %s. Review the work and accept it to release payment.", o.OrderNumber),
		)
	})
}

// Accept completes a delivered order: terminal status, completion timestamp,
// escrow released to the freelancer with the platform-fee split. Client only.
func (s *Service) Accept(ctx context.Context, orderID, actorID uuid.UUID) error {
	return s.transition(ctx, orderID, func(ctx context.Context, tx pgx.Tx, o *models.Order) error {
		if o.ClientID != actorID {
			return ErrNotParticipant
		}
		if o.Status != models.OrderStatusDelivered {
			return ErrInvalidTransition
		}
		completedAt := s.now()
		if err := s.orders.UpdateStatusTx(ctx, tx, o.ID, models.OrderStatusCompleted, models.EscrowStatusReleased, &completedAt); err != nil {
			return err
		}
		if err := s.ledger.ReleaseEscrow(ctx, tx, o.ID, o.FreelancerID, o.FreelancerEarningsCents, o.PlatformFeeCents); err != nil {
			return err
		}
		return s.enqueueOrderEmail(ctx, tx, o.FreelancerID,
			fmt.Sprintf("Order %s completed", o.OrderNumber),
			fmt.Sprintf("The client accepted order %s. Your earnings have been released from escrow.", o.OrderNumber),
		)
	})
}

// Cancel cancels a not-yet-delivered order and refunds the escrow. Either
// participant may cancel.
func (s *Service) Cancel(ctx context.Context, orderID, actorID uuid.UUID) error {
	return s.transition(ctx, orderID, func(ctx context.Context, tx pgx.Tx, o *models.Order) error {
		if !o.IsParticipant(actorID) {
			return ErrNotParticipant
		}
		if o.Status != models.OrderStatusPending && o.Status != models.OrderStatusInProgress {
			return ErrInvalidTransition
		}
		if err := s.orders.UpdateStatusTx(ctx, tx, o.ID, models.OrderStatusCancelled, models.EscrowStatusRefunded, nil); err != nil {
			return err
		}
		return s.ledger.RefundEscrow(ctx, tx, o.ID)
	})
}

// RequestRevision sends a delivered order back to in_progress, consuming one
// revision. Client only; fails once the gig's revision limit is used up.
func (s *Service) RequestRevision(ctx context.Context, orderID, actorID uuid.UUID) error {
	return s.transition(ctx, orderID, func(ctx context.Context, tx pgx.Tx, o *models.Order) error {
		if o.ClientID != actorID {
			return ErrNotParticipant
		}
		if o.Status != models.OrderStatusDelivered {
			return ErrInvalidTransition
		}
		ok, err := s.orders.IncrementRevisionsTx(ctx, tx, o.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRevisionsExhausted
		}
		return s.orders.UpdateStatusTx(ctx, tx, o.ID, models.OrderStatusInProgress, o.EscrowStatus, nil)
	})
}

func (s *Service) transition(ctx context.Context, orderID uuid.UUID, apply func(context.Context, pgx.Tx, *models.Order) error) error {
	tx, err := s.orders.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	order, err := s.orders.GetByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return ErrNotFound
	}
	if err := apply(ctx, tx, order); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) enqueueOrderEmail(ctx context.Context, tx pgx.Tx, userID uuid.UUID, subject, body string) error {
	if s.insertEmail == nil {
		return nil
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		// The order change must not fail because a recipient is gone.
		return nil
	}
	return s.insertEmail(ctx, tx, notify.SendEmailArgs{To: user.Email, Subject: subject, Body: body})
}
