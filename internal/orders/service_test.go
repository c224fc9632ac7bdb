package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skilllinkup/backend/internal/models"
	"github.com/skilllinkup/backend/internal/notify"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

// --- noopTx satisfies pgx.Tx for test use; only Commit/Rollback are called. ---

type noopTx struct{}

func (noopTx) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }
func (noopTx) Commit(context.Context) error          { return nil }
func (noopTx) Rollback(context.Context) error        { return nil }
func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Conn() *pgx.Conn { return nil }

// --- OrderStore mock ---

type mockOrderStore struct {
	orders     map[uuid.UUID]*models.Order
	nextNumber int
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{orders: make(map[uuid.UUID]*models.Order)}
}

func (m *mockOrderStore) CreateTx(_ context.Context, _ pgx.Tx, o *models.Order) error {
	o.CreatedAt = time.Now()
	m.orders[o.ID] = o
	return nil
}

func (m *mockOrderStore) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderStore) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*models.Order, error) {
	return m.GetByID(ctx, id)
}

func (m *mockOrderStore) ListByParticipant(_ context.Context, userID uuid.UUID) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range m.orders {
		if o.IsParticipant(userID) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderStore) UpdateStatusTx(_ context.Context, _ pgx.Tx, id uuid.UUID, status, escrowStatus string, completedAt *time.Time) error {
	o, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("not found")
	}
	o.Status = status
	o.EscrowStatus = escrowStatus
	if completedAt != nil {
		o.CompletedAt = completedAt
	}
	return nil
}

func (m *mockOrderStore) IncrementRevisionsTx(_ context.Context, _ pgx.Tx, id uuid.UUID) (bool, error) {
	o, ok := m.orders[id]
	if !ok {
		return false, fmt.Errorf("not found")
	}
	if o.RevisionsUsed >= o.RevisionCount {
		return false, nil
	}
	o.RevisionsUsed++
	return true, nil
}

func (m *mockOrderStore) NextOrderNumber(_ context.Context, _ pgx.Tx, now time.Time) (string, error) {
	m.nextNumber++
	return fmt.Sprintf("SL-%s-%04d", now.Format("20060102"), m.nextNumber), nil
}

func (m *mockOrderStore) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }

// --- GigStore mock ---

type mockGigStore struct {
	gigs map[uuid.UUID]*models.Gig
}

func (m *mockGigStore) GetByID(_ context.Context, id uuid.UUID) (*models.Gig, error) {
	g, ok := m.gigs[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return g, nil
}

// --- UserDirectory mock ---

type mockUsers struct {
	users map[uuid.UUID]*models.User
}

func (m *mockUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return u, nil
}

func (m *mockUsers) DisplayName(_ context.Context, id uuid.UUID) (string, error) {
	u, ok := m.users[id]
	if !ok {
		return "", nil
	}
	return u.DisplayName, nil
}

// --- ledger.Service mock: records calls ---

type mockLedger struct {
	heldOrderID     uuid.UUID
	heldAmount      int64
	releaseCalled   bool
	releaseEarnings int64
	releaseFee      int64
	refundCalled    bool
}

func (m *mockLedger) PlaceEscrowHold(_ context.Context, _ pgx.Tx, orderID, _ uuid.UUID, amountCents int64) error {
	m.heldOrderID = orderID
	m.heldAmount = amountCents
	return nil
}

func (m *mockLedger) ReleaseEscrow(_ context.Context, _ pgx.Tx, _, _ uuid.UUID, earningsCents, feeCents int64) error {
	m.releaseCalled = true
	m.releaseEarnings = earningsCents
	m.releaseFee = feeCents
	return nil
}

func (m *mockLedger) RefundEscrow(_ context.Context, _ pgx.Tx, _ uuid.UUID) error {
	m.refundCalled = true
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type fixture struct {
	svc    *Service
	store  *mockOrderStore
	gigs   *mockGigStore
	users  *mockUsers
	ledger *mockLedger
	emails []notify.SendEmailArgs

	clientID     uuid.UUID
	freelancerID uuid.UUID
	gigID        uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:        newMockOrderStore(),
		gigs:         &mockGigStore{gigs: make(map[uuid.UUID]*models.Gig)},
		users:        &mockUsers{users: make(map[uuid.UUID]*models.User)},
		ledger:       &mockLedger{},
		clientID:     uuid.New(),
		freelancerID: uuid.New(),
		gigID:        uuid.New(),
	}
	f.users.users[f.clientID] = &models.User{ID: f.clientID, Email: "client@example.com", DisplayName: "Anna"}
	f.users.users[f.freelancerID] = &models.User{ID: f.freelancerID, Email: "dev@example.com", DisplayName: "Bram"}
	f.gigs.gigs[f.gigID] = &models.Gig{
		ID:            f.gigID,
		FreelancerID:  f.freelancerID,
		Title:         "Logo design",
		PriceCents:    10000,
		Currency:      "EUR",
		DeliveryDays:  5,
		RevisionLimit: 2,
		Status:        models.GigStatusActive,
	}
	insertEmail := func(_ context.Context, _ pgx.Tx, args notify.SendEmailArgs) error {
		f.emails = append(f.emails, args)
		return nil
	}
	f.svc = NewService(f.store, f.gigs, f.users, f.ledger, 10, insertEmail)
	return f
}

func (f *fixture) seedOrder(status, escrowStatus string) *models.Order {
	o := &models.Order{
		ID:                      uuid.New(),
		OrderNumber:             "SL-20260801-0001",
		OrderType:               models.OrderTypeGig,
		Title:                   "Logo design",
		AmountCents:             10000,
		PlatformFeeCents:        1000,
		FreelancerEarningsCents: 9000,
		Currency:                "EUR",
		Status:                  status,
		EscrowStatus:            escrowStatus,
		ClientID:                f.clientID,
		FreelancerID:            f.freelancerID,
		RevisionCount:           2,
	}
	f.store.orders[o.ID] = o
	return o
}

// ---------------------------------------------------------------------------
// Checkout
// ---------------------------------------------------------------------------

func TestCheckout_CreatesOrderWithEscrowHold(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.Checkout(context.Background(), f.clientID, CheckoutInput{GigID: f.gigID})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if order.Status != models.OrderStatusPending {
		t.Errorf("status: expected pending, got %q", order.Status)
	}
	if order.EscrowStatus != models.EscrowStatusHeld {
		t.Errorf("escrow: expected held, got %q", order.EscrowStatus)
	}
	if order.AmountCents != 10000 || order.PlatformFeeCents != 1000 || order.FreelancerEarningsCents != 9000 {
		t.Errorf("split: got %d/%d/%d", order.AmountCents, order.PlatformFeeCents, order.FreelancerEarningsCents)
	}
	if order.PlatformFeeCents+order.FreelancerEarningsCents != order.AmountCents {
		t.Errorf("fee and earnings must sum to amount")
	}
	if f.ledger.heldOrderID != order.ID || f.ledger.heldAmount != 10000 {
		t.Errorf("escrow hold: got order %s amount %d", f.ledger.heldOrderID, f.ledger.heldAmount)
	}
	if order.DeliveryDeadline == nil {
		t.Error("expected a delivery deadline")
	}
	if len(f.emails) != 1 || f.emails[0].To != "client@example.com" {
		t.Errorf("expected one confirmation email to the client, got %v", f.emails)
	}
	if order.OrderNumber == "" {
		t.Error("expected an order number")
	}
}

func TestCheckout_OwnGigRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), f.freelancerID, CheckoutInput{GigID: f.gigID})
	if err != ErrOwnGig {
		t.Fatalf("expected ErrOwnGig, got %v", err)
	}
}

func TestCheckout_InactiveGigRejected(t *testing.T) {
	f := newFixture(t)
	f.gigs.gigs[f.gigID].Status = models.GigStatusPaused

	_, err := f.svc.Checkout(context.Background(), f.clientID, CheckoutInput{GigID: f.gigID})
	if err != ErrGigNotAvailable {
		t.Fatalf("expected ErrGigNotAvailable, got %v", err)
	}
}

func TestCheckout_UnknownGigRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), f.clientID, CheckoutInput{GigID: uuid.New()})
	if err != ErrGigNotAvailable {
		t.Fatalf("expected ErrGigNotAvailable, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Participant access
// ---------------------------------------------------------------------------

func TestGetForParticipant_NonParticipantCollapsesToNotFound(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(models.OrderStatusPending, models.EscrowStatusHeld)

	if _, err := f.svc.GetForParticipant(context.Background(), o.ID, f.clientID); err != nil {
		t.Fatalf("client should see the order: %v", err)
	}
	if _, err := f.svc.GetForParticipant(context.Background(), o.ID, uuid.New()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for outsider, got %v", err)
	}
	if _, err := f.svc.GetForParticipant(context.Background(), uuid.New(), f.clientID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing order, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Milestones
// ---------------------------------------------------------------------------

func TestDeliver_FreelancerOnly(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(models.OrderStatusInProgress, models.EscrowStatusHeld)

	if err := f.svc.Deliver(context.Background(), o.ID, f.clientID); err != ErrNotParticipant {
		t.Fatalf("client deliver: expected ErrNotParticipant, got %v", err)
	}
	if err := f.svc.Deliver(context.Background(), o.ID, f.freelancerID); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if got := f.store.orders[o.ID].Status; got != models.OrderStatusDelivered {
		t.Errorf("status: expected delivered, got %q", got)
	}
}

func TestDeliver_WrongState(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(models.OrderStatusPending, models.EscrowStatusHeld)

	if err := f.svc.Deliver(context.Background(), o.ID, f.freelancerID); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestAccept_ReleasesEscrowAndCompletes(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(models.OrderStatusDelivered, models.EscrowStatusHeld)

	if err := f.svc.Accept(context.Background(), o.ID, f.clientID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	stored := f.store.orders[o.ID]
	if stored.Status != models.OrderStatusCompleted {
		t.Errorf("status: expected completed, got %q", stored.Status)
	}
	if stored.EscrowStatus != models.EscrowStatusReleased {
		t.Errorf("escrow: expected released, got %q", stored.EscrowStatus)
	}
	if stored.CompletedAt == nil {
		t.Error("expected completedAt to be set")
	}
	if !f.ledger.releaseCalled {
		t.Fatal("expected ReleaseEscrow to be called")
	}
	if f.ledger.releaseEarnings != 9000 || f.ledger.releaseFee != 1000 {
		t.Errorf("release split: got %d/%d", f.ledger.releaseEarnings, f.ledger.releaseFee)
	}
	if len(f.emails) != 1 || f.emails[0].To != "dev@example.com" {
		t.Errorf("expected completion email to the freelancer, got %v", f.emails)
	}
}

func TestAccept_FreelancerCannotAcceptOwnDelivery(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(models.OrderStatusDelivered, models.EscrowStatusHeld)

	if err := f.svc.Accept(context.Background(), o.ID, f.freelancerID); err != ErrNotParticipant {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestCancel_RefundsEscrow(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(models.OrderStatusPending, models.EscrowStatusHeld)

	if err := f.svc.Cancel(context.Background(), o.ID, f.clientID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	stored := f.store.orders[o.ID]
	if stored.Status != models.OrderStatusCancelled || stored.EscrowStatus != models.EscrowStatusRefunded {
		t.Errorf("got %q/%q", stored.Status, stored.EscrowStatus)
	}
	if !f.ledger.refundCalled {
		t.Error("expected RefundEscrow to be called")
	}
}

func TestCancel_DeliveredOrderCannotBeCancelled(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(models.OrderStatusDelivered, models.EscrowStatusHeld)

	if err := f.svc.Cancel(context.Background(), o.ID, f.clientID); err != ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestRequestRevision_ConsumesRevisionAndReopens(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(models.OrderStatusDelivered, models.EscrowStatusHeld)

	if err := f.svc.RequestRevision(context.Background(), o.ID, f.clientID); err != nil {
		t.Fatalf("RequestRevision: %v", err)
	}
	stored := f.store.orders[o.ID]
	if stored.Status != models.OrderStatusInProgress {
		t.Errorf("status: expected in_progress, got %q", stored.Status)
	}
	if stored.RevisionsUsed != 1 {
		t.Errorf("revisionsUsed: expected 1, got %d", stored.RevisionsUsed)
	}
}

func TestRequestRevision_LimitExhausted(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(models.OrderStatusDelivered, models.EscrowStatusHeld)
	o.RevisionsUsed = o.RevisionCount

	if err := f.svc.RequestRevision(context.Background(), o.ID, f.clientID); err != ErrRevisionsExhausted {
		t.Fatalf("expected ErrRevisionsExhausted, got %v", err)
	}
	if got := f.store.orders[o.ID].Status; got != models.OrderStatusDelivered {
		t.Errorf("status must not change, got %q", got)
	}
}

// ---------------------------------------------------------------------------
// Payment reconciliation
// ---------------------------------------------------------------------------

func TestApplyPaymentEvent_SucceededMovesPendingToInProgress(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(models.OrderStatusPending, models.EscrowStatusHeld)

	ev := PaymentEvent{ID: "evt_1", Type: EventPaymentSucceeded, OrderID: o.ID}
	if err := f.svc.ApplyPaymentEvent(context.Background(), ev); err != nil {
		t.Fatalf("ApplyPaymentEvent: %v", err)
	}
	if got := f.store.orders[o.ID].Status; got != models.OrderStatusInProgress {
		t.Errorf("status: expected in_progress, got %q", got)
	}

	// Replay after the status already moved is a no-op.
	if err := f.svc.ApplyPaymentEvent(context.Background(), ev); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if got := f.store.orders[o.ID].Status; got != models.OrderStatusInProgress {
		t.Errorf("replay must not change status, got %q", got)
	}
}

func TestApplyPaymentEvent_FailedCancelsAndRefunds(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(models.OrderStatusPending, models.EscrowStatusHeld)

	ev := PaymentEvent{ID: "evt_2", Type: EventPaymentFailed, OrderID: o.ID}
	if err := f.svc.ApplyPaymentEvent(context.Background(), ev); err != nil {
		t.Fatalf("ApplyPaymentEvent: %v", err)
	}
	stored := f.store.orders[o.ID]
	if stored.Status != models.OrderStatusCancelled || stored.EscrowStatus != models.EscrowStatusRefunded {
		t.Errorf("got %q/%q", stored.Status, stored.EscrowStatus)
	}
	if !f.ledger.refundCalled {
		t.Error("expected RefundEscrow to be called")
	}
}

func TestApplyPaymentEvent_FailedAfterCompletionIsNoop(t *testing.T) {
	f := newFixture(t)
	o := f.seedOrder(models.OrderStatusCompleted, models.EscrowStatusReleased)

	ev := PaymentEvent{ID: "evt_3", Type: EventPaymentFailed, OrderID: o.ID}
	if err := f.svc.ApplyPaymentEvent(context.Background(), ev); err != nil {
		t.Fatalf("ApplyPaymentEvent: %v", err)
	}
	if got := f.store.orders[o.ID].Status; got != models.OrderStatusCompleted {
		t.Errorf("completed order must stay completed, got %q", got)
	}
	if f.ledger.refundCalled {
		t.Error("completed order must not be refunded")
	}
}

func TestApplyPaymentEvent_UnknownType(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ApplyPaymentEvent(context.Background(), PaymentEvent{ID: "evt_4", Type: "payment.exploded"})
	if err != ErrUnknownEventType {
		t.Fatalf("expected ErrUnknownEventType, got %v", err)
	}
}

func TestApplyPaymentEvent_MissingOrder(t *testing.T) {
	f := newFixture(t)

	ev := PaymentEvent{ID: "evt_5", Type: EventPaymentSucceeded, OrderID: uuid.New()}
	if err := f.svc.ApplyPaymentEvent(context.Background(), ev); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
