package models

import (
	"time"

	"github.com/google/uuid"
)

// Order status enum. Terminal states are completed and cancelled; disputed
// orders are resolved by admin tooling.
const (
	OrderStatusPending    = "pending"
	OrderStatusInProgress = "in_progress"
	OrderStatusDelivered  = "delivered"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
	OrderStatusDisputed   = "disputed"
)

// Escrow status is the payment-hold state of an order, tracked independently
// of fulfillment status.
const (
	EscrowStatusHeld     = "held"
	EscrowStatusReleased = "released"
	EscrowStatusRefunded = "refunded"
	EscrowStatusDisputed = "disputed"
)

// Order type enum.
const (
	OrderTypeGig     = "gig"
	OrderTypeProject = "project"
)

// DefaultCurrency applies when checkout carries no currency.
const DefaultCurrency = "EUR"

type Order struct {
	ID                      uuid.UUID  `json:"id"`
	OrderNumber             string     `json:"order_number"`
	OrderType               string     `json:"order_type"`
	GigID                   *uuid.UUID `json:"gig_id,omitempty"`
	Title                   string     `json:"title"`
	AmountCents             int64      `json:"amount_cents"`
	PlatformFeeCents        int64      `json:"platform_fee_cents"`
	FreelancerEarningsCents int64      `json:"freelancer_earnings_cents"`
	Currency                string     `json:"currency"`
	Status                  string     `json:"status"`
	EscrowStatus            string     `json:"escrow_status"`
	DeliveryDeadline        *time.Time `json:"delivery_deadline,omitempty"`
	ClientID                uuid.UUID  `json:"client_id"`
	FreelancerID            uuid.UUID  `json:"freelancer_id"`
	RevisionCount           int        `json:"revision_count"`
	RevisionsUsed           int        `json:"revisions_used"`
	Requirements            *string    `json:"requirements,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
	CompletedAt             *time.Time `json:"completed_at,omitempty"`
}

// IsParticipant reports whether the given user is the client or freelancer
// on this order. Non-participants must never see order detail.
func (o *Order) IsParticipant(userID uuid.UUID) bool {
	return o.ClientID == userID || o.FreelancerID == userID
}
