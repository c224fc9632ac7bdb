package orders

import (
	"time"

	"github.com/skilllinkup/backend/internal/models"
)

// OrderView is the client-facing order detail record. Field names are
// camelCase (the shape the web frontend renders) and every field carries an
// explicit fallback, so the UI never receives an absent value.
type OrderView struct {
	OrderNumber        string  `json:"orderNumber"`
	OrderType          string  `json:"orderType"`
	Title              string  `json:"title"`
	Amount             int64   `json:"amount"`
	PlatformFee        int64   `json:"platformFee"`
	FreelancerEarnings int64   `json:"freelancerEarnings"`
	Currency           string  `json:"currency"`
	Status             string  `json:"status"`
	EscrowStatus       string  `json:"escrowStatus"`
	DeliveryDeadline   *string `json:"deliveryDeadline"`
	ClientName         string  `json:"clientName"`
	FreelancerName     string  `json:"freelancerName"`
	CreatedAt          string  `json:"createdAt"`
	CompletedAt        *string `json:"completedAt"`
	RevisionCount      int     `json:"revisionCount"`
	RevisionsUsed      int     `json:"revisionsUsed"`
	Requirements       *string `json:"requirements"`
}

// NewOrderView maps a persisted order to its view record. The fallback per
// field is fixed: empty strings for names and numbers zeroed, "gig"/"EUR"/
// "pending"/"held" for the enums, null for absent timestamps, RFC 3339 for
// present ones. Requirements stays null until the requirements feature is
// wired through checkout.
func NewOrderView(o *models.Order, clientName, freelancerName string) OrderView {
	v := OrderView{
		OrderNumber:        o.OrderNumber,
		OrderType:          fallback(o.OrderType, models.OrderTypeGig),
		Title:              o.Title,
		Amount:             o.AmountCents,
		PlatformFee:        o.PlatformFeeCents,
		FreelancerEarnings: o.FreelancerEarningsCents,
		Currency:           fallback(o.Currency, models.DefaultCurrency),
		Status:             fallback(o.Status, models.OrderStatusPending),
		EscrowStatus:       fallback(o.EscrowStatus, models.EscrowStatusHeld),
		DeliveryDeadline:   timestampOrNil(o.DeliveryDeadline),
		ClientName:         clientName,
		FreelancerName:     freelancerName,
		CompletedAt:        timestampOrNil(o.CompletedAt),
		RevisionCount:      o.RevisionCount,
		RevisionsUsed:      o.RevisionsUsed,
		Requirements:       nil,
	}
	if !o.CreatedAt.IsZero() {
		v.CreatedAt = o.CreatedAt.UTC().Format(time.RFC3339)
	}
	return v
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func timestampOrNil(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
