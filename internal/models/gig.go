package models

import (
	"time"

	"github.com/google/uuid"
)

// Gig status enum. Only active gigs are listed publicly and counted per
// category.
const (
	GigStatusDraft   = "draft"
	GigStatusActive  = "active"
	GigStatusPaused  = "paused"
	GigStatusRemoved = "removed"
)

type Gig struct {
	ID            uuid.UUID `json:"id"`
	FreelancerID  uuid.UUID `json:"freelancer_id"`
	CategoryID    uuid.UUID `json:"category_id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	PriceCents    int64     `json:"price_cents"`
	Currency      string    `json:"currency"`
	DeliveryDays  int       `json:"delivery_days"`
	RevisionLimit int       `json:"revision_limit"`
	Status        string    `json:"status"`
	Locale        string    `json:"locale"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
