package models

import (
	"time"

	"github.com/google/uuid"
)

// AffiliateClick records one outbound click to a partner platform.
type AffiliateClick struct {
	ID           uuid.UUID `json:"id"`
	PlatformSlug string    `json:"platform_slug"`
	Source       string    `json:"source"`
	RefURL       string    `json:"ref_url"`
	CreatedAt    time.Time `json:"created_at"`
}
