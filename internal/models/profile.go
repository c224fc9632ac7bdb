package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the persisted result of a completed onboarding wizard. Exactly
// one per user; the role decides which field group is populated.
type Profile struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`

	// Shared fields.
	Country  string `json:"country"`
	City     string `json:"city"`
	Website  string `json:"website,omitempty"`
	Timezone string `json:"timezone,omitempty"`

	// Freelancer fields.
	Headline        string   `json:"headline,omitempty"`
	Bio             string   `json:"bio,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	HourlyRateCents int64    `json:"hourly_rate_cents,omitempty"`

	// Client fields.
	CompanyName string `json:"company_name,omitempty"`
	CompanySize string `json:"company_size,omitempty"`
	Industry    string `json:"industry,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
