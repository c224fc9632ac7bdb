package models

import (
	"time"

	"github.com/google/uuid"
)

// PlatformReview is a user review of an external freelance platform
// (the comparison-site side of SkillLinkup). Moderated like comments.
type PlatformReview struct {
	ID           uuid.UUID `json:"id"`
	PlatformSlug string    `json:"platform_slug"`
	AuthorID     uuid.UUID `json:"author_id"`
	Rating       int       `json:"rating"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
