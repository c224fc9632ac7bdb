package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is one row of the locale-scoped category forest. ParentID is a
// self-reference; nil means root. Categories never form cycles (enforced by
// admin tooling at write time).
type Category struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Locale    string     `json:"locale"`
	SortOrder int        `json:"sort_order"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CategoryNode is a category plus its directly nested children and the count
// of active gigs in the category for its locale. This is what the categories
// API serves.
type CategoryNode struct {
	Category
	GigCount int             `json:"gig_count"`
	Children []*CategoryNode `json:"children"`
}
