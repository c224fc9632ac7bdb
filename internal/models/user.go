package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. Admin accounts are created by ops tooling, never via signup.
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
	RoleAdmin      = "admin"
)

// DefaultLocale is used whenever a request carries no locale hint.
const DefaultLocale = "en"

// SupportedLocales are the locales content is partitioned by.
var SupportedLocales = []string{"en", "nl"}

func IsSupportedLocale(locale string) bool {
	for _, l := range SupportedLocales {
		if l == locale {
			return true
		}
	}
	return false
}

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	Locale       string    `json:"locale"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
