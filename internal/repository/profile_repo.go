package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skilllinkup/backend/internal/models"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// Upsert writes the onboarding result. A repeated submit for the same user
// replaces the previous profile.
func (r *ProfileRepo) Upsert(ctx context.Context, p *models.Profile) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO profiles (id, user_id, role, country, city, website, timezone, headline, bio, skills, hourly_rate_cents, company_name, company_size, industry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (user_id) DO UPDATE SET
			role = EXCLUDED.role, country = EXCLUDED.country, city = EXCLUDED.city,
			website = EXCLUDED.website, timezone = EXCLUDED.timezone,
			headline = EXCLUDED.headline, bio = EXCLUDED.bio, skills = EXCLUDED.skills,
			hourly_rate_cents = EXCLUDED.hourly_rate_cents,
			company_name = EXCLUDED.company_name, company_size = EXCLUDED.company_size,
			industry = EXCLUDED.industry, updated_at = now()
		RETURNING created_at, updated_at
	`, p.ID, p.UserID, p.Role, p.Country, p.City, p.Website, p.Timezone, p.Headline, p.Bio, p.Skills, p.HourlyRateCents, p.CompanyName, p.CompanySize, p.Industry).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, role, country, city, website, timezone, headline, bio, skills, hourly_rate_cents, company_name, company_size, industry, created_at, updated_at
		FROM profiles WHERE user_id = $1
	`, userID).Scan(&p.ID, &p.UserID, &p.Role, &p.Country, &p.City, &p.Website, &p.Timezone, &p.Headline, &p.Bio, &p.Skills, &p.HourlyRateCents, &p.CompanyName, &p.CompanySize, &p.Industry, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
