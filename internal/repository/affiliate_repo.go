package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skilllinkup/backend/internal/models"
)

type AffiliateRepo struct {
	pool *pgxpool.Pool
}

func NewAffiliateRepo(pool *pgxpool.Pool) *AffiliateRepo {
	return &AffiliateRepo{pool: pool}
}

func (r *AffiliateRepo) CreateClick(ctx context.Context, c *models.AffiliateClick) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO affiliate_clicks (id, platform_slug, source, ref_url)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, c.ID, c.PlatformSlug, c.Source, c.RefURL).Scan(&c.CreatedAt)
}

// CountByPlatform is used by admin reporting.
func (r *AffiliateRepo) CountByPlatform(ctx context.Context, platformSlug string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM affiliate_clicks WHERE platform_slug = $1
	`, platformSlug).Scan(&n)
	return n, err
}
