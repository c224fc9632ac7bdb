package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skilllinkup/backend/internal/models"
)

type ReviewRepo struct {
	pool *pgxpool.Pool
}

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

func (r *ReviewRepo) Create(ctx context.Context, rev *models.PlatformReview) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO platform_reviews (id, platform_slug, author_id, rating, title, body, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, rev.ID, rev.PlatformSlug, rev.AuthorID, rev.Rating, rev.Title, rev.Body, rev.Status).Scan(&rev.CreatedAt, &rev.UpdatedAt)
}

// ListApprovedByPlatform returns approved reviews for one platform, newest
// first.
func (r *ReviewRepo) ListApprovedByPlatform(ctx context.Context, platformSlug string) ([]*models.PlatformReview, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, platform_slug, author_id, rating, title, body, status, created_at, updated_at
		FROM platform_reviews WHERE platform_slug = $1 AND status = 'approved'
		ORDER BY created_at DESC
	`, platformSlug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.PlatformReview
	for rows.Next() {
		var rev models.PlatformReview
		if err := rows.Scan(&rev.ID, &rev.PlatformSlug, &rev.AuthorID, &rev.Rating, &rev.Title, &rev.Body, &rev.Status, &rev.CreatedAt, &rev.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &rev)
	}
	return list, rows.Err()
}
