package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skilllinkup/backend/internal/models"
)

type GigRepo struct {
	pool *pgxpool.Pool
}

func NewGigRepo(pool *pgxpool.Pool) *GigRepo {
	return &GigRepo{pool: pool}
}

const gigColumns = `id, freelancer_id, category_id, title, slug, description, price_cents, currency, delivery_days, revision_limit, status, locale, created_at, updated_at`

func scanGig(row interface{ Scan(...any) error }) (*models.Gig, error) {
	var g models.Gig
	err := row.Scan(&g.ID, &g.FreelancerID, &g.CategoryID, &g.Title, &g.Slug, &g.Description, &g.PriceCents, &g.Currency, &g.DeliveryDays, &g.RevisionLimit, &g.Status, &g.Locale, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GigRepo) Create(ctx context.Context, g *models.Gig) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO gigs (id, freelancer_id, category_id, title, slug, description, price_cents, currency, delivery_days, revision_limit, status, locale)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`, g.ID, g.FreelancerID, g.CategoryID, g.Title, g.Slug, g.Description, g.PriceCents, g.Currency, g.DeliveryDays, g.RevisionLimit, g.Status, g.Locale).Scan(&g.CreatedAt, &g.UpdatedAt)
}

func (r *GigRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Gig, error) {
	return scanGig(r.pool.QueryRow(ctx, `SELECT `+gigColumns+` FROM gigs WHERE id = $1`, id))
}

func (r *GigRepo) GetBySlug(ctx context.Context, slug string) (*models.Gig, error) {
	return scanGig(r.pool.QueryRow(ctx, `SELECT `+gigColumns+` FROM gigs WHERE slug = $1`, slug))
}

func (r *GigRepo) Update(ctx context.Context, g *models.Gig) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE gigs SET category_id = $2, title = $3, slug = $4, description = $5, price_cents = $6, currency = $7, delivery_days = $8, revision_limit = $9, status = $10, locale = $11, updated_at = now()
		WHERE id = $1
	`, g.ID, g.CategoryID, g.Title, g.Slug, g.Description, g.PriceCents, g.Currency, g.DeliveryDays, g.RevisionLimit, g.Status, g.Locale)
	return err
}

// ListActive returns active gigs for a locale, optionally filtered by
// category slug.
func (r *GigRepo) ListActive(ctx context.Context, locale, categorySlug string) ([]*models.Gig, error) {
	query := `SELECT ` + prefixedGigColumns + ` FROM gigs g WHERE g.status = 'active' AND g.locale = $1`
	args := []any{locale}
	if categorySlug != "" {
		query += ` AND g.category_id = (SELECT id FROM categories WHERE slug = $2 AND locale = $1)`
		args = append(args, categorySlug)
	}
	query += ` ORDER BY g.created_at DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Gig
	for rows.Next() {
		g, err := scanGig(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, g)
	}
	return list, rows.Err()
}

const prefixedGigColumns = `g.id, g.freelancer_id, g.category_id, g.title, g.slug, g.description, g.price_cents, g.currency, g.delivery_days, g.revision_limit, g.status, g.locale, g.created_at, g.updated_at`

// CountActiveByCategory counts active gigs in one category for one locale.
// Feeds the category tree's gig_count.
func (r *GigRepo) CountActiveByCategory(ctx context.Context, categoryID uuid.UUID, locale string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM gigs WHERE category_id = $1 AND locale = $2 AND status = 'active'
	`, categoryID, locale).Scan(&n)
	return n, err
}
