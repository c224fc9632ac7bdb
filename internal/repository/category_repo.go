package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skilllinkup/backend/internal/models"
)

type CategoryRepo struct {
	pool *pgxpool.Pool
}

func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO categories (id, name, slug, parent_id, locale, sort_order, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, c.ID, c.Name, c.Slug, c.ParentID, c.Locale, c.SortOrder, c.Active).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *CategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, slug, parent_id, locale, sort_order, active, created_at, updated_at
		FROM categories WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.Locale, &c.SortOrder, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *models.Category) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE categories SET name = $2, slug = $3, parent_id = $4, locale = $5, sort_order = $6, active = $7, updated_at = now()
		WHERE id = $1
	`, c.ID, c.Name, c.Slug, c.ParentID, c.Locale, c.SortOrder, c.Active)
	return err
}

func (r *CategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM categories WHERE id = $1", id)
	return err
}

// ListByLocale returns the flat active category rows for one locale in their
// natural display order. The tree builder assembles these into a forest.
func (r *CategoryRepo) ListByLocale(ctx context.Context, locale string) ([]*models.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, slug, parent_id, locale, sort_order, active, created_at, updated_at
		FROM categories WHERE locale = $1 AND active = true
		ORDER BY sort_order, name
	`, locale)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.Locale, &c.SortOrder, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
