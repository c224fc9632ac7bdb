package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skilllinkup/backend/internal/models"
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

const postColumns = `id, title, slug, excerpt, body, locale, status, author_id, published_at, created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Body, &p.Locale, &p.Status, &p.AuthorID, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepo) Create(ctx context.Context, p *models.Post) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO posts (id, title, slug, excerpt, body, locale, status, author_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, p.ID, p.Title, p.Slug, p.Excerpt, p.Body, p.Locale, p.Status, p.AuthorID, p.PublishedAt).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PostRepo) GetBySlug(ctx context.Context, slug, locale string) (*models.Post, error) {
	return scanPost(r.pool.QueryRow(ctx, `
		SELECT `+postColumns+` FROM posts WHERE slug = $1 AND locale = $2 AND status = 'published'
	`, slug, locale))
}

// ListPublished returns published posts for a locale, newest first.
func (r *PostRepo) ListPublished(ctx context.Context, locale string, limit, offset int) ([]*models.Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE locale = $1 AND status = 'published'
		ORDER BY published_at DESC
		LIMIT $2 OFFSET $3
	`, locale, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// --- comments ---

func (r *PostRepo) CreateComment(ctx context.Context, c *models.Comment) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO comments (id, post_id, author_id, body, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, c.ID, c.PostID, c.AuthorID, c.Body, c.Status).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *PostRepo) GetCommentByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var c models.Comment
	err := r.pool.QueryRow(ctx, `
		SELECT id, post_id, author_id, body, status, created_at, updated_at
		FROM comments WHERE id = $1
	`, id).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostRepo) UpdateComment(ctx context.Context, c *models.Comment) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE comments SET body = $2, status = $3, updated_at = now() WHERE id = $1
	`, c.ID, c.Body, c.Status)
	return err
}

func (r *PostRepo) ListApprovedComments(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, post_id, author_id, body, status, created_at, updated_at
		FROM comments WHERE post_id = $1 AND status = 'approved'
		ORDER BY created_at
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Body, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
