package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/skilllinkup/backend/internal/models"
)

const (
	cacheTTL = 5 * time.Minute

	// staleTTL bounds how old the fallback copy may get when rebuilds keep
	// failing.
	staleTTL = 24 * time.Hour
)

// CategoryStore provides the flat category rows for one locale.
type CategoryStore interface {
	ListByLocale(ctx context.Context, locale string) ([]*models.Category, error)
}

// GigCounter counts active listings in one category for one locale.
type GigCounter interface {
	CountActiveByCategory(ctx context.Context, categoryID uuid.UUID, locale string) (int, error)
}

// TreeCache stores serialized category trees. Implemented by RedisCache; a
// nil TreeCache disables caching.
type TreeCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisCache backs TreeCache with Redis.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// Service builds the locale-scoped category forest with gig counts. Every
// successful build is cached twice per locale: a short-lived live copy and a
// long-lived stale copy, so a failed rebuild after the live entry expired can
// still serve the last known good tree.
type Service struct {
	categories CategoryStore
	gigs       GigCounter
	cache      TreeCache
	log        *slog.Logger
}

func NewService(categories CategoryStore, gigs GigCounter, cache TreeCache, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{categories: categories, gigs: gigs, cache: cache, log: log}
}

func cacheKey(locale string) string {
	return fmt.Sprintf("catalog:tree:%s", locale)
}

func staleKey(locale string) string {
	return fmt.Sprintf("catalog:tree:stale:%s", locale)
}

// Tree returns the category forest for a locale. Cache hits skip the
// database entirely; a count-query failure propagates so the handler can
// decide between a stale tree and an error.
func (s *Service) Tree(ctx context.Context, locale string) ([]*models.CategoryNode, error) {
	if cached := s.fromCache(ctx, cacheKey(locale)); cached != nil {
		return cached, nil
	}
	tree, err := s.build(ctx, locale)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, locale, tree)
	return tree, nil
}

// StaleTree returns the last successfully built tree for a locale, or nil.
// Serves as a fallback when a rebuild fails.
func (s *Service) StaleTree(ctx context.Context, locale string) []*models.CategoryNode {
	return s.fromCache(ctx, staleKey(locale))
}

// Invalidate drops the live cached tree for a locale. Called on category and
// gig writes. The stale copy stays until the next successful rebuild
// overwrites it; the fallback path may serve pre-write data during an outage.
func (s *Service) Invalidate(ctx context.Context, locale string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(locale)); err != nil {
		s.log.Warn("catalog cache invalidate failed", "locale", locale, "error", err)
	}
}

// Refresh rebuilds and caches the tree for every supported locale. Run
// periodically by the gig-count refresh job.
func (s *Service) Refresh(ctx context.Context) error {
	for _, locale := range models.SupportedLocales {
		tree, err := s.build(ctx, locale)
		if err != nil {
			return fmt.Errorf("refresh %s: %w", locale, err)
		}
		s.toCache(ctx, locale, tree)
	}
	return nil
}

func (s *Service) build(ctx context.Context, locale string) ([]*models.CategoryNode, error) {
	rows, err := s.categories.ListByLocale(ctx, locale)
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		n, err := s.gigs.CountActiveByCategory(ctx, row.ID, locale)
		if err != nil {
			return nil, fmt.Errorf("count gigs for category %s: %w", row.ID, err)
		}
		counts[row.ID] = n
	}
	return BuildForest(rows, counts), nil
}

func (s *Service) fromCache(ctx context.Context, key string) []*models.CategoryNode {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil
	}
	var tree []*models.CategoryNode
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil
	}
	return tree
}

func (s *Service) toCache(ctx context.Context, locale string, tree []*models.CategoryNode) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(locale), data, cacheTTL); err != nil {
		s.log.Warn("catalog cache set failed", "locale", locale, "error", err)
	}
	if err := s.cache.Set(ctx, staleKey(locale), data, staleTTL); err != nil {
		s.log.Warn("catalog stale cache set failed", "locale", locale, "error", err)
	}
}
