// Package catalog serves read-only product browsing, with an optional Redis
// read-through cache in front of the backend. Browsing never requires a
// session.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openshelf/storefront/internal/cache"
	"github.com/openshelf/storefront/internal/domain"
	"github.com/openshelf/storefront/internal/remote"
)

// API is the slice of the backend the catalog reads from.
type API interface {
	ListProducts(ctx context.Context, filter remote.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListCollections(ctx context.Context) ([]domain.Collection, error)
}

// Store answers catalog reads, consulting the cache first when one is
// configured. Cache failures are logged and fall through to the backend; a
// broken cache degrades latency, never correctness.
type Store struct {
	api    API
	cache  *cache.Catalog
	logger *slog.Logger
}

// New creates a catalog store. cache may be nil to disable caching.
func New(api API, c *cache.Catalog, logger *slog.Logger) *Store {
	return &Store{api: api, cache: c, logger: logger}
}

// Products lists products matching the filter.
func (s *Store) Products(ctx context.Context, filter remote.ProductFilter) ([]domain.Product, error) {
	key := productsKey(filter)

	var cached []domain.Product
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	products, err := s.api.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, products)
	return products, nil
}

// Product fetches one product by id.
func (s *Store) Product(ctx context.Context, id string) (domain.Product, error) {
	key := "product:" + id

	var cached domain.Product
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	product, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	s.store(ctx, key, product)
	return product, nil
}

// Categories lists all categories.
func (s *Store) Categories(ctx context.Context) ([]domain.Category, error) {
	var cached []domain.Category
	if s.lookup(ctx, "categories", &cached) {
		return cached, nil
	}

	categories, err := s.api.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, "categories", categories)
	return categories, nil
}

// Collections lists all collections.
func (s *Store) Collections(ctx context.Context) ([]domain.Collection, error) {
	var cached []domain.Collection
	if s.lookup(ctx, "collections", &cached) {
		return cached, nil
	}

	collections, err := s.api.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, "collections", collections)
	return collections, nil
}

func (s *Store) lookup(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}

	err := s.cache.Get(ctx, key, out)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("catalog cache read", slog.String("key", key), slog.String("error", err.Error()))
	}
	return false
}

func (s *Store) store(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.Warn("catalog cache write", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func productsKey(f remote.ProductFilter) string {
	featured, active := "", ""
	if f.Featured != nil {
		featured = fmt.Sprintf("%t", *f.Featured)
	}
	if f.Active != nil {
		active = fmt.Sprintf("%t", *f.Active)
	}
	return fmt.Sprintf("products:%s:%s:%s:%s:%s", f.Category, f.Subcategory, f.Collection, featured, active)
}
