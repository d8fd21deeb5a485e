package remote

import (
	"context"
	"net/url"
	"strconv"

	"github.com/openshelf/storefront/internal/domain"
)

// ProductFilter narrows product listings. Zero values mean "no filter".
type ProductFilter struct {
	Category    string
	Subcategory string
	Collection  string
	Featured    *bool
	Active      *bool
}

func (f ProductFilter) query() url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Subcategory != "" {
		q.Set("subcategory", f.Subcategory)
	}
	if f.Collection != "" {
		q.Set("collection", f.Collection)
	}
	if f.Featured != nil {
		q.Set("featured", strconv.FormatBool(*f.Featured))
	}
	if f.Active != nil {
		q.Set("active", strconv.FormatBool(*f.Active))
	}
	return q
}

// ListProducts fetches the product catalog, optionally filtered.
func (c *Client) ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/api/v1/products", filter.query(), &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a single product by ID.
func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var product domain.Product
	if err := c.get(ctx, "/api/v1/products/"+url.PathEscape(id), nil, &product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// ListCategories fetches all categories.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.get(ctx, "/api/v1/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// ListCollections fetches all collections.
func (c *Client) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	var collections []domain.Collection
	if err := c.get(ctx, "/api/v1/collections", nil, &collections); err != nil {
		return nil, err
	}
	return collections, nil
}
