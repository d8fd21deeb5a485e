package domain

// FavoriteEntry is one favorited product with its denormalized display data.
// Identity is the product ID.
type FavoriteEntry struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Snapshot  ProductSnapshot `json:"snapshot"`
}
