package domain

// ProductSnapshot is the denormalized product data captured on a cart line or
// favorite entry at creation/refresh time. Pricing read from a snapshot is
// stable even if the catalog changes later.
type ProductSnapshot struct {
	Name       string `json:"name"`
	ImageURL   string `json:"image_url,omitempty"`
	CategoryID string `json:"category_id,omitempty"`
	BasePrice  int64  `json:"base_price"`
	SalePrice  int64  `json:"sale_price,omitempty"`
	OnSale     bool   `json:"on_sale"`
}

// UnitPrice resolves the snapshot's effective price: sale price during an
// active sale, else base price.
func (s ProductSnapshot) UnitPrice() int64 {
	if s.OnSale {
		return s.SalePrice
	}
	return s.BasePrice
}

// CartLine is one (product, color, size) entry in the cart. LineID is the
// server-assigned identifier used for remote update/remove; local resolution
// always goes through the (ProductID, Color, Size) key.
type CartLine struct {
	LineID    string          `json:"line_id"`
	ProductID string          `json:"product_id"`
	Color     string          `json:"color"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	UnitPrice int64           `json:"unit_price"`
	Snapshot  ProductSnapshot `json:"snapshot"`
}

// Cart is the local mirror of the server cart, replaced wholesale on every
// reconciliation.
type Cart struct {
	Lines     []CartLine `json:"lines"`
	ItemCount int        `json:"item_count"`
}

// FindLine returns the index of the line matching the (productID, color,
// size) key, or -1. Duplicate keys resolve first-match.
func (c Cart) FindLine(productID, color, size string) int {
	for i := range c.Lines {
		l := c.Lines[i]
		if l.ProductID == productID && l.Color == color && l.Size == size {
			return i
		}
	}
	return -1
}

// Total sums unit price times quantity over all lines.
func (c Cart) Total() int64 {
	var total int64
	for _, l := range c.Lines {
		total += l.UnitPrice * int64(l.Quantity)
	}
	return total
}

// Order is a placed order as reported by the backend.
type Order struct {
	ID        string     `json:"id"`
	Lines     []CartLine `json:"lines"`
	Total     int64      `json:"total"`
	Status    string     `json:"status"`
	CreatedAt string     `json:"created_at"`
}
