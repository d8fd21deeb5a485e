package domain

// Product is the client-side projection of a catalog product. It is read-only
// from this process's perspective: the backend owns the catalog.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	BasePrice   int64     `json:"base_price"`
	SalePrice   int64     `json:"sale_price,omitempty"`
	OnSale      bool      `json:"on_sale"`
	Images      []Image   `json:"images"`
	Variants    []Variant `json:"variants"`
	CategoryID  string    `json:"category_id,omitempty"`
	Featured    bool      `json:"featured"`
	Active      bool      `json:"active"`
}

// Image is a product image. URL may be absolute or root-relative; see
// ResolveImageURL. Color is a free-text tag linking the image to a variant
// color, empty when the image is not color-specific.
type Image struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Color     string `json:"color,omitempty"`
	IsMain    bool   `json:"is_main"`
	SortOrder int    `json:"sort_order"`
}

// Variant is a purchasable (color, size) combination with its own stock
// count and an optional price override. (color, size) pairs are expected to
// be unique within a product; duplicates resolve first-match.
type Variant struct {
	ID    string `json:"id"`
	Color string `json:"color"`
	Size  string `json:"size"`
	Stock int    `json:"stock"`
	Price *int64 `json:"price,omitempty"`
}

// Selection is the shopper's in-progress variant choice for a product.
// Transient and client-only; never persisted.
type Selection struct {
	Color string `json:"color"`
	Size  string `json:"size"`
}

// Category is a catalog category reference.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// Collection is a curated product grouping.
type Collection struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// UnitPrice returns the price a cart line created from this product right now
// would carry: the sale price during an active sale, else the base price.
func (p Product) UnitPrice() int64 {
	if p.OnSale {
		return p.SalePrice
	}
	return p.BasePrice
}

// HasVariant reports whether the product declares the given (color, size)
// pair. Always false for a product with no variants.
func (p Product) HasVariant(color, size string) bool {
	_, ok := p.VariantFor(color, size)
	return ok
}

// VariantFor returns the variant declared for the given (color, size) pair.
func (p Product) VariantFor(color, size string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Color == color && v.Size == size {
			return v, true
		}
	}
	return Variant{}, false
}

// MainImage returns the product's main image URL, falling back to the first
// image in declaration order. Empty when the product has no images.
func (p Product) MainImage() string {
	for _, img := range p.Images {
		if img.IsMain {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}
