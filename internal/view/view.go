// Package view derives display models from commerce state. Nothing here
// holds state of its own: every view is computed fresh from its inputs, so a
// change to product, selection, cart or favorites is always reflected on the
// next compose call.
package view

import (
	"fmt"

	"github.com/openshelf/storefront/internal/domain"
	"github.com/openshelf/storefront/internal/variant"
)

// FavoriteChecker answers membership from the local favorites set.
type FavoriteChecker interface {
	IsFavorite(productID string) bool
}

// CartReader exposes the cart snapshot views need.
type CartReader interface {
	Snapshot() domain.Cart
}

// Price carries both the charged amount and, when on sale, the original
// price for strikethrough display.
type Price struct {
	Amount    int64  `json:"amount"`
	Display   string `json:"display"`
	OnSale    bool   `json:"on_sale"`
	Original  int64  `json:"original,omitempty"`
	Was       string `json:"was,omitempty"`
}

// ProductCard is the listing-page projection of a product.
type ProductCard struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url"`
	Price      Price  `json:"price"`
	IsFavorite bool   `json:"is_favorite"`
}

// ProductDetail is the detail-page projection: the card fields plus variant
// picking state and the shopper's relationship to the product.
type ProductDetail struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Description    string              `json:"description"`
	Images         []string            `json:"images"`
	CurrentImage   string              `json:"current_image"`
	Price          Price               `json:"price"`
	HasVariants    bool                `json:"has_variants"`
	Colors         []string            `json:"colors,omitempty"`
	SizesForColor  map[string][]string `json:"sizes_for_color,omitempty"`
	Selection      domain.Selection    `json:"selection"`
	IsFavorite     bool                `json:"is_favorite"`
	InCartQuantity int                 `json:"in_cart_quantity"`
}

// Composer builds views against a backend origin for image resolution.
type Composer struct {
	origin    string
	favorites FavoriteChecker
	cart      CartReader
}

func NewComposer(origin string, favorites FavoriteChecker, cart CartReader) *Composer {
	return &Composer{origin: origin, favorites: favorites, cart: cart}
}

// Card composes the listing projection for one product.
func (c *Composer) Card(p domain.Product) ProductCard {
	return ProductCard{
		ID:         p.ID,
		Name:       p.Name,
		ImageURL:   domain.ResolveImageURL(c.origin, p.MainImage()),
		Price:      c.price(p),
		IsFavorite: c.favorites.IsFavorite(p.ID),
	}
}

// Cards composes listing projections for a product list, preserving order.
func (c *Composer) Cards(products []domain.Product) []ProductCard {
	out := make([]ProductCard, len(products))
	for i, p := range products {
		out[i] = c.Card(p)
	}
	return out
}

// Detail composes the detail projection. The selection is normalized against
// the product's variants first, so a stale or zero selection never leaks
// into the view. When the selected variant carries a price override, that
// price is the one shown.
func (c *Composer) Detail(p domain.Product, sel domain.Selection) ProductDetail {
	res := variant.Resolve(p)
	sel = res.Normalize(sel)

	price := c.price(p)
	if v, ok := p.VariantFor(sel.Color, sel.Size); ok && v.Price != nil {
		price.Amount = *v.Price
		price.Display = FormatPrice(*v.Price)
	}

	images := c.imagesForColor(p, sel.Color)

	quantity := 0
	for _, line := range c.cart.Snapshot().Lines {
		if line.ProductID == p.ID {
			quantity += line.Quantity
		}
	}

	return ProductDetail{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Images:         images,
		CurrentImage:   c.currentImage(p, sel.Color),
		Price:          price,
		HasVariants:    res.HasVariants,
		Colors:         res.Colors,
		SizesForColor:  res.SizesForColor,
		Selection:      sel,
		IsFavorite:     c.favorites.IsFavorite(p.ID),
		InCartQuantity: quantity,
	}
}

// currentImage picks the main image tagged with the selected color, falling
// back to the product's first image when the color has no dedicated one.
func (c *Composer) currentImage(p domain.Product, color string) string {
	if color != "" {
		for _, img := range p.Images {
			if img.Color == color && img.IsMain {
				return domain.ResolveImageURL(c.origin, img.URL)
			}
		}
		for _, img := range p.Images {
			if img.Color == color {
				return domain.ResolveImageURL(c.origin, img.URL)
			}
		}
	}
	if len(p.Images) > 0 {
		return domain.ResolveImageURL(c.origin, p.Images[0].URL)
	}
	return ""
}

// imagesForColor filters the gallery to the selected color. When any image
// is missing a color tag the filter is unreliable, so the whole gallery is
// shown instead.
func (c *Composer) imagesForColor(p domain.Product, color string) []string {
	tagged := true
	for _, img := range p.Images {
		if img.Color == "" {
			tagged = false
			break
		}
	}

	var out []string
	for _, img := range p.Images {
		if tagged && color != "" && img.Color != color {
			continue
		}
		out = append(out, domain.ResolveImageURL(c.origin, img.URL))
	}
	return out
}

func (c *Composer) price(p domain.Product) Price {
	price := Price{Amount: p.BasePrice, Display: FormatPrice(p.BasePrice)}
	if p.OnSale && p.SalePrice > 0 {
		price.Amount = p.SalePrice
		price.Display = FormatPrice(p.SalePrice)
		price.OnSale = true
		price.Original = p.BasePrice
		price.Was = FormatPrice(p.BasePrice)
	}
	return price
}

// FormatPrice renders an amount in cents as a dollar string.
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
