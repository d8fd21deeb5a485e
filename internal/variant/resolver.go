// Package variant derives selectable colors and sizes from a product's
// variant list. Everything here is a pure function of product data; no
// network, no state.
package variant

import "github.com/openshelf/storefront/internal/domain"

// Resolution describes what a product's variant list allows the shopper to
// pick. Colors keep declaration order with duplicates removed; SizesForColor
// maps each color to its sizes in declaration order. A product with zero
// variants yields HasVariants false and no picker at all, while a single
// variant still exposes a one-item picker so cart line identity stays
// uniform.
type Resolution struct {
	HasVariants   bool
	Colors        []string
	SizesForColor map[string][]string
	Default       domain.Selection
}

// Resolve computes the Resolution for a product. Deterministic: the same
// variant list always produces the same output.
func Resolve(product domain.Product) Resolution {
	if len(product.Variants) == 0 {
		return Resolution{}
	}

	res := Resolution{
		HasVariants:   true,
		SizesForColor: make(map[string][]string),
		Default: domain.Selection{
			Color: product.Variants[0].Color,
			Size:  product.Variants[0].Size,
		},
	}

	for _, v := range product.Variants {
		sizes, seen := res.SizesForColor[v.Color]
		if !seen {
			res.Colors = append(res.Colors, v.Color)
		}
		if !contains(sizes, v.Size) {
			res.SizesForColor[v.Color] = append(sizes, v.Size)
		}
	}
	return res
}

// SelectColor returns the selection after the shopper picks a color. The
// size always resets to the first size available for that color, even when
// the previous size would also fit the new color. Picking an unknown color
// returns the default selection.
func (r Resolution) SelectColor(color string) domain.Selection {
	sizes, ok := r.SizesForColor[color]
	if !ok || len(sizes) == 0 {
		return r.Default
	}
	return domain.Selection{Color: color, Size: sizes[0]}
}

// SelectSize returns the selection after the shopper picks a size for the
// current color. An unavailable size leaves the selection unchanged.
func (r Resolution) SelectSize(current domain.Selection, size string) domain.Selection {
	if contains(r.SizesForColor[current.Color], size) {
		current.Size = size
	}
	return current
}

// Normalize maps an arbitrary prior selection onto this product's variants:
// a zero selection or one whose color no longer exists falls back to the
// default, and an incompatible size resets to the first size for the color.
// Unlike SelectColor this is not a color pick, so a size that is still valid
// for its color stays as the shopper left it.
func (r Resolution) Normalize(current domain.Selection) domain.Selection {
	if !r.HasVariants {
		return domain.Selection{}
	}
	if current == (domain.Selection{}) {
		return r.Default
	}
	sizes, ok := r.SizesForColor[current.Color]
	if !ok || len(sizes) == 0 {
		return r.Default
	}
	if contains(sizes, current.Size) {
		return current
	}
	return domain.Selection{Color: current.Color, Size: sizes[0]}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
