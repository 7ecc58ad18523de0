package product

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey orders a filtered collection.
type SortKey string

const (
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
)

// FilterOptions describes a listing view. A zero MaxPrice means no upper
// bound; empty Sizes/Colors impose no constraint.
type FilterOptions struct {
	MinPrice float64
	MaxPrice float64
	Sizes    []string
	Colors   []string
	Sort     SortKey
}

// Filter returns the products matching opts, sorted by the sort key. The
// input slice is left untouched. Price bounds are inclusive and evaluated
// against the effective price; size and color constraints each require at
// least one overlap and are checked independently of each other.
func Filter(products []Product, opts FilterOptions) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if !matchPrice(p, opts) {
			continue
		}
		if !intersects(p.Sizes, opts.Sizes) {
			continue
		}
		if !intersects(p.Colors, opts.Colors) {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, opts.Sort)
	return out
}

func matchPrice(p Product, opts FilterOptions) bool {
	price := p.EffectivePrice()
	if price < opts.MinPrice {
		return false
	}
	if opts.MaxPrice > 0 && price > opts.MaxPrice {
		return false
	}
	return true
}

// intersects reports whether have shares at least one entry with want.
// An empty want always matches.
func intersects(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func sortProducts(products []Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice() < products[j].EffectivePrice()
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].EffectivePrice() > products[j].EffectivePrice()
		})
	case SortNameAsc:
		c := collate.New(language.English)
		sort.SliceStable(products, func(i, j int) bool {
			return c.CompareString(products[i].Name, products[j].Name) < 0
		})
	case SortNameDesc:
		c := collate.New(language.English)
		sort.SliceStable(products, func(i, j int) bool {
			return c.CompareString(products[i].Name, products[j].Name) > 0
		})
	}
}
