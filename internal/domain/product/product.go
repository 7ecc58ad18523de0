package product

import "time"

// Table is the gateway table holding products.
const Table = "products"

// Product is a catalog item. Stock is kept net of active sale reservations
// by the sales ledger; it never goes negative.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cost      float64   `json:"cost"`
	Price     float64   `json:"price"`
	SalePrice float64   `json:"sale_price,omitempty"`
	OnSale    bool      `json:"on_sale"`
	Category  string    `json:"category"`
	Type      string    `json:"type"`
	Stock     int       `json:"stock"`
	Sizes     []string  `json:"sizes,omitempty"`
	Colors    []string  `json:"colors,omitempty"`
	Featured  bool      `json:"featured"`
	CreatedAt time.Time `json:"created_at"`
}

// EffectivePrice is the sale price while on sale, otherwise the list price.
func (p Product) EffectivePrice() float64 {
	if p.OnSale && p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.Price
}
