package share

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErlynFabian/WearShop-sub000/internal/domain/product"
)

func TestWhatsAppLink(t *testing.T) {
	p := product.Product{Name: "Oversized Tee", Price: 350}

	link := WhatsAppLink("+63 917 123 4567", p, "", "")

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "wa.me", parsed.Host)
	assert.Equal(t, "/639171234567", parsed.Path)
	assert.Equal(t, "Hi! I'm interested in Oversized Tee (₱350.00). Is it available?",
		parsed.Query().Get("text"))
}

func TestWhatsAppLink_WithVariant(t *testing.T) {
	p := product.Product{Name: "Hoodie", Price: 1200, SalePrice: 900, OnSale: true}

	link := WhatsAppLink("09171234567", p, "L", "black")

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	text := parsed.Query().Get("text")
	assert.Contains(t, text, "₱900.00") // effective price, not list price
	assert.Contains(t, text, "Size: L.")
	assert.Contains(t, text, "Color: black.")
}

func TestProductPermalink(t *testing.T) {
	assert.Equal(t, "https://wearshop.ph/products/p-1",
		ProductPermalink("https://wearshop.ph", "p-1"))
	assert.Equal(t, "https://wearshop.ph/products/p-1",
		ProductPermalink("https://wearshop.ph/", "p-1"))
}
