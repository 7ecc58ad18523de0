package share

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ErlynFabian/WearShop-sub000/internal/domain/product"
)

// WhatsAppLink builds a messaging deep link with a prefilled inquiry for
// the product at its effective price, optionally naming the selected size
// and color. Phone keeps digits only; the text is query-escaped.
func WhatsAppLink(phone string, p product.Product, size, color string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi! I'm interested in %s (₱%.2f).", p.Name, p.EffectivePrice())
	if size != "" {
		fmt.Fprintf(&sb, " Size: %s.", size)
	}
	if color != "" {
		fmt.Fprintf(&sb, " Color: %s.", color)
	}
	sb.WriteString(" Is it available?")

	return "https://wa.me/" + digitsOnly(phone) + "?text=" + url.QueryEscape(sb.String())
}

// ProductPermalink builds the shareable product URL.
func ProductPermalink(baseURL, productID string) string {
	return strings.TrimRight(baseURL, "/") + "/products/" + url.PathEscape(productID)
}

func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
