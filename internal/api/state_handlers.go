package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ErlynFabian/WearShop-sub000/internal/domain/product"
	"github.com/ErlynFabian/WearShop-sub000/internal/state"
)

// Cart handlers. The cart is shop-local state, the server-side stand-in
// for what a browser would keep in local storage.

// CartLine is one cart item resolved against the product cache. Product
// is nil when the referenced product is no longer in the catalog.
type CartLine struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Product   *product.Product `json:"product,omitempty"`
}

type cartResponse struct {
	Items         []CartLine `json:"items"`
	TotalQuantity int        `json:"total_quantity"`
}

func (h *Handlers) cartView() cartResponse {
	items := h.cart.Items()
	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		line := CartLine{ProductID: item.ProductID, Quantity: item.Quantity}
		if p, ok := h.cache.Get(item.ProductID); ok {
			line.Product = &p
		}
		lines = append(lines, line)
	}
	return cartResponse{Items: lines, TotalQuantity: h.cart.TotalQuantity()}
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cartView())
}

type cartAddRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var in cartAddRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if in.ProductID == "" {
		respondJSONError(w, "product_id is required", http.StatusBadRequest)
		return
	}
	if in.Quantity <= 0 {
		respondJSONError(w, "quantity must be positive", http.StatusBadRequest)
		return
	}

	h.cart.Add(in.ProductID, in.Quantity)
	respondJSON(w, http.StatusOK, h.cartView())
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetCartQuantity pins a cart line to the given quantity; zero removes
// the line.
func (h *Handlers) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	productID := extractPathParam(r.URL.Path, "/cart/")

	var in cartQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if in.Quantity < 0 {
		respondJSONError(w, "quantity must not be negative", http.StatusBadRequest)
		return
	}

	h.cart.SetQuantity(productID, in.Quantity)
	respondJSON(w, http.StatusOK, h.cartView())
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID := extractPathParam(r.URL.Path, "/cart/")
	h.cart.Remove(productID)
	respondJSON(w, http.StatusOK, h.cartView())
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear()
	respondJSON(w, http.StatusOK, h.cartView())
}

// Recently-viewed handlers. Product views are recorded by GetProduct;
// this endpoint replays them most recent first.

// RecentView is one recently-viewed entry resolved against the cache.
type RecentView struct {
	state.RecentEntry
	Product *product.Product `json:"product,omitempty"`
}

func (h *Handlers) GetRecentlyViewed(w http.ResponseWriter, r *http.Request) {
	entries := h.recent.List()
	out := make([]RecentView, 0, len(entries))
	for _, entry := range entries {
		view := RecentView{RecentEntry: entry}
		if p, ok := h.cache.Get(entry.ProductID); ok {
			view.Product = &p
		}
		out = append(out, view)
	}
	respondJSON(w, http.StatusOK, out)
}

// Toast handlers (back office). Mutating handlers push entries; the
// admin UI polls this list and may dismiss early.

func (h *Handlers) GetToasts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.toasts.List())
}

func (h *Handlers) DismissToast(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/toasts/"), "/dismiss")
	h.toasts.Dismiss(id)
	w.WriteHeader(http.StatusOK)
}
