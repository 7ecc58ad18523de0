package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ErlynFabian/WearShop-sub000/internal/domain/message"
	"github.com/ErlynFabian/WearShop-sub000/internal/domain/notification"
	"github.com/ErlynFabian/WearShop-sub000/internal/domain/product"
	"github.com/ErlynFabian/WearShop-sub000/internal/domain/sale"
	"github.com/ErlynFabian/WearShop-sub000/internal/share"
	"github.com/ErlynFabian/WearShop-sub000/internal/state"
)

// Config carries storefront settings the handlers need.
type Config struct {
	BaseURL   string
	ShopPhone string
}

// Handlers serves the storefront and back-office endpoints. Reads go
// through the product cache kept live by the change feed; writes go
// through the services and are merged back optimistically.
type Handlers struct {
	products      *product.Service
	sales         *sale.Service
	notifications *notification.Service
	messages      *message.Service
	cache         *state.ProductCache
	cart          *state.Cart
	recent        *state.RecentlyViewed
	toasts        *state.ToastQueue
	cfg           Config
}

func NewHandlers(
	products *product.Service,
	sales *sale.Service,
	notifications *notification.Service,
	messages *message.Service,
	cache *state.ProductCache,
	cart *state.Cart,
	recent *state.RecentlyViewed,
	toasts *state.ToastQueue,
	cfg Config,
) *Handlers {
	return &Handlers{
		products:      products,
		sales:         sales,
		notifications: notifications,
		messages:      messages,
		cache:         cache,
		cart:          cart,
		recent:        recent,
		toasts:        toasts,
		cfg:           cfg,
	}
}

// Product handlers

// GetProducts lists the catalog from the cache, applying the filter/sort
// descriptor from the query string.
func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	opts := filterOptionsFromQuery(r)
	respondJSON(w, http.StatusOK, product.Filter(h.cache.List(), opts))
}

func filterOptionsFromQuery(r *http.Request) product.FilterOptions {
	q := r.URL.Query()
	opts := product.FilterOptions{
		Sort: product.SortKey(q.Get("sort")),
	}
	if v := q.Get("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.MinPrice = f
		}
	}
	if v := q.Get("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			opts.MaxPrice = f
		}
	}
	if v := q.Get("sizes"); v != "" {
		opts.Sizes = strings.Split(v, ",")
	}
	if v := q.Get("colors"); v != "" {
		opts.Colors = strings.Split(v, ",")
	}
	return opts
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	if p, ok := h.cache.Get(id); ok {
		h.recent.Touch(id)
		respondJSON(w, http.StatusOK, p)
		return
	}

	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	h.cache.Upsert(*p)
	h.recent.Touch(id)
	respondJSON(w, http.StatusOK, p)
}

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in product.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.products.Create(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.cache.Upsert(*p)
	h.toasts.Push("Product created: "+p.Name, state.ToastSuccess)
	respondJSON(w, http.StatusCreated, p)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.products.Update(r.Context(), id, patch)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	h.cache.Upsert(*p)
	h.toasts.Push("Product updated: "+p.Name, state.ToastSuccess)
	respondJSON(w, http.StatusOK, p)
}

// DeleteProduct removes a product and detaches its ledger entries so they
// survive with a nulled reference.
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	if err := h.products.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	h.cache.Remove(id)

	if err := h.sales.DetachProduct(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	h.toasts.Push("Product deleted", state.ToastInfo)
	respondJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// GetProductShare returns the messaging deep link and permalink for a
// product with the selected size and color baked into the prefilled text.
func (h *Handlers) GetProductShare(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/products/"), "/share")

	p, ok := h.cache.Get(id)
	if !ok {
		got, err := h.products.Get(r.Context(), id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		p = *got
	}

	q := r.URL.Query()
	respondJSON(w, http.StatusOK, map[string]string{
		"whatsapp":  share.WhatsAppLink(h.cfg.ShopPhone, p, q.Get("size"), q.Get("color")),
		"permalink": share.ProductPermalink(h.cfg.BaseURL, p.ID),
	})
}

// GetAvailableStock reports the stock currently available for a product.
func (h *Handlers) GetAvailableStock(w http.ResponseWriter, r *http.Request) {
	productID := extractPathParam(r.URL.Path, "/stock/")

	stock, err := h.sales.GetAvailableStock(r.Context(), productID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"product_id": productID, "stock": stock})
}

// Notification handlers

func (h *Handlers) GetNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.notifications.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/notifications/"), "/read")
	if err := h.notifications.MarkRead(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkAllRead(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/notifications/")
	if err := h.notifications.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Contact message handlers

func (h *Handlers) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var in message.SubmitInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	m, err := h.messages.Submit(r.Context(), in)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, m)
}

func (h *Handlers) GetMessages(w http.ResponseWriter, r *http.Request) {
	list, err := h.messages.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handlers) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/messages/"), "/read")
	if err := h.messages.MarkRead(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/messages/")
	if err := h.messages.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Helpers

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}

// respondServiceError maps domain sentinels onto HTTP statuses. Anything
// unrecognized is a plain 500; the handler layer is the terminal error
// boundary.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, sale.ErrSaleNotFound),
		errors.Is(err, notification.ErrNotificationNotFound),
		errors.Is(err, message.ErrMessageNotFound):
		respondJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, product.ErrInvalidName),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidStock),
		errors.Is(err, sale.ErrProductRequired),
		errors.Is(err, sale.ErrInvalidQuantity),
		errors.Is(err, sale.ErrInvalidStatus),
		errors.Is(err, message.ErrNameRequired),
		errors.Is(err, message.ErrBodyRequired),
		errors.Is(err, message.ErrInvalidPhone):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
	}
}
