package sale

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ErlynFabian/WearShop-sub000/internal/domain/product"
	"github.com/ErlynFabian/WearShop-sub000/internal/gateway"
	"github.com/google/uuid"
)

var (
	ErrSaleNotFound    = errors.New("sale not found")
	ErrProductRequired = errors.New("product_id is required")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidStatus   = errors.New("unknown sale status")
)

// Service owns the sales ledger. Besides CRUD it maintains the one
// invariant of the system: a product's stock stays consistent with the set
// of sales that currently reserve it, and never drops below zero.
//
// The stock read-modify-write is not wrapped in a transaction; two
// near-simultaneous writes against the same product can lose an update.
// That matches the backend's behavior this ledger was built against.
type Service struct {
	gw gateway.Gateway
}

func NewService(gw gateway.Gateway) *Service {
	return &Service{gw: gw}
}

// CreateInput carries a new ledger entry. Price defaults to the product's
// effective price and Status to pending when unset.
type CreateInput struct {
	ProductID     string  `json:"product_id"`
	Quantity      int     `json:"quantity"`
	Status        Status  `json:"status"`
	Price         float64 `json:"price"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	CustomerEmail string  `json:"customer_email"`
	Notes         string  `json:"notes"`
}

// Create persists a sale and, when the sale is active, reserves its
// quantity by decrementing the product's stock (clamped at zero; an
// oversell is absorbed, not rejected).
func (s *Service) Create(ctx context.Context, in CreateInput) (*Sale, error) {
	if in.ProductID == "" {
		return nil, ErrProductRequired
	}
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if in.Status == "" {
		in.Status = StatusPending
	}
	if !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	rec, err := s.gw.Get(ctx, product.Table, in.ProductID)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil, product.ErrProductNotFound
		}
		return nil, err
	}
	var prod product.Product
	if err := rec.Decode(&prod); err != nil {
		return nil, err
	}

	price := in.Price
	if price <= 0 {
		price = prod.EffectivePrice()
	}

	sl := Sale{
		ID:            uuid.New().String(),
		ProductID:     prod.ID,
		ProductName:   prod.Name,
		Category:      prod.Category,
		Type:          prod.Type,
		Quantity:      in.Quantity,
		Price:         price,
		Cost:          prod.Cost,
		Total:         float64(in.Quantity) * price,
		Profit:        float64(in.Quantity) * (price - prod.Cost),
		Status:        in.Status,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		CustomerEmail: in.CustomerEmail,
		Notes:         in.Notes,
		CreatedAt:     time.Now(),
	}

	if _, err := s.gw.Insert(ctx, Table, sl); err != nil {
		return nil, err
	}

	if sl.Status.Active() {
		s.adjustStock(ctx, prod.ID, -sl.Quantity)
	}
	return &sl, nil
}

// UpdateInput is a partial sale edit; nil fields stay unchanged.
type UpdateInput struct {
	Quantity      *int    `json:"quantity,omitempty"`
	Status        *Status `json:"status,omitempty"`
	CustomerName  *string `json:"customer_name,omitempty"`
	CustomerPhone *string `json:"customer_phone,omitempty"`
	CustomerEmail *string `json:"customer_email,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// Update edits a sale and applies at most one stock adjustment derived
// from the status/quantity transition:
//
//	active -> cancelled      releases the old quantity
//	cancelled -> active      reserves the new quantity
//	active -> active         applies the quantity delta
//	cancelled -> cancelled   touches nothing
//
// The sale row is written first and its failure is returned; a failure of
// the subsequent stock write is only logged, never rolled back into the
// sale mutation.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Sale, error) {
	old, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	newQty := old.Quantity
	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		newQty = *in.Quantity
	}
	newStatus := old.Status
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		newStatus = *in.Status
	}

	patch := map[string]any{}
	if in.Quantity != nil {
		patch["quantity"] = newQty
		patch["total"] = float64(newQty) * old.Price
		patch["profit"] = float64(newQty) * (old.Price - old.Cost)
	}
	if in.Status != nil {
		patch["status"] = newStatus
	}
	if in.CustomerName != nil {
		patch["customer_name"] = *in.CustomerName
	}
	if in.CustomerPhone != nil {
		patch["customer_phone"] = *in.CustomerPhone
	}
	if in.CustomerEmail != nil {
		patch["customer_email"] = *in.CustomerEmail
	}
	if in.Notes != nil {
		patch["notes"] = *in.Notes
	}

	rec, err := s.gw.Update(ctx, Table, id, patch)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}

	adjustment := stockAdjustment(old.Status, newStatus, old.Quantity, newQty)
	if adjustment != 0 && old.ProductID != "" {
		s.adjustStock(ctx, old.ProductID, adjustment)
	}

	var updated Sale
	if err := rec.Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// stockAdjustment computes the single signed stock delta for a transition.
func stockAdjustment(oldStatus, newStatus Status, oldQty, newQty int) int {
	switch {
	case oldStatus.Active() && !newStatus.Active():
		return oldQty
	case !oldStatus.Active() && newStatus.Active():
		return -newQty
	case oldStatus.Active() && newStatus.Active():
		return oldQty - newQty
	}
	return 0
}

// Delete removes a sale. An active sale releases its full reserved
// quantity back to the product first; the delete goes through even when
// the product is gone or the release fails.
func (s *Service) Delete(ctx context.Context, id string) error {
	old, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if old.Status.Active() && old.ProductID != "" {
		s.adjustStock(ctx, old.ProductID, old.Quantity)
	}

	err = s.gw.Delete(ctx, Table, id)
	if gateway.IsNotFound(err) {
		return ErrSaleNotFound
	}
	return err
}

func (s *Service) Get(ctx context.Context, id string) (*Sale, error) {
	rec, err := s.gw.Get(ctx, Table, id)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}

	var sl Sale
	if err := rec.Decode(&sl); err != nil {
		return nil, err
	}
	return &sl, nil
}

// List returns all sales, newest first.
func (s *Service) List(ctx context.Context) ([]Sale, error) {
	return s.selectSales(ctx, gateway.Query{OrderBy: "created_at", Descending: true})
}

// Completed returns all completed sales, newest first.
func (s *Service) Completed(ctx context.Context) ([]Sale, error) {
	q := gateway.Where("status", gateway.OpEq, string(StatusCompleted))
	q.OrderBy = "created_at"
	q.Descending = true
	return s.selectSales(ctx, q)
}

func (s *Service) selectSales(ctx context.Context, q gateway.Query) ([]Sale, error) {
	recs, err := s.gw.Select(ctx, Table, q)
	if err != nil {
		return nil, err
	}

	sales := make([]Sale, 0, len(recs))
	for _, rec := range recs {
		var sl Sale
		if err := rec.Decode(&sl); err != nil {
			return nil, err
		}
		sales = append(sales, sl)
	}
	return sales, nil
}

// GetAvailableStock returns the product's current stock field. The field
// is already net of active reservations by construction of
// Create/Update/Delete, so no recomputation from the ledger happens here.
func (s *Service) GetAvailableStock(ctx context.Context, productID string) (int, error) {
	rec, err := s.gw.Get(ctx, product.Table, productID)
	if err != nil {
		if gateway.IsNotFound(err) {
			return 0, product.ErrProductNotFound
		}
		return 0, err
	}

	var prod product.Product
	if err := rec.Decode(&prod); err != nil {
		return 0, err
	}
	return prod.Stock, nil
}

// DetachProduct clears the product reference on every sale pointing at
// productID. Called after a product deletion so ledger entries outlive
// their product.
func (s *Service) DetachProduct(ctx context.Context, productID string) error {
	recs, err := s.gw.Select(ctx, Table, gateway.Where("product_id", gateway.OpEq, productID))
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if _, err := s.gw.Update(ctx, Table, rec.ID, map[string]any{"product_id": ""}); err != nil {
			return err
		}
	}
	return nil
}

// adjustStock reads the product's stock and writes it back shifted by
// delta, clamped at zero. Failures are logged and swallowed; the caller's
// sale mutation must not depend on the stock write.
func (s *Service) adjustStock(ctx context.Context, productID string, delta int) {
	rec, err := s.gw.Get(ctx, product.Table, productID)
	if err != nil {
		log.Printf("[Sales] Stock adjustment skipped, product %s unavailable: %v", productID, err)
		return
	}

	var prod product.Product
	if err := rec.Decode(&prod); err != nil {
		log.Printf("[Sales] Stock adjustment skipped, product %s undecodable: %v", productID, err)
		return
	}

	newStock := prod.Stock + delta
	if newStock < 0 {
		newStock = 0
	}

	if _, err := s.gw.Update(ctx, product.Table, productID, map[string]any{"stock": newStock}); err != nil {
		log.Printf("[Sales] Failed to write stock %d for product %s: %v", newStock, productID, err)
	}
}
