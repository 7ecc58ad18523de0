package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ErlynFabian/WearShop-sub000/internal/domain/notification"
	"github.com/ErlynFabian/WearShop-sub000/internal/domain/product"
	"github.com/ErlynFabian/WearShop-sub000/internal/domain/sale"
	"github.com/ErlynFabian/WearShop-sub000/internal/email"
	"github.com/ErlynFabian/WearShop-sub000/internal/gateway"
)

// LowStockThreshold is the stock level at or below which a restock
// notification is raised.
const LowStockThreshold = 5

// Mailer sends sale confirmations; satisfied by email.Service.
type Mailer interface {
	SendSaleConfirmation(to string, s sale.Sale) error
}

var _ Mailer = (*email.Service)(nil)

// Handler consumes the change feed and turns selected mutations into
// admin notifications and customer email.
type Handler struct {
	mailer        Mailer
	notifications *notification.Service
}

func NewHandler(mailer Mailer, notifications *notification.Service) *Handler {
	return &Handler{mailer: mailer, notifications: notifications}
}

// HandleMessage processes one raw feed message.
func (h *Handler) HandleMessage(ctx context.Context, key, value []byte) error {
	var ev gateway.ChangeEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return err
	}
	return h.HandleEvent(ctx, ev)
}

// HandleEvent routes an already-decoded change event.
func (h *Handler) HandleEvent(ctx context.Context, ev gateway.ChangeEvent) error {
	switch {
	case ev.Table == sale.Table && ev.Kind == gateway.ChangeInsert:
		return h.handleSaleInsert(ctx, ev)
	case ev.Table == product.Table && ev.Kind == gateway.ChangeUpdate:
		return h.handleProductUpdate(ctx, ev)
	}
	return nil
}

func (h *Handler) handleSaleInsert(ctx context.Context, ev gateway.ChangeEvent) error {
	if ev.New == nil {
		return nil
	}
	var s sale.Sale
	if err := ev.New.Decode(&s); err != nil {
		log.Printf("[Notifier] Undecodable sale insert: %v", err)
		return err
	}
	if !s.Status.Active() {
		return nil
	}

	_, err := h.notifications.Create(ctx,
		"sale",
		"New sale recorded",
		fmt.Sprintf("%s x%d for %s (₱%.2f)", s.ProductName, s.Quantity, s.CustomerName, s.Total),
		"/admin/sales/"+s.ID,
	)
	if err != nil {
		log.Printf("[Notifier] Failed to create sale notification: %v", err)
	}

	if s.CustomerEmail != "" {
		if err := h.mailer.SendSaleConfirmation(s.CustomerEmail, s); err != nil {
			log.Printf("[Notifier] Failed to send confirmation to %s: %v", s.CustomerEmail, err)
			return err
		}
		log.Printf("[Notifier] Confirmation sent to %s for sale %s", s.CustomerEmail, s.ID)
	}
	return nil
}

// handleProductUpdate raises a restock notification when an update drops
// stock to the threshold or below. Only the downward crossing notifies;
// staying low does not repeat it.
func (h *Handler) handleProductUpdate(ctx context.Context, ev gateway.ChangeEvent) error {
	if ev.New == nil || ev.Old == nil {
		return nil
	}
	var after, before product.Product
	if err := ev.New.Decode(&after); err != nil {
		return err
	}
	if err := ev.Old.Decode(&before); err != nil {
		return err
	}

	if after.Stock > LowStockThreshold || before.Stock <= LowStockThreshold {
		return nil
	}

	_, err := h.notifications.Create(ctx,
		"low-stock",
		"Low stock",
		fmt.Sprintf("%s is down to %d in stock", after.Name, after.Stock),
		"/admin/products/"+after.ID,
	)
	if err != nil {
		log.Printf("[Notifier] Failed to create low-stock notification: %v", err)
	}
	return err
}
