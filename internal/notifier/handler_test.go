package notifier

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErlynFabian/WearShop-sub000/internal/domain/notification"
	"github.com/ErlynFabian/WearShop-sub000/internal/domain/product"
	"github.com/ErlynFabian/WearShop-sub000/internal/domain/sale"
	"github.com/ErlynFabian/WearShop-sub000/internal/gateway"
	"github.com/ErlynFabian/WearShop-sub000/internal/infrastructure/tablestore"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) SendSaleConfirmation(to string, s sale.Sale) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func newTestHandler() (*Handler, *fakeMailer, *notification.Service) {
	mailer := &fakeMailer{}
	notifications := notification.NewService(tablestore.NewMemory())
	return NewHandler(mailer, notifications), mailer, notifications
}

func record(t *testing.T, table string, v any) *gateway.Record {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return &gateway.Record{Table: table, Data: raw}
}

// ============================================
// Sale Insert Tests
// ============================================

func TestHandler_SaleInsert_CreatesNotificationAndEmail(t *testing.T) {
	handler, mailer, notifications := newTestHandler()
	ctx := context.Background()

	ev := gateway.ChangeEvent{
		Kind:  gateway.ChangeInsert,
		Table: sale.Table,
		New: record(t, sale.Table, sale.Sale{
			ID:            "s-1",
			ProductName:   "Oversized Tee",
			Quantity:      2,
			Total:         700,
			Status:        sale.StatusCompleted,
			CustomerName:  "Maria",
			CustomerEmail: "maria@example.com",
		}),
	}

	require.NoError(t, handler.HandleEvent(ctx, ev))

	list, err := notifications.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sale", list[0].Type)
	assert.Contains(t, list[0].Message, "Oversized Tee x2")
	assert.Equal(t, "/admin/sales/s-1", list[0].Link)

	assert.Equal(t, []string{"maria@example.com"}, mailer.sent)
}

func TestHandler_SaleInsert_NoEmailWithoutAddress(t *testing.T) {
	handler, mailer, notifications := newTestHandler()
	ctx := context.Background()

	ev := gateway.ChangeEvent{
		Kind:  gateway.ChangeInsert,
		Table: sale.Table,
		New:   record(t, sale.Table, sale.Sale{ID: "s-1", Status: sale.StatusPending}),
	}

	require.NoError(t, handler.HandleEvent(ctx, ev))

	list, err := notifications.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Empty(t, mailer.sent)
}

func TestHandler_SaleInsert_CancelledIsIgnored(t *testing.T) {
	handler, mailer, notifications := newTestHandler()
	ctx := context.Background()

	ev := gateway.ChangeEvent{
		Kind:  gateway.ChangeInsert,
		Table: sale.Table,
		New: record(t, sale.Table, sale.Sale{
			ID:            "s-1",
			Status:        sale.StatusCancelled,
			CustomerEmail: "maria@example.com",
		}),
	}

	require.NoError(t, handler.HandleEvent(ctx, ev))

	list, err := notifications.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, mailer.sent)
}

// ============================================
// Low Stock Tests
// ============================================

func lowStockEvent(t *testing.T, before, after int) gateway.ChangeEvent {
	t.Helper()
	return gateway.ChangeEvent{
		Kind:  gateway.ChangeUpdate,
		Table: product.Table,
		Old:   record(t, product.Table, product.Product{ID: "p-1", Name: "Tee", Stock: before}),
		New:   record(t, product.Table, product.Product{ID: "p-1", Name: "Tee", Stock: after}),
	}
}

func TestHandler_LowStock_NotifiesOnDownwardCrossing(t *testing.T) {
	handler, _, notifications := newTestHandler()
	ctx := context.Background()

	require.NoError(t, handler.HandleEvent(ctx, lowStockEvent(t, 8, 4)))

	list, err := notifications.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "low-stock", list[0].Type)
	assert.Contains(t, list[0].Message, "down to 4")
}

func TestHandler_LowStock_NoRepeatWhileLow(t *testing.T) {
	handler, _, notifications := newTestHandler()
	ctx := context.Background()

	// already at or below threshold before the update
	require.NoError(t, handler.HandleEvent(ctx, lowStockEvent(t, 5, 3)))
	require.NoError(t, handler.HandleEvent(ctx, lowStockEvent(t, 3, 1)))

	list, err := notifications.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestHandler_LowStock_AboveThresholdIsQuiet(t *testing.T) {
	handler, _, notifications := newTestHandler()
	ctx := context.Background()

	require.NoError(t, handler.HandleEvent(ctx, lowStockEvent(t, 20, 10)))

	list, err := notifications.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// ============================================
// Routing Tests
// ============================================

func TestHandler_IgnoresUnrelatedEvents(t *testing.T) {
	handler, mailer, notifications := newTestHandler()
	ctx := context.Background()

	events := []gateway.ChangeEvent{
		{Kind: gateway.ChangeDelete, Table: sale.Table},
		{Kind: gateway.ChangeInsert, Table: product.Table},
		{Kind: gateway.ChangeUpdate, Table: "users"},
	}
	for _, ev := range events {
		require.NoError(t, handler.HandleEvent(ctx, ev))
	}

	list, err := notifications.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, mailer.sent)
}

func TestHandler_HandleMessage_BadPayload(t *testing.T) {
	handler, _, _ := newTestHandler()

	err := handler.HandleMessage(context.Background(), nil, []byte("{broken"))

	assert.Error(t, err)
}

func TestHandler_HandleMessage_RoundTrip(t *testing.T) {
	handler, mailer, _ := newTestHandler()

	ev := gateway.ChangeEvent{
		Kind:  gateway.ChangeInsert,
		Table: sale.Table,
		New: record(t, sale.Table, sale.Sale{
			ID:            "s-9",
			Status:        sale.StatusCompleted,
			CustomerEmail: "buyer@example.com",
		}),
	}
	payload, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, handler.HandleMessage(context.Background(), []byte(sale.Table), payload))
	assert.Equal(t, []string{"buyer@example.com"}, mailer.sent)
}
