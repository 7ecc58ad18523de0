package state

import (
	"context"
	"encoding/json"

	"github.com/ErlynFabian/WearShop-sub000/internal/gateway"
)

// FeedSync routes raw change-feed messages into the caches. It is the
// consumer-side counterpart of the gateway publishers.
type FeedSync struct {
	products *ProductCache
}

func NewFeedSync(products *ProductCache) *FeedSync {
	return &FeedSync{products: products}
}

// HandleMessage decodes one feed message and applies it. Unknown tables
// are ignored silently; the feed carries every table's mutations.
func (f *FeedSync) HandleMessage(ctx context.Context, key, value []byte) error {
	var ev gateway.ChangeEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return err
	}
	f.HandleEvent(ctx, ev)
	return nil
}

// HandleEvent applies an already-decoded change event.
func (f *FeedSync) HandleEvent(ctx context.Context, ev gateway.ChangeEvent) {
	f.products.ApplyRemoteEvent(ev)
}
