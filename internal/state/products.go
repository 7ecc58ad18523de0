package state

import (
	"log"
	"sort"
	"sync"

	"github.com/ErlynFabian/WearShop-sub000/internal/domain/product"
	"github.com/ErlynFabian/WearShop-sub000/internal/gateway"
)

// ProductCache holds the full product collection in memory. It is filled
// once from the gateway, merged optimistically after successful writes,
// and kept live by replaying change-feed events through ApplyRemoteEvent.
type ProductCache struct {
	mu   sync.RWMutex
	byID map[string]product.Product
}

func NewProductCache() *ProductCache {
	return &ProductCache{byID: make(map[string]product.Product)}
}

// Replace swaps in a freshly fetched collection.
func (c *ProductCache) Replace(products []product.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID = make(map[string]product.Product, len(products))
	for _, p := range products {
		c.byID[p.ID] = p
	}
}

// Upsert merges one product after a successful round trip.
func (c *ProductCache) Upsert(p product.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[p.ID] = p
}

// Remove drops a product after a successful delete.
func (c *ProductCache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byID, id)
}

func (c *ProductCache) Get(id string) (product.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	return p, ok
}

// List returns the cached collection, newest first.
func (c *ProductCache) List() []product.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]product.Product, 0, len(c.byID))
	for _, p := range c.byID {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (c *ProductCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// ApplyRemoteEvent folds one change-feed event into the cache. Inserts of
// an already-present identity are ignored; the optimistic local merge has
// beaten the feed to it.
func (c *ProductCache) ApplyRemoteEvent(ev gateway.ChangeEvent) {
	if ev.Table != product.Table {
		return
	}

	switch ev.Kind {
	case gateway.ChangeInsert:
		if ev.New == nil {
			return
		}
		var p product.Product
		if err := ev.New.Decode(&p); err != nil {
			log.Printf("[ProductCache] Undecodable insert %s: %v", ev.New.ID, err)
			return
		}
		c.mu.Lock()
		if _, exists := c.byID[p.ID]; !exists {
			c.byID[p.ID] = p
		}
		c.mu.Unlock()

	case gateway.ChangeUpdate:
		if ev.New == nil {
			return
		}
		var p product.Product
		if err := ev.New.Decode(&p); err != nil {
			log.Printf("[ProductCache] Undecodable update %s: %v", ev.New.ID, err)
			return
		}
		c.mu.Lock()
		c.byID[p.ID] = p
		c.mu.Unlock()

	case gateway.ChangeDelete:
		id := ev.RecordID()
		if id == "" {
			return
		}
		c.mu.Lock()
		delete(c.byID, id)
		c.mu.Unlock()
	}
}
