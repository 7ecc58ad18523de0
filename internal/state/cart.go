package state

import (
	"log"
	"sync"
)

const cartKey = "wearshop-cart"

// CartItem is one cart line. Only the product reference and quantity are
// persisted.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is the client-local shopping cart. It never touches the gateway;
// its lines survive restarts through the persistor.
type Cart struct {
	mu      sync.Mutex
	items   []CartItem
	persist *Persistor
}

// NewCart builds a cart, restoring any persisted lines. A nil persistor
// gives a purely in-memory cart.
func NewCart(persist *Persistor) *Cart {
	c := &Cart{persist: persist}
	if persist != nil {
		var saved struct {
			Items []CartItem `json:"items"`
		}
		if ok, err := persist.Load(cartKey, &saved); err != nil {
			log.Printf("[Cart] Failed to restore persisted cart: %v", err)
		} else if ok {
			c.items = saved.Items
		}
	}
	return c
}

func (c *Cart) save() {
	if c.persist == nil {
		return
	}
	payload := struct {
		Items []CartItem `json:"items"`
	}{Items: c.items}
	if err := c.persist.Save(cartKey, payload); err != nil {
		log.Printf("[Cart] Failed to persist cart: %v", err)
	}
}

// Add puts qty units of a product in the cart, merging into an existing
// line when one is already there.
func (c *Cart) Add(productID string, qty int) {
	if qty <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity += qty
			c.save()
			return
		}
	}
	c.items = append(c.items, CartItem{ProductID: productID, Quantity: qty})
	c.save()
}

// Remove drops a product's line entirely.
func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.save()
			return
		}
	}
}

// SetQuantity pins a line to qty; zero or less removes the line.
func (c *Cart) SetQuantity(productID string, qty int) {
	if qty <= 0 {
		c.Remove(productID)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items[i].Quantity = qty
			c.save()
			return
		}
	}
	c.items = append(c.items, CartItem{ProductID: productID, Quantity: qty})
	c.save()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.save()
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// TotalQuantity is the unit count across all lines.
func (c *Cart) TotalQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}
