package state

import (
	"log"
	"sync"
	"time"
)

const (
	recentKey = "wearshop-recently-viewed"

	// RecentCapacity caps the recently-viewed ring.
	RecentCapacity = 8
)

// RecentEntry records one product view.
type RecentEntry struct {
	ProductID string    `json:"product_id"`
	ViewedAt  time.Time `json:"viewed_at"`
}

// RecentlyViewed is a fixed-capacity most-recent-first ring of viewed
// products. Re-viewing a product moves it to the front instead of adding
// a duplicate.
type RecentlyViewed struct {
	mu      sync.Mutex
	entries []RecentEntry
	persist *Persistor
}

func NewRecentlyViewed(persist *Persistor) *RecentlyViewed {
	r := &RecentlyViewed{persist: persist}
	if persist != nil {
		var saved []RecentEntry
		if ok, err := persist.Load(recentKey, &saved); err != nil {
			log.Printf("[Recent] Failed to restore persisted entries: %v", err)
		} else if ok {
			if len(saved) > RecentCapacity {
				saved = saved[:RecentCapacity]
			}
			r.entries = saved
		}
	}
	return r
}

func (r *RecentlyViewed) save() {
	if r.persist == nil {
		return
	}
	if err := r.persist.Save(recentKey, r.entries); err != nil {
		log.Printf("[Recent] Failed to persist entries: %v", err)
	}
}

// Touch records a view of productID now.
func (r *RecentlyViewed) Touch(productID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		if r.entries[i].ProductID == productID {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}

	entry := RecentEntry{ProductID: productID, ViewedAt: time.Now()}
	r.entries = append([]RecentEntry{entry}, r.entries...)
	if len(r.entries) > RecentCapacity {
		r.entries = r.entries[:RecentCapacity]
	}
	r.save()
}

// List returns the entries most recent first.
func (r *RecentlyViewed) List() []RecentEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecentEntry, len(r.entries))
	copy(out, r.entries)
	return out
}
