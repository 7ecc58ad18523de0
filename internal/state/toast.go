package state

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ToastKind tags the visual style of a toast.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
	ToastWarning ToastKind = "warning"
)

// Toast is one transient notification entry.
type Toast struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Kind      ToastKind `json:"kind"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

type toastEntry struct {
	toast Toast
	timer *time.Timer
}

// ToastQueue holds transient notifications. Entries auto-dismiss after a
// fixed duration; pushing a duplicate (message, kind) while its entry is
// still visible bumps a counter and restarts that entry's timer instead
// of stacking a new one.
type ToastQueue struct {
	mu       sync.Mutex
	duration time.Duration
	byKey    map[string]*toastEntry
}

func NewToastQueue(duration time.Duration) *ToastQueue {
	if duration <= 0 {
		duration = 4 * time.Second
	}
	return &ToastQueue{
		duration: duration,
		byKey:    make(map[string]*toastEntry),
	}
}

func toastKey(message string, kind ToastKind) string {
	return string(kind) + "|" + message
}

// Push enqueues a toast and returns its ID. Duplicates within the active
// window coalesce into the existing entry.
func (q *ToastQueue) Push(message string, kind ToastKind) string {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := toastKey(message, kind)
	if entry, ok := q.byKey[key]; ok {
		entry.toast.Count++
		entry.timer.Reset(q.duration)
		return entry.toast.ID
	}

	entry := &toastEntry{
		toast: Toast{
			ID:        uuid.New().String(),
			Message:   message,
			Kind:      kind,
			Count:     1,
			CreatedAt: time.Now(),
		},
	}
	entry.timer = time.AfterFunc(q.duration, func() {
		q.expire(key, entry)
	})
	q.byKey[key] = entry
	return entry.toast.ID
}

// expire removes an entry when its timer fires, unless it was already
// dismissed and replaced by a fresh entry under the same key.
func (q *ToastQueue) expire(key string, entry *toastEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if current, ok := q.byKey[key]; ok && current == entry {
		delete(q.byKey, key)
	}
}

// Dismiss removes a toast early and cancels its pending expiry.
func (q *ToastQueue) Dismiss(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for key, entry := range q.byKey {
		if entry.toast.ID == id {
			entry.timer.Stop()
			delete(q.byKey, key)
			return
		}
	}
}

// List snapshots the visible toasts, oldest first.
func (q *ToastQueue) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Toast, 0, len(q.byKey))
	for _, entry := range q.byKey {
		out = append(out, entry.toast)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
