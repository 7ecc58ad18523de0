package notification

import (
	"context"
	"errors"
	"time"

	"github.com/ErlynFabian/WearShop-sub000/internal/gateway"
	"github.com/google/uuid"
)

// Table is the gateway table holding notifications. It is optional; an
// unprovisioned table reads as empty.
const Table = "notifications"

var ErrNotificationNotFound = errors.New("notification not found")

// Notification is an admin-facing event entry produced by backend triggers
// or the notifier.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	gw gateway.Gateway
}

func NewService(gw gateway.Gateway) *Service {
	return &Service{gw: gw}
}

// Create inserts a notification.
func (s *Service) Create(ctx context.Context, typ, title, message, link string) (*Notification, error) {
	n := Notification{
		ID:        uuid.New().String(),
		Type:      typ,
		Title:     title,
		Message:   message,
		Link:      link,
		CreatedAt: time.Now(),
	}
	if _, err := s.gw.Insert(ctx, Table, n); err != nil {
		return nil, err
	}
	return &n, nil
}

// List returns notifications newest first. A missing table is an empty
// list, not an error; the feature may simply be unconfigured.
func (s *Service) List(ctx context.Context) ([]Notification, error) {
	recs, err := s.gw.Select(ctx, Table, gateway.Query{OrderBy: "created_at", Descending: true})
	if err != nil {
		if gateway.IsTableMissing(err) {
			return []Notification{}, nil
		}
		return nil, err
	}

	out := make([]Notification, 0, len(recs))
	for _, rec := range recs {
		var n Notification
		if err := rec.Decode(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Unread returns unread notifications newest first, with the same
// missing-table behavior as List.
func (s *Service) Unread(ctx context.Context) ([]Notification, error) {
	q := gateway.Where("read", gateway.OpEq, false)
	q.OrderBy = "created_at"
	q.Descending = true

	recs, err := s.gw.Select(ctx, Table, q)
	if err != nil {
		if gateway.IsTableMissing(err) {
			return []Notification{}, nil
		}
		return nil, err
	}

	out := make([]Notification, 0, len(recs))
	for _, rec := range recs {
		var n Notification
		if err := rec.Decode(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	_, err := s.gw.Update(ctx, Table, id, map[string]any{"read": true})
	if gateway.IsNotFound(err) {
		return ErrNotificationNotFound
	}
	return err
}

// MarkAllRead marks every unread notification read.
func (s *Service) MarkAllRead(ctx context.Context) error {
	unread, err := s.Unread(ctx)
	if err != nil {
		return err
	}
	for _, n := range unread {
		if err := s.MarkRead(ctx, n.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.gw.Delete(ctx, Table, id)
	if gateway.IsNotFound(err) {
		return ErrNotificationNotFound
	}
	return err
}
