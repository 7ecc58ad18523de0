package message

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/ErlynFabian/WearShop-sub000/internal/gateway"
	"github.com/google/uuid"
)

// Table is the gateway table holding contact messages. Optional, like
// notifications.
const Table = "contact_messages"

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNameRequired    = errors.New("name is required")
	ErrBodyRequired    = errors.New("message body is required")
	ErrInvalidPhone    = errors.New("phone number is not a valid PH mobile number")
)

// phonePattern accepts Philippine mobile numbers: 09XXXXXXXXX or
// +639XXXXXXXXX.
var phonePattern = regexp.MustCompile(`^(\+639|09)\d{9}$`)

// ValidPhone reports whether raw is an acceptable mobile number. An empty
// phone is allowed; email may be the only contact channel.
func ValidPhone(raw string) bool {
	return raw == "" || phonePattern.MatchString(raw)
}

// Message is a storefront contact-form submission.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	gw gateway.Gateway
}

func NewService(gw gateway.Gateway) *Service {
	return &Service{gw: gw}
}

// SubmitInput is a contact-form payload.
type SubmitInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Submit validates and stores a contact message. Validation failures are
// returned before anything reaches the gateway.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Message, error) {
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.Body == "" {
		return nil, ErrBodyRequired
	}
	if !ValidPhone(in.Phone) {
		return nil, ErrInvalidPhone
	}

	m := Message{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Phone:     in.Phone,
		Email:     in.Email,
		Subject:   in.Subject,
		Body:      in.Body,
		CreatedAt: time.Now(),
	}
	if _, err := s.gw.Insert(ctx, Table, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns messages newest first; a missing table reads as empty.
func (s *Service) List(ctx context.Context) ([]Message, error) {
	recs, err := s.gw.Select(ctx, Table, gateway.Query{OrderBy: "created_at", Descending: true})
	if err != nil {
		if gateway.IsTableMissing(err) {
			return []Message{}, nil
		}
		return nil, err
	}

	out := make([]Message, 0, len(recs))
	for _, rec := range recs {
		var m Message
		if err := rec.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	_, err := s.gw.Update(ctx, Table, id, map[string]any{"read": true})
	if gateway.IsNotFound(err) {
		return ErrMessageNotFound
	}
	return err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.gw.Delete(ctx, Table, id)
	if gateway.IsNotFound(err) {
		return ErrMessageNotFound
	}
	return err
}
