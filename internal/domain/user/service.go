package user

import (
	"context"
	"errors"
	"time"

	"github.com/ErlynFabian/WearShop-sub000/internal/auth"
	"github.com/ErlynFabian/WearShop-sub000/internal/gateway"
	"github.com/google/uuid"
)

// Table is the gateway table holding user accounts.
const Table = "users"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("email is required")
	ErrInvalidName        = errors.New("name is required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User is an account used for role gating; shoppers are "customer",
// back-office operators are "admin".
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Service struct {
	gw gateway.Gateway
}

func NewService(gw gateway.Gateway) *Service {
	return &Service{gw: gw}
}

// Register creates a customer account.
func (s *Service) Register(ctx context.Context, email, password, name string) (*User, error) {
	return s.RegisterWithRole(ctx, email, password, name, "customer")
}

// RegisterWithRole creates an account with an explicit role.
func (s *Service) RegisterWithRole(ctx context.Context, email, password, name, role string) (*User, error) {
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if name == "" {
		return nil, ErrInvalidName
	}
	if _, err := s.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if _, err := s.gw.Insert(ctx, Table, u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate is the sign-in-with-password operation. The same sentinel
// comes back for a missing account and a wrong password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	rec, err := s.gw.Get(ctx, Table, id)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var u User
	if err := rec.Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	recs, err := s.gw.Select(ctx, Table, gateway.Where("email", gateway.OpEq, email))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrUserNotFound
	}

	var u User
	if err := recs[0].Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}
