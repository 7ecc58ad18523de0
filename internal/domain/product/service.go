package product

import (
	"context"
	"errors"
	"time"

	"github.com/ErlynFabian/WearShop-sub000/internal/gateway"
	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidName     = errors.New("name is required")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidStock    = errors.New("stock must not be negative")
)

// Service provides product CRUD over the gateway. It carries no business
// rules beyond input validation; stock bookkeeping lives in the sales
// ledger.
type Service struct {
	gw gateway.Gateway
}

func NewService(gw gateway.Gateway) *Service {
	return &Service{gw: gw}
}

// CreateInput carries the fields an operator supplies for a new product.
type CreateInput struct {
	Name      string   `json:"name"`
	Cost      float64  `json:"cost"`
	Price     float64  `json:"price"`
	SalePrice float64  `json:"sale_price"`
	OnSale    bool     `json:"on_sale"`
	Category  string   `json:"category"`
	Type      string   `json:"type"`
	Stock     int      `json:"stock"`
	Sizes     []string `json:"sizes"`
	Colors    []string `json:"colors"`
	Featured  bool     `json:"featured"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	if in.Name == "" {
		return nil, ErrInvalidName
	}
	if in.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	if in.Stock < 0 {
		return nil, ErrInvalidStock
	}

	p := Product{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Cost:      in.Cost,
		Price:     in.Price,
		SalePrice: in.SalePrice,
		OnSale:    in.OnSale,
		Category:  in.Category,
		Type:      in.Type,
		Stock:     in.Stock,
		Sizes:     in.Sizes,
		Colors:    in.Colors,
		Featured:  in.Featured,
		CreatedAt: time.Now(),
	}

	if _, err := s.gw.Insert(ctx, Table, p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	rec, err := s.gw.Get(ctx, Table, id)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	var p Product
	if err := rec.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns the full catalog, newest first.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	recs, err := s.gw.Select(ctx, Table, gateway.Query{OrderBy: "created_at", Descending: true})
	if err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(recs))
	for _, rec := range recs {
		var p Product
		if err := rec.Decode(&p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// Featured returns the featured subset of the catalog.
func (s *Service) Featured(ctx context.Context) ([]Product, error) {
	recs, err := s.gw.Select(ctx, Table, gateway.Where("featured", gateway.OpEq, true))
	if err != nil {
		return nil, err
	}

	products := make([]Product, 0, len(recs))
	for _, rec := range recs {
		var p Product
		if err := rec.Decode(&p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// Update applies a partial patch to a product and returns the new state.
func (s *Service) Update(ctx context.Context, id string, patch map[string]any) (*Product, error) {
	if name, ok := patch["name"].(string); ok && name == "" {
		return nil, ErrInvalidName
	}

	rec, err := s.gw.Update(ctx, Table, id, patch)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	var p Product
	if err := rec.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.gw.Delete(ctx, Table, id)
	if gateway.IsNotFound(err) {
		return ErrProductNotFound
	}
	return err
}
