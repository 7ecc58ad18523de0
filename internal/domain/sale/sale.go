package sale

import "time"

// Table is the gateway table holding sales.
const Table = "sales"

// Status is a sale lifecycle state. Pending and completed sales reserve
// product stock; cancelled sales reserve nothing.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether the sale reserves stock.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusCompleted
}

// Sale is one ledger entry. Product fields are snapshots taken at creation
// time so the entry stays meaningful after the product changes or is
// deleted; ProductID is cleared when the product goes away.
type Sale struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id,omitempty"`
	ProductName   string    `json:"product_name"`
	Category      string    `json:"category"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	Price         float64   `json:"price"`
	Cost          float64   `json:"cost"`
	Total         float64   `json:"total"`
	Profit        float64   `json:"profit"`
	Status        Status    `json:"status"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerEmail string    `json:"customer_email"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
