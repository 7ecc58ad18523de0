package gateway

import (
	"context"
	"encoding/json"
	"time"
)

// Record is a stored row in a named table. Data carries the full entity as
// JSON; ID duplicates the "id" field inside Data so records can be addressed
// without decoding them.
type Record struct {
	ID        string          `json:"id"`
	Table     string          `json:"table"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Decode unmarshals the record payload into v.
func (r Record) Decode(v any) error {
	return json.Unmarshal(r.Data, v)
}

// Op is a filter operator.
type Op string

const (
	OpEq  Op = "eq"
	OpGte Op = "gte"
	OpLte Op = "lte"
)

// Filter matches a single field in the record payload.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Query selects records from a table.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
}

// Where is a convenience constructor for a single-filter query.
func Where(field string, op Op, value any) Query {
	return Query{Filters: []Filter{{Field: field, Op: op, Value: value}}}
}

// Gateway is the table-record store contract. All durable entities live
// behind it; callers never see the storage engine directly.
type Gateway interface {
	Insert(ctx context.Context, table string, data any) (*Record, error)
	Get(ctx context.Context, table, id string) (*Record, error)
	Select(ctx context.Context, table string, q Query) ([]Record, error)
	Update(ctx context.Context, table, id string, patch map[string]any) (*Record, error)
	Delete(ctx context.Context, table, id string) error
}

// Publisher fans mutation events out to the change feed.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}
