package tablestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ErlynFabian/WearShop-sub000/internal/gateway"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const pgUndefinedTable = "42P01"

// Postgres stores records of all logical tables in one jsonb-backed
// relation and publishes every committed mutation to the change feed.
type Postgres struct {
	db        *sql.DB
	publisher gateway.Publisher
}

func NewPostgres(db *sql.DB, publisher gateway.Publisher) *Postgres {
	return &Postgres{db: db, publisher: publisher}
}

// ConnectPostgres opens and pings a PostgreSQL connection.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the records relation if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS records (
			id         TEXT NOT NULL,
			table_name TEXT NOT NULL,
			data       JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (table_name, id)
		)`)
	return err
}

func (p *Postgres) mapError(table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return gateway.NewError(gateway.CodeNotFound, table, "record not found")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case string(pqErr.Code) == pgUndefinedTable:
			return gateway.WrapError(gateway.CodeTableMissing, table, err)
		case pqErr.Code.Class() == "23": // integrity constraint violation
			return gateway.WrapError(gateway.CodeConflict, table, err)
		}
	}
	return gateway.WrapError(gateway.CodeUnavailable, table, err)
}

func (p *Postgres) publish(ctx context.Context, ev gateway.ChangeEvent) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, ev.Table, ev); err != nil {
		log.Printf("[Gateway] Failed to publish %s on %s: %v", ev.Kind, ev.Table, err)
	}
}

func (p *Postgres) Insert(ctx context.Context, table string, data any) (*gateway.Record, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, gateway.WrapError(gateway.CodeBadRequest, table, err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, gateway.WrapError(gateway.CodeBadRequest, table, err)
	}
	id, _ := fields["id"].(string)
	if id == "" {
		id = uuid.New().String()
		fields["id"] = id
		raw, _ = json.Marshal(fields)
	}

	now := time.Now()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO records (id, table_name, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)`,
		id, table, raw, now)
	if err != nil {
		return nil, p.mapError(table, err)
	}

	rec := gateway.Record{ID: id, Table: table, Data: raw, CreatedAt: now, UpdatedAt: now}
	p.publish(ctx, gateway.ChangeEvent{
		ID: uuid.New().String(), Kind: gateway.ChangeInsert, Table: table, New: &rec, Timestamp: now,
	})
	return &rec, nil
}

func (p *Postgres) Get(ctx context.Context, table, id string) (*gateway.Record, error) {
	rec := gateway.Record{ID: id, Table: table}
	err := p.db.QueryRowContext(ctx,
		`SELECT data, created_at, updated_at FROM records WHERE table_name = $1 AND id = $2`,
		table, id,
	).Scan(&rec.Data, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, p.mapError(table, err)
	}
	return &rec, nil
}

func (p *Postgres) Select(ctx context.Context, table string, q gateway.Query) ([]gateway.Record, error) {
	query, args, err := buildSelect(table, q)
	if err != nil {
		return nil, gateway.WrapError(gateway.CodeBadRequest, table, err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, p.mapError(table, err)
	}
	defer rows.Close()

	var out []gateway.Record
	for rows.Next() {
		rec := gateway.Record{Table: table}
		if err := rows.Scan(&rec.ID, &rec.Data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, p.mapError(table, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// buildSelect compiles a gateway query into SQL over the jsonb payload.
// Filter values are passed as JSON so jsonb comparison stays type-aware.
func buildSelect(table string, q gateway.Query) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, data, created_at, updated_at FROM records WHERE table_name = $1`)
	args := []any{table}

	for _, f := range q.Filters {
		val, err := json.Marshal(f.Value)
		if err != nil {
			return "", nil, err
		}
		var op string
		switch f.Op {
		case gateway.OpEq:
			op = "="
		case gateway.OpGte:
			op = ">="
		case gateway.OpLte:
			op = "<="
		default:
			return "", nil, fmt.Errorf("unsupported filter op %q", f.Op)
		}
		args = append(args, string(val))
		fmt.Fprintf(&sb, " AND data->%s %s $%d::jsonb", pq.QuoteLiteral(f.Field), op, len(args))
	}

	if q.OrderBy != "" {
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY data->%s %s", pq.QuoteLiteral(q.OrderBy), dir)
	}
	return sb.String(), args, nil
}

func (p *Postgres) Update(ctx context.Context, table, id string, patch map[string]any) (*gateway.Record, error) {
	old, err := p.Get(ctx, table, id)
	if err != nil {
		return nil, err
	}

	var fields map[string]any
	if err := json.Unmarshal(old.Data, &fields); err != nil {
		return nil, gateway.WrapError(gateway.CodeBadRequest, table, err)
	}
	for k, v := range patch {
		fields[k] = v
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, gateway.WrapError(gateway.CodeBadRequest, table, err)
	}

	now := time.Now()
	res, err := p.db.ExecContext(ctx,
		`UPDATE records SET data = $1, updated_at = $2 WHERE table_name = $3 AND id = $4`,
		raw, now, table, id)
	if err != nil {
		return nil, p.mapError(table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, gateway.NewError(gateway.CodeNotFound, table, "record not found: "+id)
	}

	rec := gateway.Record{ID: id, Table: table, Data: raw, CreatedAt: old.CreatedAt, UpdatedAt: now}
	p.publish(ctx, gateway.ChangeEvent{
		ID: uuid.New().String(), Kind: gateway.ChangeUpdate, Table: table, New: &rec, Old: old, Timestamp: now,
	})
	return &rec, nil
}

func (p *Postgres) Delete(ctx context.Context, table, id string) error {
	old, err := p.Get(ctx, table, id)
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(ctx,
		`DELETE FROM records WHERE table_name = $1 AND id = $2`, table, id)
	if err != nil {
		return p.mapError(table, err)
	}

	p.publish(ctx, gateway.ChangeEvent{
		ID: uuid.New().String(), Kind: gateway.ChangeDelete, Table: table, Old: old, Timestamp: time.Now(),
	})
	return nil
}
