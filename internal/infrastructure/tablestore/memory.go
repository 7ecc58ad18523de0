package tablestore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ErlynFabian/WearShop-sub000/internal/gateway"
	"github.com/google/uuid"
)

// Memory is an in-process gateway. It backs tests and the unconfigured
// fallback mode; change events are delivered synchronously to subscribers.
type Memory struct {
	mu          sync.RWMutex
	tables      map[string]map[string]gateway.Record
	provisioned map[string]bool
	subscribers []func(gateway.ChangeEvent)
}

func NewMemory() *Memory {
	return &Memory{tables: make(map[string]map[string]gateway.Record)}
}

// Provision restricts the store to the given tables. Any other table then
// fails with a table_missing error, like an unprovisioned backend.
func (m *Memory) Provision(tables ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.provisioned = make(map[string]bool, len(tables))
	for _, t := range tables {
		m.provisioned[t] = true
	}
}

// Notify registers a change-feed subscriber.
func (m *Memory) Notify(fn func(gateway.ChangeEvent)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

func (m *Memory) checkTable(table string) error {
	if m.provisioned != nil && !m.provisioned[table] {
		return gateway.NewError(gateway.CodeTableMissing, table, "table is not provisioned")
	}
	return nil
}

func (m *Memory) emit(ev gateway.ChangeEvent) {
	for _, fn := range m.subscribers {
		fn(ev)
	}
}

func (m *Memory) Insert(ctx context.Context, table string, data any) (*gateway.Record, error) {
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

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkTable(table); err != nil {
		return nil, err
	}
	if m.tables[table] == nil {
		m.tables[table] = make(map[string]gateway.Record)
	}
	if _, exists := m.tables[table][id]; exists {
		return nil, gateway.NewError(gateway.CodeConflict, table, "record already exists: "+id)
	}

	now := time.Now()
	rec := gateway.Record{ID: id, Table: table, Data: raw, CreatedAt: now, UpdatedAt: now}
	m.tables[table][id] = rec

	m.emit(gateway.ChangeEvent{
		ID:        uuid.New().String(),
		Kind:      gateway.ChangeInsert,
		Table:     table,
		New:       &rec,
		Timestamp: now,
	})
	return &rec, nil
}

func (m *Memory) Get(ctx context.Context, table, id string) (*gateway.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkTable(table); err != nil {
		return nil, err
	}
	rec, ok := m.tables[table][id]
	if !ok {
		return nil, gateway.NewError(gateway.CodeNotFound, table, "record not found: "+id)
	}
	return &rec, nil
}

func (m *Memory) Select(ctx context.Context, table string, q gateway.Query) ([]gateway.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.checkTable(table); err != nil {
		return nil, err
	}

	var out []gateway.Record
	for _, rec := range m.tables[table] {
		if gateway.MatchRecord(rec, q) {
			out = append(out, rec)
		}
	}
	gateway.SortRecords(out, q)
	return out, nil
}

func (m *Memory) Update(ctx context.Context, table, id string, patch map[string]any) (*gateway.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkTable(table); err != nil {
		return nil, err
	}
	old, ok := m.tables[table][id]
	if !ok {
		return nil, gateway.NewError(gateway.CodeNotFound, table, "record not found: "+id)
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

	updated := old
	updated.Data = raw
	updated.UpdatedAt = time.Now()
	m.tables[table][id] = updated

	m.emit(gateway.ChangeEvent{
		ID:        uuid.New().String(),
		Kind:      gateway.ChangeUpdate,
		Table:     table,
		New:       &updated,
		Old:       &old,
		Timestamp: updated.UpdatedAt,
	})
	return &updated, nil
}

func (m *Memory) Delete(ctx context.Context, table, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkTable(table); err != nil {
		return err
	}
	old, ok := m.tables[table][id]
	if !ok {
		return gateway.NewError(gateway.CodeNotFound, table, "record not found: "+id)
	}
	delete(m.tables[table], id)

	m.emit(gateway.ChangeEvent{
		ID:        uuid.New().String(),
		Kind:      gateway.ChangeDelete,
		Table:     table,
		Old:       &old,
		Timestamp: time.Now(),
	})
	return nil
}
