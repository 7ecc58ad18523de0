package gateway

import "time"

// ChangeKind tags a change-feed event.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeUpdate ChangeKind = "UPDATE"
	ChangeDelete ChangeKind = "DELETE"
)

// ChangeEvent is one committed mutation on a table, as seen on the change
// feed. New is nil for deletes, Old is nil for inserts.
type ChangeEvent struct {
	ID        string     `json:"id"`
	Kind      ChangeKind `json:"kind"`
	Table     string     `json:"table"`
	New       *Record    `json:"new,omitempty"`
	Old       *Record    `json:"old,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// RecordID returns the identity of the affected record regardless of kind.
func (e ChangeEvent) RecordID() string {
	if e.New != nil {
		return e.New.ID
	}
	if e.Old != nil {
		return e.Old.ID
	}
	return ""
}
