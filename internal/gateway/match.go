package gateway

import (
	"encoding/json"
	"sort"
	"strings"
)

// MatchRecord reports whether the record payload satisfies every filter in
// the query. Unknown fields never match; numbers are compared as float64,
// everything else as strings.
func MatchRecord(r Record, q Query) bool {
	if len(q.Filters) == 0 {
		return true
	}

	var fields map[string]any
	if err := json.Unmarshal(r.Data, &fields); err != nil {
		return false
	}

	for _, f := range q.Filters {
		got, ok := fields[f.Field]
		if !ok {
			return false
		}
		if !compare(got, f.Op, f.Value) {
			return false
		}
	}
	return true
}

// SortRecords orders records in place by the query's OrderBy field. Records
// without the field sort last.
func SortRecords(records []Record, q Query) {
	if q.OrderBy == "" {
		return
	}

	keys := make([]any, len(records))
	for i, r := range records {
		var fields map[string]any
		if err := json.Unmarshal(r.Data, &fields); err == nil {
			keys[i] = fields[q.OrderBy]
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		less, ok := lessValue(keys[i], keys[j])
		if !ok {
			return keys[j] == nil && keys[i] != nil
		}
		if q.Descending {
			return !less && !equalValue(keys[i], keys[j])
		}
		return less
	})
}

func compare(got any, op Op, want any) bool {
	gn, gok := asFloat(got)
	wn, wok := asFloat(want)
	if gok && wok {
		switch op {
		case OpEq:
			return gn == wn
		case OpGte:
			return gn >= wn
		case OpLte:
			return gn <= wn
		}
		return false
	}

	gs := asString(got)
	ws := asString(want)
	switch op {
	case OpEq:
		return gs == ws
	case OpGte:
		return strings.Compare(gs, ws) >= 0
	case OpLte:
		return strings.Compare(gs, ws) <= 0
	}
	return false
}

func lessValue(a, b any) (less, ok bool) {
	an, aok := asFloat(a)
	bn, bok := asFloat(b)
	if aok && bok {
		return an < bn, true
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as < bs, true
	}
	return false, false
}

func equalValue(a, b any) bool {
	an, aok := asFloat(a)
	bn, bok := asFloat(b)
	if aok && bok {
		return an == bn
	}
	return asString(a) == asString(b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		if s {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}
