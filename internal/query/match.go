package query

import (
	"encoding/json"
	"strings"
	"time"
)

// Record is the JSON-shaped form of a stored entity.
type Record map[string]any

// ToRecord converts an entity to its JSON shape.
func ToRecord(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Lookup follows a dotted path through nested objects.
func (r Record) Lookup(path string) (any, bool) {
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Match evaluates the filter against a record.
func (d Directive) Match(r Record) bool {
	for _, c := range d.Filter.And {
		if !c.match(r) {
			return false
		}
	}
	return true
}

func (c Condition) match(r Record) bool {
	v, ok := r.Lookup(c.Field)
	if !ok || v == nil {
		return false
	}

	if c.Kind == KindList {
		items, _ := v.([]any)
		for _, item := range items {
			for _, want := range c.Values {
				if compare(KindString, item, want) == 0 {
					return true
				}
			}
		}
		return false
	}

	switch c.Op {
	case OpEq, OpIn:
		for _, want := range c.Values {
			if compare(c.Kind, v, want) == 0 {
				return true
			}
		}
		return false
	case OpGt:
		return compare(c.Kind, v, c.Values[0]) > 0
	case OpGte:
		return compare(c.Kind, v, c.Values[0]) >= 0
	case OpLt:
		return compare(c.Kind, v, c.Values[0]) < 0
	case OpLte:
		return compare(c.Kind, v, c.Values[0]) <= 0
	}
	return false
}

// Less orders two records by the directive's sort keys, then by id.
func (d Directive) Less(a, b Record) bool {
	for _, k := range d.Sort {
		av, _ := a.Lookup(k.Field)
		bv, _ := b.Lookup(k.Field)
		n := compare(k.Kind, av, bv)
		if n == 0 {
			continue
		}
		if k.Desc {
			return n > 0
		}
		return n < 0
	}
	av, _ := a.Lookup("id")
	bv, _ := b.Lookup("id")
	return compare(KindID, av, bv) < 0
}

// compare returns -1, 0 or 1. Missing values sort first.
func compare(kind Kind, a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch kind {
	case KindNumber, KindID:
		return cmpFloat(toFloat(a), toFloat(b))
	case KindBool:
		ab, _ := a.(bool)
		bb, _ := b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case KindTime:
		at, bt := toTime(a), toTime(b)
		switch {
		case at.Equal(bt):
			return 0
		case at.Before(bt):
			return -1
		default:
			return 1
		}
	default:
		// Case-insensitive, like the default utf8mb4 collation. Accents are
		// still significant here.
		return strings.Compare(strings.ToLower(toString(a)), strings.ToLower(toString(b)))
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, _ := time.Parse(time.RFC3339Nano, t)
		return parsed
	}
	return time.Time{}
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}
