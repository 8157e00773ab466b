// Package query turns list-endpoint query strings into typed store
// directives: a predicate tree for filtering, a projection, an ordering and
// a page window. The same directive renders to SQL (squirrel) or evaluates
// against JSON-shaped records for the in-memory store.
package query

import "context"

// Kind drives value coercion and the comparisons allowed on a field.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindTime
	KindID
	// KindList is a set of strings stored as a comma separated column.
	KindList
)

// Field maps an API field name to its storage column.
type Field struct {
	Column string
	Kind   Kind
}

// Schema lists the fields of an entity that may be filtered and sorted on.
// Field names are the JSON names, dotted for nested objects
// ("location.state").
type Schema struct {
	Table  string
	Key    string
	Fields map[string]Field
}

func (s Schema) Lookup(name string) (Field, bool) {
	f, ok := s.Fields[name]
	return f, ok
}

func (s Schema) keyColumn() string {
	if s.Key == "" {
		return "id"
	}
	return s.Key
}

// Source is a list endpoint's backing collection.
type Source interface {
	Schema() Schema
	// Query returns one page of records matching d together with the number
	// of records matching d's filter across all pages. Relations named in
	// expand are resolved eagerly.
	Query(ctx context.Context, d Directive, expand []string) ([]any, int, error)
}
