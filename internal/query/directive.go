package query

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"devcamper/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25
	MaxLimit     = 100
)

// MaxPage keeps (page-1)*limit inside int32 for every allowed limit.
const MaxPage = math.MaxInt32 / MaxLimit

// Op is a comparison in a filter condition.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

var operators = map[string]Op{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
	"in":  OpIn,
}

// Control parameters never become filter conditions.
var reserved = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
}

// Condition is a leaf of the predicate tree.
type Condition struct {
	Field  string
	Column string
	Kind   Kind
	Op     Op
	Values []any
}

// Filter is the root of the predicate tree: all conditions must hold.
type Filter struct {
	And []Condition
}

func (f Filter) Empty() bool { return len(f.And) == 0 }

type SortKey struct {
	Field  string
	Column string
	Kind   Kind
	Desc   bool
}

// Directive is everything a list request asks of the store.
type Directive struct {
	Filter Filter
	Select []string
	Sort   []SortKey
	Page   int
	Limit  int
}

func (d Directive) Skip() int { return (d.Page - 1) * d.Limit }

// Parse builds a Directive from raw query parameters. Malformed page and
// limit values fall back to their defaults and oversized ones are capped; unknown fields, unsupported
// operators and values that do not fit the field are validation errors.
func Parse(values url.Values, schema Schema) (Directive, error) {
	d := Directive{
		Page:  min(positiveInt(values.Get("page"), DefaultPage), MaxPage),
		Limit: min(positiveInt(values.Get("limit"), DefaultLimit), MaxLimit),
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if !reserved[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		name, op := splitKey(key)
		f, ok := schema.Lookup(name)
		if !ok {
			return Directive{}, domain.ValidationError{Field: name, Msg: "unknown filter field"}
		}
		cond, err := newCondition(name, f, op, values[key])
		if err != nil {
			return Directive{}, err
		}
		d.Filter.And = append(d.Filter.And, cond)
	}

	d.Select = splitList(values.Get("select"))

	for _, token := range splitList(values.Get("sort")) {
		desc := strings.HasPrefix(token, "-")
		name := strings.TrimPrefix(token, "-")
		f, ok := schema.Lookup(name)
		if !ok {
			return Directive{}, domain.ValidationError{Field: name, Msg: "unknown sort field"}
		}
		d.Sort = append(d.Sort, SortKey{Field: name, Column: f.Column, Kind: f.Kind, Desc: desc})
	}

	return d, nil
}

// splitKey reads "field", "field[op]" or "a[b][op]". Bracket segments that
// are not operators extend the dotted field path.
func splitKey(key string) (string, Op) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, OpEq
	}
	path := []string{key[:open]}
	rest := key[open:]
	for rest != "" {
		if rest[0] != '[' {
			return key, OpEq
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return key, OpEq
		}
		path = append(path, rest[1:end])
		rest = rest[end+1:]
	}

	op := OpEq
	if last, ok := operators[path[len(path)-1]]; ok && len(path) > 1 {
		op = last
		path = path[:len(path)-1]
	}
	return strings.Join(path, "."), op
}

func newCondition(name string, f Field, op Op, raw []string) (Condition, error) {
	if op == OpIn {
		raw = splitAll(raw)
	}
	if len(raw) == 0 {
		return Condition{}, domain.ValidationError{Field: name, Msg: "missing value"}
	}
	if len(raw) > 1 {
		switch op {
		case OpEq:
			op = OpIn
		case OpIn:
		default:
			return Condition{}, domain.ValidationError{Field: name, Msg: fmt.Sprintf("%s expects a single value", op)}
		}
	}
	if op != OpEq && op != OpIn && (f.Kind == KindList || f.Kind == KindBool) {
		return Condition{}, domain.ValidationError{Field: name, Msg: fmt.Sprintf("operator %s is not supported", op)}
	}

	cond := Condition{Field: name, Column: f.Column, Kind: f.Kind, Op: op}
	for _, s := range raw {
		v, err := coerce(f.Kind, s)
		if err != nil {
			return Condition{}, domain.ValidationError{Field: name, Msg: fmt.Sprintf("invalid value %q", s), Err: err}
		}
		cond.Values = append(cond.Values, v)
	}
	return cond, nil
}

func coerce(kind Kind, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch kind {
	case KindNumber:
		return strconv.ParseFloat(s, 64)
	case KindID:
		id, err := strconv.ParseInt(s, 10, 64)
		if err == nil && id <= 0 {
			err = fmt.Errorf("id must be positive")
		}
		return id, err
	case KindBool:
		return strconv.ParseBool(s)
	case KindTime:
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", s)
	default:
		return s, nil
	}
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitAll(raw []string) []string {
	var out []string
	for _, s := range raw {
		out = append(out, splitList(s)...)
	}
	return out
}
