package query

import (
	sq "github.com/Masterminds/squirrel"
)

// Where renders the filter, or nil when there is nothing to filter on.
func (d Directive) Where() sq.Sqlizer {
	if d.Filter.Empty() {
		return nil
	}
	and := make(sq.And, 0, len(d.Filter.And))
	for _, c := range d.Filter.And {
		and = append(and, c.sqlizer())
	}
	return and
}

func (c Condition) sqlizer() sq.Sqlizer {
	if c.Kind == KindList {
		if len(c.Values) == 1 {
			return findInSet(c.Column, c.Values[0])
		}
		or := make(sq.Or, 0, len(c.Values))
		for _, v := range c.Values {
			or = append(or, findInSet(c.Column, v))
		}
		return or
	}

	switch c.Op {
	case OpGt:
		return sq.Gt{c.Column: c.Values[0]}
	case OpGte:
		return sq.GtOrEq{c.Column: c.Values[0]}
	case OpLt:
		return sq.Lt{c.Column: c.Values[0]}
	case OpLte:
		return sq.LtOrEq{c.Column: c.Values[0]}
	case OpIn:
		return sq.Eq{c.Column: c.Values}
	default:
		return sq.Eq{c.Column: c.Values[0]}
	}
}

func findInSet(column string, v any) sq.Sqlizer {
	return sq.Expr("FIND_IN_SET(?, "+column+") > 0", v)
}

// Apply narrows a SELECT to the directive's filter, order and page.
func (d Directive) Apply(b sq.SelectBuilder, schema Schema) sq.SelectBuilder {
	if w := d.Where(); w != nil {
		b = b.Where(w)
	}
	keyed := false
	for _, k := range d.Sort {
		dir := " ASC"
		if k.Desc {
			dir = " DESC"
		}
		b = b.OrderBy(k.Column + dir)
		keyed = keyed || k.Column == schema.keyColumn()
	}
	// the key breaks ties so pages never overlap
	if !keyed {
		b = b.OrderBy(schema.keyColumn() + " ASC")
	}
	return b.Limit(uint64(d.Limit)).Offset(uint64(d.Skip()))
}

// Count builds the total-matching query, ignoring the page window.
func (d Directive) Count(schema Schema) sq.SelectBuilder {
	b := sq.Select("COUNT(*)").From(schema.Table)
	if w := d.Where(); w != nil {
		b = b.Where(w)
	}
	return b
}
