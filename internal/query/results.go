package query

import "strings"

type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination links to neighbouring pages that actually exist.
type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// Envelope is the list response body.
type Envelope struct {
	Success    bool       `json:"success"`
	Count      int        `json:"count"`
	Pagination Pagination `json:"pagination"`
	Data       []any      `json:"data"`
}

// Paginate derives the neighbour links from the filtered total.
func Paginate(d Directive, total int) Pagination {
	var p Pagination
	if d.Skip()+d.Limit < total {
		p.Next = &PageRef{Page: d.Page + 1, Limit: d.Limit}
	}
	if d.Skip() > 0 {
		p.Prev = &PageRef{Page: d.Page - 1, Limit: d.Limit}
	}
	return p
}

// Project keeps only the selected fields of v, plus id and the names in
// keep. An empty selection returns the whole record.
func Project(v any, fields []string, keep ...string) (Record, error) {
	rec, err := ToRecord(v)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return rec, nil
	}

	out := Record{}
	for _, name := range append(append([]string{"id"}, fields...), keep...) {
		val, ok := rec.Lookup(name)
		if !ok {
			continue
		}
		setPath(out, name, val)
	}
	return out, nil
}

func setPath(r Record, path string, val any) {
	parts := strings.Split(path, ".")
	cur := map[string]any(r)
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = val
}
