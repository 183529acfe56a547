// Package listview derives the visible subset and order of a collection
// snapshot. Every function here is pure: inputs are never modified.
package listview

import (
	"slices"
	"strings"
)

// Fields returns the values of a named field of item. Multi-valued fields
// such as tags return one entry per value.
type Fields[T any] func(item T, field string) []string

// Criteria combines a free-text query with categorical equality filters.
// All parts must match. An empty or "all" value disables that part.
type Criteria struct {
	Query  string
	Fields []string          // fields searched by Query
	Equals map[string]string // field -> required value
}

// Set returns a copy of c with field required to equal value.
func (c Criteria) Set(field, value string) Criteria {
	eq := make(map[string]string, len(c.Equals)+1)
	for k, v := range c.Equals {
		eq[k] = v
	}
	eq[field] = value
	c.Equals = eq
	return c
}

func inactive(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}

// Filter returns the items matching c in their original order.
func Filter[T any](items []T, c Criteria, get Fields[T]) []T {
	query := strings.ToLower(strings.TrimSpace(c.Query))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if matches(it, query, c, get) {
			out = append(out, it)
		}
	}
	return out
}

func matches[T any](it T, query string, c Criteria, get Fields[T]) bool {
	for field, want := range c.Equals {
		if inactive(want) {
			continue
		}
		found := false
		for _, v := range get(it, field) {
			if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(want)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if query == "" {
		return true
	}
	for _, field := range c.Fields {
		for _, v := range get(it, field) {
			if strings.Contains(strings.ToLower(v), query) {
				return true
			}
		}
	}
	return false
}

// Direction is a sort order.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Kind determines the default direction of a sort key.
type Kind int

const (
	Text Kind = iota
	Number
	Date
)

// DefaultDirection is the direction used when a key is first selected:
// most recent first for dates, ascending otherwise.
func (k Kind) DefaultDirection() Direction {
	if k == Date {
		return Descending
	}
	return Ascending
}

// SortKey orders items by one attribute.
type SortKey[T any] struct {
	Name    string
	Kind    Kind
	Compare func(a, b T) int
}

// Keys is the set of sort keys offered for an entity.
type Keys[T any] []SortKey[T]

// Lookup finds the key called name.
func (ks Keys[T]) Lookup(name string) (SortKey[T], bool) {
	for _, k := range ks {
		if k.Name == name {
			return k, true
		}
	}
	return SortKey[T]{}, false
}

// Sort returns a copy of items ordered by key. Items that compare equal keep
// their original relative order in both directions.
func Sort[T any](items []T, key SortKey[T], dir Direction) []T {
	out := slices.Clone(items)
	if key.Compare == nil {
		return out
	}
	cmp := key.Compare
	if dir == Descending {
		cmp = func(a, b T) int { return key.Compare(b, a) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

// SortState is the currently selected key and direction of a list.
type SortState struct {
	Key string
	Dir Direction
}

// Select applies a click on a column: the same key flips direction, a new key
// starts at its default direction.
func (s SortState) Select(name string, kind Kind) SortState {
	if s.Key == name {
		if s.Dir == Ascending {
			return SortState{Key: name, Dir: Descending}
		}
		return SortState{Key: name, Dir: Ascending}
	}
	return SortState{Key: name, Dir: kind.DefaultDirection()}
}

// View filters then sorts items. An unknown sort key leaves the filtered
// order untouched.
func View[T any](items []T, c Criteria, get Fields[T], keys Keys[T], s SortState) []T {
	visible := Filter(items, c, get)
	if k, ok := keys.Lookup(s.Key); ok {
		return Sort(visible, k, s.Dir)
	}
	return visible
}
