// Package console binds collection stores, list views, editors and the
// notification gateway into the admin screens and public pages.
package console

import (
	"context"
	"sync"

	"github.com/eringen/buildsite/collection"
	"github.com/eringen/buildsite/content"
	"github.com/eringen/buildsite/listview"
)

// List is a collection store plus the criteria and sort state a screen
// applies to it.
type List[T content.Entity, D any] struct {
	Store *collection.Store[T, D]

	fields listview.Fields[T]
	keys   listview.Keys[T]

	mu       sync.Mutex
	criteria listview.Criteria
	sort     listview.SortState
}

func newList[T content.Entity, D any](store *collection.Store[T, D], fields listview.Fields[T], search []string, keys listview.Keys[T], sort listview.SortState) *List[T, D] {
	return &List[T, D]{
		Store:    store,
		fields:   fields,
		keys:     keys,
		criteria: listview.Criteria{Fields: search},
		sort:     sort,
	}
}

// Mount loads the collection.
func (l *List[T, D]) Mount(ctx context.Context) error {
	return l.Store.Load(ctx)
}

// Search sets the free-text query.
func (l *List[T, D]) Search(q string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.criteria.Query = q
}

// Filter requires field to equal value. "all" or "" clears it.
func (l *List[T, D]) Filter(field, value string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.criteria = l.criteria.Set(field, value)
}

// SortBy selects a sort column. Unknown columns are ignored.
func (l *List[T, D]) SortBy(name string) {
	k, ok := l.keys.Lookup(name)
	if !ok {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sort = l.sort.Select(name, k.Kind)
}

func (l *List[T, D]) Sort() listview.SortState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sort
}

func (l *List[T, D]) Criteria() listview.Criteria {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.criteria
}

// Visible derives the rendered rows from the current snapshot.
func (l *List[T, D]) Visible() []T {
	l.mu.Lock()
	c, s := l.criteria, l.sort
	l.mu.Unlock()
	return listview.View(l.Store.Snapshot(), c, l.fields, l.keys, s)
}

// Distinct returns the distinct values of field across the snapshot in first
// seen order, for building filter menus.
func (l *List[T, D]) Distinct(field string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range l.Store.Snapshot() {
		for _, v := range l.fields(it, field) {
			if v != "" && !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
