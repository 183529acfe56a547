// Package collection holds the client-side snapshot of one entity collection
// and the CRUD operations that keep it in sync with the API.
package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/eringen/buildsite/client"
	"github.com/eringen/buildsite/content"
	"github.com/eringen/buildsite/notify"
)

// ErrUnsupported is returned for operations the Source does not provide.
var ErrUnsupported = errors.New("operation not supported by this collection")

// Strategy selects how the snapshot is re-synced after a mutation.
type Strategy int

const (
	// PatchLocal stores the entity returned by the server in place.
	PatchLocal Strategy = iota
	// Refetch reloads the whole collection after every mutation.
	Refetch
)

// Source is the remote side of a collection. Nil functions are unsupported.
type Source[T content.Entity, D any] struct {
	List   func(ctx context.Context) ([]T, error)
	Create func(ctx context.Context, draft D) (T, error)
	Update func(ctx context.Context, id string, draft D) (T, error)
	Delete func(ctx context.Context, id string) error
}

// Store owns one collection snapshot. Only its methods write the snapshot.
type Store[T content.Entity, D any] struct {
	name     string
	src      Source[T, D]
	strategy Strategy
	gw       notify.Gateway
	logger   *slog.Logger
	loads    singleflight.Group

	mu       sync.RWMutex
	items    []T
	err      error
	inflight int
	seq      uint64 // last issued fetch sequence
	barrier  uint64 // fetches with seq <= barrier are stale
	subs     map[int]func([]T)
	nextSub  int
}

// Option configures a Store.
type Option func(*options)

type options struct {
	strategy Strategy
	gw       notify.Gateway
	logger   *slog.Logger
}

// WithStrategy selects the re-sync strategy (default PatchLocal).
func WithStrategy(s Strategy) Option { return func(o *options) { o.strategy = s } }

// WithGateway announces load failures through gw.
func WithGateway(gw notify.Gateway) Option { return func(o *options) { o.gw = gw } }

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// New creates an empty Store named name (used in messages and logs).
func New[T content.Entity, D any](name string, src Source[T, D], opts ...Option) *Store[T, D] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T, D]{
		name:     name,
		src:      src,
		strategy: o.strategy,
		gw:       o.gw,
		logger:   o.logger.With("collection", name),
		subs:     make(map[int]func([]T)),
	}
}

// Snapshot returns a copy of the current collection.
func (s *Store[T, D]) Snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.items...)
}

// Get returns the entity with id from the snapshot.
func (s *Store[T, D]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.items, id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Loading reports whether a load is in flight.
func (s *Store[T, D]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Err returns the error of the last failed load, or nil after a success.
func (s *Store[T, D]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Subscribe registers fn to receive a copy of every new snapshot.
// The returned func unsubscribes.
func (s *Store[T, D]) Subscribe(fn func([]T)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Load replaces the snapshot with the server's collection. Loads that overlap
// share one request; a load started after a mutation resolved always issues a
// new request. On failure the previous snapshot is kept.
func (s *Store[T, D]) Load(ctx context.Context) error {
	if s.src.List == nil {
		return ErrUnsupported
	}
	s.mu.RLock()
	key := strconv.FormatUint(s.barrier, 10)
	s.mu.RUnlock()

	ch := s.loads.DoChan(key, func() (any, error) {
		return nil, s.fetch(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return classify("load "+s.name, ctx.Err())
	case res := <-ch:
		return res.Err
	}
}

func (s *Store[T, D]) fetch(ctx context.Context) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.inflight++
	s.mu.Unlock()

	items, err := s.src.List(ctx)

	s.mu.Lock()
	s.inflight--
	if err != nil {
		err = classify("load "+s.name, err)
		s.err = err
		s.mu.Unlock()
		s.logger.Warn("load failed", "err", err)
		if s.gw != nil {
			s.gw.Notify(notify.Message{Level: notify.Error, Text: fmt.Sprintf("Could not load %s. Please try again.", s.name)})
		}
		return err
	}
	s.err = nil
	if seq <= s.barrier {
		s.mu.Unlock()
		s.logger.Debug("discarding stale load", "seq", seq)
		return nil
	}
	s.barrier = seq
	s.items = dedupe(items)
	snap, subs := s.publishLocked()
	s.mu.Unlock()
	notifyAll(subs, snap)
	return nil
}

// Create sends draft and stores the canonical entity the server returns.
func (s *Store[T, D]) Create(ctx context.Context, draft D) (T, error) {
	if s.src.Create == nil {
		var zero T
		return zero, ErrUnsupported
	}
	created, err := s.src.Create(ctx, draft)
	if err != nil {
		var zero T
		return zero, classify("create "+s.name, err)
	}
	s.upsert(created)
	s.resync(ctx)
	return created, nil
}

// Update sends draft for id and replaces the local copy with the server's
// representation.
func (s *Store[T, D]) Update(ctx context.Context, id string, draft D) (T, error) {
	if s.src.Update == nil {
		var zero T
		return zero, ErrUnsupported
	}
	return s.Patch(ctx, id, func(ctx context.Context) (T, error) {
		return s.src.Update(ctx, id, draft)
	})
}

// Patch runs a single-entity mutation such as a status change and stores the
// entity it returns.
func (s *Store[T, D]) Patch(ctx context.Context, id string, fn func(ctx context.Context) (T, error)) (T, error) {
	updated, err := fn(ctx)
	if err != nil {
		err = classify("update "+s.name, err)
		if client.KindOf(err) == client.KindNotFound {
			s.evict(id)
		}
		var zero T
		return zero, err
	}
	s.upsert(updated)
	s.resync(ctx)
	return updated, nil
}

// Remove deletes id remotely and drops it from the snapshot.
func (s *Store[T, D]) Remove(ctx context.Context, id string) error {
	if s.src.Delete == nil {
		return ErrUnsupported
	}
	return s.RemoveWith(ctx, id, s.src.Delete)
}

// RemoveWith deletes id through fn instead of the Source delete.
func (s *Store[T, D]) RemoveWith(ctx context.Context, id string, fn func(ctx context.Context, id string) error) error {
	if err := fn(ctx, id); err != nil {
		err = classify("delete "+s.name, err)
		if client.KindOf(err) == client.KindNotFound {
			s.evict(id)
		}
		return err
	}
	s.evict(id)
	s.resync(ctx)
	return nil
}

func (s *Store[T, D]) resync(ctx context.Context) {
	if s.strategy != Refetch || s.src.List == nil {
		return
	}
	if err := s.Load(ctx); err != nil {
		s.logger.Warn("refetch after mutation failed", "err", err)
	}
}

func (s *Store[T, D]) upsert(item T) {
	s.mu.Lock()
	if i := indexOf(s.items, item.EntityID()); i >= 0 {
		s.items[i] = item
	} else {
		s.items = append(s.items, item)
	}
	s.barrier = s.seq
	snap, subs := s.publishLocked()
	s.mu.Unlock()
	notifyAll(subs, snap)
}

func (s *Store[T, D]) evict(id string) {
	s.mu.Lock()
	i := indexOf(s.items, id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	s.barrier = s.seq
	snap, subs := s.publishLocked()
	s.mu.Unlock()
	notifyAll(subs, snap)
}

func (s *Store[T, D]) publishLocked() ([]T, []func([]T)) {
	if len(s.subs) == 0 {
		return nil, nil
	}
	subs := make([]func([]T), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return append([]T(nil), s.items...), subs
}

func notifyAll[T any](subs []func([]T), snap []T) {
	for _, fn := range subs {
		fn(append([]T(nil), snap...))
	}
}

func indexOf[T content.Entity](items []T, id string) int {
	for i, it := range items {
		if it.EntityID() == id {
			return i
		}
	}
	return -1
}

// dedupe keeps the first position of each id with its last value.
func dedupe[T content.Entity](items []T) []T {
	out := make([]T, 0, len(items))
	pos := make(map[string]int, len(items))
	for _, it := range items {
		if i, ok := pos[it.EntityID()]; ok {
			out[i] = it
			continue
		}
		pos[it.EntityID()] = len(out)
		out = append(out, it)
	}
	return out
}

// classify converts any failure into one of the client error kinds so callers
// never see raw transport errors.
func classify(op string, err error) error {
	if err == nil || errors.Is(err, notify.ErrConfirmationDeclined) || errors.Is(err, ErrUnsupported) {
		return err
	}
	if client.KindOf(err) != client.KindUnknown {
		return err
	}
	return &client.NetworkError{Op: op, Err: err}
}
