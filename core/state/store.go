// Package state keeps an in-memory, observable copy of an entity collection.
// Mutations go to the backing Source first and only touch the cache once it succeeds,
// subscribers are told about every change after it is applied.
package state

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/campusmove/movplan/core"
)

// maxRelists bounds how often Refresh lists again after a concurrent mutation.
const maxRelists = 3

type EventKind string

const (
	Loaded  EventKind = "loaded"
	Added   EventKind = "added"
	Updated EventKind = "updated"
	Removed EventKind = "removed"
)

type Event struct {
	Kind       EventKind `json:"kind"`
	Collection string    `json:"collection"`
	ID         string    `json:"id,omitempty"`
}

// Source is the backend a Store caches. Entity services satisfy it.
type Source[T any, F any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, f F) (T, error)
	Update(ctx context.Context, id string, f F) (T, error)
	Delete(ctx context.Context, id string) error
}

type Options struct {
	Name    string // singular, used in error messages
	Plural  string // collection name, used in events and load errors
	Prepend bool   // new items go first, for sources listed newest first

	// Conflicts are validation causes that still count as failed mutations,
	// e.g. a lecturer who is already checked in.
	Conflicts []error
}

type Store[T any, F any] struct {
	src    Source[T, F]
	idOf   func(T) string
	opts   Options
	logger core.Logger

	mu        sync.RWMutex
	items     []T
	gen       uint64 // bumped by every applied mutation
	loading   bool
	lastError string

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

func New[T any, F any](src Source[T, F], idOf func(T) string, opts Options, logger core.Logger) *Store[T, F] {
	if opts.Plural == "" {
		opts.Plural = opts.Name + "s"
	}
	return &Store[T, F]{
		src:     src,
		idOf:    idOf,
		opts:    opts,
		logger:  logger,
		loading: true,
		subs:    make(map[int]func(Event)),
	}
}

func (s *Store[T, F]) Name() string { return s.opts.Plural }

// Refresh reloads the cache from the source. On failure the previous items are kept.
// A mutation applied while listing makes it list again, so the snapshot never drops it.
func (s *Store[T, F]) Refresh(ctx context.Context) error {
	for attempt := 0; ; attempt++ {
		s.mu.Lock()
		s.loading = true
		gen := s.gen
		s.mu.Unlock()

		items, err := s.src.List(ctx)

		s.mu.Lock()
		if err == nil && s.gen != gen && attempt < maxRelists {
			s.mu.Unlock()
			continue
		}
		s.loading = false
		if err != nil {
			s.lastError = "Failed to load " + s.opts.Plural
			s.mu.Unlock()
			s.logger.Error("loading "+s.opts.Plural, err)
			return err
		}
		s.items = items
		s.lastError = ""
		s.mu.Unlock()

		s.publish(Event{Kind: Loaded, Collection: s.opts.Plural})
		return nil
	}
}

// Items returns a copy of the cached items.
func (s *Store[T, F]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]T, len(s.items))
	copy(items, s.items)
	return items
}

// Get returns the cached item with id.
func (s *Store[T, F]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

func (s *Store[T, F]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store[T, F]) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

func (s *Store[T, F]) Add(ctx context.Context, f F) (T, error) {
	item, err := s.src.Create(ctx, f)
	if err != nil {
		s.fail("add", err)
		var zero T
		return zero, err
	}

	s.mu.Lock()
	if s.opts.Prepend {
		s.items = append([]T{item}, s.items...)
	} else {
		s.items = append(s.items, item)
	}
	s.gen++
	s.lastError = ""
	s.mu.Unlock()

	s.publish(Event{Kind: Added, Collection: s.opts.Plural, ID: s.idOf(item)})
	return item, nil
}

func (s *Store[T, F]) Edit(ctx context.Context, id string, f F) (T, error) {
	item, err := s.src.Update(ctx, id, f)
	if err != nil {
		s.fail("update", err)
		var zero T
		return zero, err
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.items[i] = item
	}
	s.gen++
	s.lastError = ""
	s.mu.Unlock()

	s.publish(Event{Kind: Updated, Collection: s.opts.Plural, ID: id})
	return item, nil
}

func (s *Store[T, F]) Remove(ctx context.Context, id string) error {
	if err := s.src.Delete(ctx, id); err != nil {
		s.fail("delete", err)
		return err
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.items = append(s.items[:i:i], s.items[i+1:]...)
	}
	s.gen++
	s.lastError = ""
	s.mu.Unlock()

	s.publish(Event{Kind: Removed, Collection: s.opts.Plural, ID: id})
	return nil
}

// Subscribe registers fn for every subsequent change. The returned func unregisters it.
// fn runs synchronously on the mutating goroutine, outside the store's locks.
func (s *Store[T, F]) Subscribe(fn func(Event)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store[T, F]) publish(e Event) {
	s.subMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// fail records a backend failure. Invalid input is left to the caller to report inline.
func (s *Store[T, F]) fail(op string, err error) {
	conflict := false
	switch cause := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		return
	case *core.ValidationError:
		if conflict = s.isConflict(cause.Err); !conflict {
			return
		}
	}

	s.mu.Lock()
	s.lastError = "Failed to " + op + " " + s.opts.Name
	s.mu.Unlock()

	extras := map[string]interface{}{"collection": s.opts.Plural}
	if conflict {
		s.logger.Warn(op+" "+s.opts.Name, err, extras)
		return
	}
	s.logger.Error(op+" "+s.opts.Name, err, extras)
}

func (s *Store[T, F]) isConflict(err error) bool {
	for _, c := range s.opts.Conflicts {
		if err == c {
			return true
		}
	}
	return false
}

// indexOf must be called with mu held.
func (s *Store[T, F]) indexOf(id string) int {
	for i, item := range s.items {
		if s.idOf(item) == id {
			return i
		}
	}
	return -1
}
