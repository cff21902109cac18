// Package coroutine runs callables as isolated units of execution and gives
// each unit its own key/value storage, carried by the unit's context.
//
// Code running outside any unit reads and writes a single process-wide
// fallback storage instead.
package coroutine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrPanic wraps a panic recovered from a unit.
var ErrPanic = errors.New("unit panicked")

// Func is the body of a unit.
type Func func(ctx context.Context) error

type unitKey struct{}

type unit struct {
	id      string
	storage *Storage
}

// fallback serves Get/Set calls made outside any unit.
var fallback = NewStorage()

// Run starts every fn in its own unit and blocks until all of them have
// finished. The returned slice holds each unit's error at the same index.
func Run(ctx context.Context, fns ...Func) []error {
	errs := make([]error, len(fns))
	done := make(chan int, len(fns))

	for i, fn := range fns {
		u := &unit{
			id:      uuid.NewString(),
			storage: NewStorage(),
		}
		go func(i int, fn Func, u *unit) {
			defer func() {
				if r := recover(); r != nil {
					errs[i] = fmt.Errorf("%w: %v", ErrPanic, r)
				}
				done <- i
			}()
			errs[i] = fn(context.WithValue(ctx, unitKey{}, u))
		}(i, fn, u)
	}

	for range fns {
		<-done
	}
	return errs
}

func unitFrom(ctx context.Context) *unit {
	if ctx == nil {
		return nil
	}
	u, _ := ctx.Value(unitKey{}).(*unit)
	return u
}

// ID returns the identity of the unit ctx belongs to, or "" outside a unit.
func ID(ctx context.Context) string {
	if u := unitFrom(ctx); u != nil {
		return u.id
	}
	return ""
}

// InUnit reports whether ctx belongs to a unit started by Run.
func InUnit(ctx context.Context) bool {
	return unitFrom(ctx) != nil
}

// StorageOf returns the storage used for ctx.
func StorageOf(ctx context.Context) *Storage {
	if u := unitFrom(ctx); u != nil {
		return u.storage
	}
	return fallback
}

// Get reads key from the storage of ctx.
func Get(ctx context.Context, key string) (any, bool) {
	return StorageOf(ctx).Get(key)
}

// Set writes key to the storage of ctx.
func Set(ctx context.Context, key string, value any) {
	StorageOf(ctx).Set(key, value)
}

// Delete removes key from the storage of ctx.
func Delete(ctx context.Context, key string) {
	StorageOf(ctx).Delete(key)
}

// Storage is a concurrency safe key/value map.
type Storage struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewStorage creates an empty storage.
func NewStorage() *Storage {
	return &Storage{values: make(map[string]any)}
}

func (s *Storage) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *Storage) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *Storage) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Len returns the number of stored keys.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
