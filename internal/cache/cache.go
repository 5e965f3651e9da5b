// Package cache defines the storage contract shared by all backends.
package cache

import (
	"context"
	"errors"
	"iter"
)

var (
	ErrKeyMiss            = errors.New("cache key miss")
	ErrEmptyKey           = errors.New("cache key is empty")
	ErrBackendUnavailable = errors.New("cache backend unavailable")
)

// Backend maps keys to values.
//
// Get and Delete return ErrKeyMiss for absent keys, Contains never fails.
// Keys re-reads the backend on every call and yields ("", err) once when
// the listing fails. Implementations must be safe for concurrent use.
type Backend[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V) error
	Delete(ctx context.Context, key string) error
	Contains(ctx context.Context, key string) bool
	Keys(ctx context.Context) iter.Seq2[string, error]
	Size(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Location() string
}

// Factory constructs a backend. It is invoked lazily, on first use.
type Factory[V any] func(ctx context.Context) (Backend[V], error)
