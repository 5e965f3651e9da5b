package memory

import (
	"context"
	"fmt"
	cachepkg "github.com/cirruslabs/imagecache/internal/cache"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"iter"
)

type Memory[V any] struct {
	id      string
	entries *xsync.MapOf[string, V]
}

func New[V any]() *Memory[V] {
	return &Memory[V]{
		id:      uuid.NewString(),
		entries: xsync.NewMapOf[string, V](),
	}
}

func Factory[V any]() cachepkg.Factory[V] {
	return func(_ context.Context) (cachepkg.Backend[V], error) {
		return New[V](), nil
	}
}

func (memory *Memory[V]) Get(_ context.Context, key string) (V, error) {
	value, ok := memory.entries.Load(key)
	if !ok {
		var zero V

		return zero, fmt.Errorf("%w: %s", cachepkg.ErrKeyMiss, key)
	}

	return value, nil
}

func (memory *Memory[V]) Set(_ context.Context, key string, value V) error {
	memory.entries.Store(key, value)

	return nil
}

func (memory *Memory[V]) Delete(_ context.Context, key string) error {
	if _, loaded := memory.entries.LoadAndDelete(key); !loaded {
		return fmt.Errorf("%w: %s", cachepkg.ErrKeyMiss, key)
	}

	return nil
}

func (memory *Memory[V]) Contains(_ context.Context, key string) bool {
	_, ok := memory.entries.Load(key)

	return ok
}

func (memory *Memory[V]) Keys(_ context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		memory.entries.Range(func(key string, _ V) bool {
			return yield(key, nil)
		})
	}
}

func (memory *Memory[V]) Size(_ context.Context) (int, error) {
	return memory.entries.Size(), nil
}

func (memory *Memory[V]) Clear(_ context.Context) error {
	memory.entries.Clear()

	return nil
}

func (memory *Memory[V]) Location() string {
	return "memory://" + memory.id
}
