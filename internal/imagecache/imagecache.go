// Package imagecache caches results computed for images, keyed by the
// content of the image rather than by its file name.
//
// A Cache is cheap to construct: its backend is only created on the first
// operation that needs it and is then kept for the lifetime of the Cache.
// All operations are safe for concurrent use.
package imagecache

import (
	"context"
	"errors"
	"fmt"
	cachepkg "github.com/cirruslabs/imagecache/internal/cache"
	"github.com/cirruslabs/imagecache/internal/cache/disk"
	"github.com/cirruslabs/imagecache/internal/cache/memory"
	"github.com/cirruslabs/imagecache/internal/fingerprint"
	"go.uber.org/zap"
	"iter"
	"sync"
)

// Cache maps image content to values of type V.
type Cache[V any] struct {
	factory cachepkg.Factory[V]
	baseDir string
	logger  *zap.SugaredLogger

	// backend is nil until the first successful construction
	backend cachepkg.Backend[V]
	mtx     sync.Mutex
}

// New creates a cache whose backend is built by factory on first use.
func New[V any](factory cachepkg.Factory[V], opts ...Option) *Cache[V] {
	options := newOptions(opts)

	return &Cache[V]{
		factory: factory,
		baseDir: options.baseDir,
		logger:  options.logger,
	}
}

// NewInMemory creates a cache whose entries live as long as the process.
func NewInMemory[V any](opts ...Option) *Cache[V] {
	return New(memory.Factory[V](), opts...)
}

// NewPersistent creates a cache stored in cacheDir, or in a temporary
// directory when cacheDir is empty.
//
// Values are stored with codec.Default, which is JSON-based: use a concrete
// V for exact round-trips. With V being an interface type, values come back
// in their JSON form, e.g. an int set as 3 is returned as float64(3).
func NewPersistent[V any](cacheDir string, opts ...Option) *Cache[V] {
	options := newOptions(opts)

	return New(disk.Factory[V](cacheDir, disk.WithLogger(options.logger)), opts...)
}

func newOptions(opts []Option) *options {
	options := &options{
		logger: zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		opt(options)
	}

	return options
}

// Backend returns the backend, constructing it on the first call.
// A failed construction is reported as ErrBackendUnavailable
// and attempted again on the next call.
func (cache *Cache[V]) Backend(ctx context.Context) (cachepkg.Backend[V], error) {
	cache.mtx.Lock()
	defer cache.mtx.Unlock()

	if cache.backend != nil {
		return cache.backend, nil
	}

	backend, err := cache.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	cache.logger.Debugf("initialized cache backend at %s", backend.Location())

	cache.backend = backend

	return backend, nil
}

// Fingerprint returns the key the image is cached under.
func (cache *Cache[V]) Fingerprint(ref Ref) (fingerprint.Fingerprint, error) {
	return ref.fingerprint(cache.baseDir)
}

// Set stores the value for the image, overwriting any previous one.
func (cache *Cache[V]) Set(ctx context.Context, ref Ref, value V) error {
	fp, backend, err := cache.resolve(ctx, ref)
	if err != nil {
		return err
	}

	return backend.Set(ctx, fp.String(), value)
}

// Get returns ErrImageNotCached when there's no entry for the image
// and ErrNotFound when the image itself can't be read.
func (cache *Cache[V]) Get(ctx context.Context, ref Ref) (V, error) {
	fp, backend, err := cache.resolve(ctx, ref)
	if err != nil {
		var zero V

		return zero, err
	}

	return cache.get(ctx, backend, ref, fp)
}

// Contains reports whether there is a value for the image.
func (cache *Cache[V]) Contains(ctx context.Context, ref Ref) (bool, error) {
	fp, backend, err := cache.resolve(ctx, ref)
	if err != nil {
		return false, err
	}

	return backend.Contains(ctx, fp.String()), nil
}

// Delete removes the value for the image, returning ErrImageNotCached if there is none.
func (cache *Cache[V]) Delete(ctx context.Context, ref Ref) error {
	fp, backend, err := cache.resolve(ctx, ref)
	if err != nil {
		return err
	}

	if err := backend.Delete(ctx, fp.String()); err != nil {
		return convertErr(ref, fp, err)
	}

	return nil
}

// Update sets values[i] for refs[i], in order. The first failure stops the
// update and is returned as a *BatchError; entries written before it are
// kept.
func (cache *Cache[V]) Update(ctx context.Context, refs []Ref, values []V) error {
	if len(refs) != len(values) {
		return fmt.Errorf("%w: %d images, %d values", ErrLengthMismatch, len(refs), len(values))
	}

	for idx, ref := range refs {
		if err := cache.Set(ctx, ref, values[idx]); err != nil {
			return &BatchError{
				Index: idx,
				Ref:   ref,
				Err:   err,
			}
		}
	}

	return nil
}

// GetOrSet returns the cached value for the image, or computes,
// stores and returns it on a miss. Nothing is stored when compute fails.
func (cache *Cache[V]) GetOrSet(ctx context.Context, ref Ref, compute func(ctx context.Context) (V, error)) (V, error) {
	var zero V

	fp, backend, err := cache.resolve(ctx, ref)
	if err != nil {
		return zero, err
	}

	value, err := cache.get(ctx, backend, ref, fp)
	if err == nil || !errors.Is(err, ErrImageNotCached) {
		return value, err
	}

	value, err = compute(ctx)
	if err != nil {
		return zero, err
	}

	if err := backend.Set(ctx, fp.String(), value); err != nil {
		return zero, err
	}

	return value, nil
}

// Keys iterates over the fingerprints of the cached images. Original file
// names are not retained.
func (cache *Cache[V]) Keys(ctx context.Context) iter.Seq2[fingerprint.Fingerprint, error] {
	return func(yield func(fingerprint.Fingerprint, error) bool) {
		backend, err := cache.Backend(ctx)
		if err != nil {
			yield("", err)

			return
		}

		for key, err := range backend.Keys(ctx) {
			if !yield(fingerprint.Fingerprint(key), err) || err != nil {
				return
			}
		}
	}
}

// Size returns the number of cached values.
func (cache *Cache[V]) Size(ctx context.Context) (int, error) {
	backend, err := cache.Backend(ctx)
	if err != nil {
		return 0, err
	}

	return backend.Size(ctx)
}

// Clear removes all entries. The backend stays initialized.
func (cache *Cache[V]) Clear(ctx context.Context) error {
	backend, err := cache.Backend(ctx)
	if err != nil {
		return err
	}

	if err := backend.Clear(ctx); err != nil {
		return err
	}

	cache.logger.Debugf("cleared cache at %s", backend.Location())

	return nil
}

func (cache *Cache[V]) Location(ctx context.Context) (string, error) {
	backend, err := cache.Backend(ctx)
	if err != nil {
		return "", err
	}

	return backend.Location(), nil
}

func (cache *Cache[V]) String() string {
	cache.mtx.Lock()
	defer cache.mtx.Unlock()

	if cache.backend == nil {
		return "imagecache(uninitialized)"
	}

	return fmt.Sprintf("imagecache(%s)", cache.backend.Location())
}

func (cache *Cache[V]) resolve(ctx context.Context, ref Ref) (fingerprint.Fingerprint, cachepkg.Backend[V], error) {
	fp, err := cache.Fingerprint(ref)
	if err != nil {
		return "", nil, err
	}

	backend, err := cache.Backend(ctx)
	if err != nil {
		return "", nil, err
	}

	return fp, backend, nil
}

func (cache *Cache[V]) get(
	ctx context.Context,
	backend cachepkg.Backend[V],
	ref Ref,
	fp fingerprint.Fingerprint,
) (V, error) {
	value, err := backend.Get(ctx, fp.String())
	if err != nil {
		cache.logger.Debugf("cache miss for %s (%s): %v", ref, fp, err)

		return value, convertErr(ref, fp, err)
	}

	cache.logger.Debugf("cache hit for %s (%s)", ref, fp)

	return value, nil
}

func convertErr(ref Ref, fp fingerprint.Fingerprint, err error) error {
	if errors.Is(err, cachepkg.ErrKeyMiss) {
		return fmt.Errorf("%w: %s (%s)", ErrImageNotCached, ref, fp)
	}

	return err
}
