package imagecache

import (
	"errors"
	"fmt"
	cachepkg "github.com/cirruslabs/imagecache/internal/cache"
	"github.com/cirruslabs/imagecache/internal/fingerprint"
)

var (
	// ErrNotFound means the referenced image file can't be read.
	ErrNotFound = fingerprint.ErrNotFound

	// ErrImageNotCached means there is no entry for the image content.
	// It also matches cache.ErrKeyMiss.
	ErrImageNotCached = fmt.Errorf("image not cached: %w", cachepkg.ErrKeyMiss)

	ErrBackendUnavailable = cachepkg.ErrBackendUnavailable

	ErrLengthMismatch = errors.New("number of images and values differ")
)

// BatchError reports the element that stopped a batch update.
// Elements before Index have been written.
type BatchError struct {
	Index int
	Ref   Ref
	Err   error
}

func (batchError *BatchError) Error() string {
	return fmt.Sprintf("batch update failed at index %d (%s): %v",
		batchError.Index, batchError.Ref, batchError.Err)
}

func (batchError *BatchError) Unwrap() error {
	return batchError.Err
}
