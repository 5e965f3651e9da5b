package disk

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	cachepkg "github.com/cirruslabs/imagecache/internal/cache"
	"github.com/cirruslabs/imagecache/internal/codec"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sync"
)

const (
	fileInfo = "info.json"
	fileBlob = "blob.bin"

	// Temporary files are dot-prefixed so that they never look like entries
	tempPattern = ".put-*"

	readDirBatch = 256
	dirPerm      = 0755
)

type Disk[V any] struct {
	dir    string
	codec  codec.Codec
	logger *zap.SugaredLogger
	mtx    sync.RWMutex
}

// New opens a disk backend rooted at dir, creating the directory if needed.
// An empty dir results in a fresh temporary directory.
func New[V any](dir string, opts ...Option) (*Disk[V], error) {
	options := &options{
		codec:  codec.Default,
		logger: zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		opt(options)
	}

	if dir == "" {
		tmpDir, err := os.MkdirTemp("", "imagecache-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create a temporary cache directory: %w", err)
		}

		options.logger.Debugf("using temporary cache directory %s", tmpDir)

		dir = tmpDir
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory %s: %w", dir, err)
	}

	// Pre-create the disk's directory if not created yet
	if err := os.MkdirAll(absDir, dirPerm); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", absDir, err)
	}

	return &Disk[V]{
		dir:    absDir,
		codec:  options.codec,
		logger: options.logger,
	}, nil
}

func Factory[V any](dir string, opts ...Option) cachepkg.Factory[V] {
	return func(_ context.Context) (cachepkg.Backend[V], error) {
		return New[V](dir, opts...)
	}
}

func (disk *Disk[V]) Get(_ context.Context, key string) (V, error) {
	var value V

	disk.mtx.RLock()
	defer disk.mtx.RUnlock()

	zipReader, err := zip.OpenReader(disk.path(key))
	if err != nil {
		// Convert the error for consumer's convenience
		if errors.Is(err, os.ErrNotExist) {
			return value, fmt.Errorf("%w: %s", cachepkg.ErrKeyMiss, key)
		}

		return value, fmt.Errorf("failed to open cache entry %q: %w", key, err)
	}
	defer zipReader.Close()

	info, err := readInfo(&zipReader.Reader)
	if err != nil {
		return value, fmt.Errorf("failed to read %q file of the cache entry %q: %w", fileInfo, key, err)
	}

	if info.Key != key {
		return value, fmt.Errorf("cache entry %q is corrupted: it holds the key %q", key, info.Key)
	}

	entryCodec, err := disk.codecFor(info)
	if err != nil {
		return value, fmt.Errorf("failed to decode cache entry %q: %w", key, err)
	}

	blob, err := readBlob(&zipReader.Reader)
	if err != nil {
		return value, fmt.Errorf("failed to read %q file of the cache entry %q: %w", fileBlob, key, err)
	}

	if err := entryCodec.Unmarshal(blob, &value); err != nil {
		return value, fmt.Errorf("failed to decode cache entry %q with codec %q: %w",
			key, entryCodec.Name(), err)
	}

	return value, nil
}

func (disk *Disk[V]) Set(_ context.Context, key string, value V) error {
	if key == "" {
		return cachepkg.ErrEmptyKey
	}

	blob, err := disk.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %q with codec %q: %w", key, disk.codec.Name(), err)
	}

	disk.mtx.Lock()
	defer disk.mtx.Unlock()

	// Write to a temporary file in the same directory first,
	// so that the final rename atomically replaces the entry
	tmpFile, err := os.CreateTemp(disk.dir, tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create a temporary file for the cache entry %q: %w", key, err)
	}

	if err := writeEntry(tmpFile, Info{Key: key, Codec: disk.codec.Name()}, blob); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpFile.Name())

		return fmt.Errorf("failed to write cache entry %q: %w", key, err)
	}

	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpFile.Name())

		return fmt.Errorf("failed to close cache entry %q: %w", key, err)
	}

	if err := os.Rename(tmpFile.Name(), disk.path(key)); err != nil {
		_ = os.Remove(tmpFile.Name())

		return fmt.Errorf("failed to accept cache entry %q: %w", key, err)
	}

	return nil
}

func (disk *Disk[V]) Delete(_ context.Context, key string) error {
	disk.mtx.Lock()
	defer disk.mtx.Unlock()

	if err := os.Remove(disk.path(key)); err != nil {
		// Convert the error for consumer's convenience
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", cachepkg.ErrKeyMiss, key)
		}

		return fmt.Errorf("failed to delete cache entry %q: %w", key, err)
	}

	return nil
}

func (disk *Disk[V]) Contains(_ context.Context, key string) bool {
	disk.mtx.RLock()
	defer disk.mtx.RUnlock()

	fi, err := os.Stat(disk.path(key))

	return err == nil && fi.Mode().IsRegular()
}

func (disk *Disk[V]) Keys(_ context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for dirEntry, err := range disk.entries() {
			if err != nil {
				yield("", err)

				return
			}

			key, err := disk.entryKey(dirEntry.Name())
			if err != nil {
				disk.logger.Debugf("skipping %s in the cache directory: %v", dirEntry.Name(), err)

				continue
			}

			if !yield(key, nil) {
				return
			}
		}
	}
}

func (disk *Disk[V]) Size(ctx context.Context) (int, error) {
	var size int

	for _, err := range disk.Keys(ctx) {
		if err != nil {
			return 0, err
		}

		size++
	}

	return size, nil
}

// Clear removes the cache directory with everything in it
// and re-creates it empty, so the backend stays usable.
func (disk *Disk[V]) Clear(_ context.Context) error {
	disk.mtx.Lock()
	defer disk.mtx.Unlock()

	if err := os.RemoveAll(disk.dir); err != nil {
		return fmt.Errorf("failed to remove cache directory %s: %w", disk.dir, err)
	}

	if err := os.MkdirAll(disk.dir, dirPerm); err != nil {
		return fmt.Errorf("failed to re-create cache directory %s: %w", disk.dir, err)
	}

	disk.logger.Debugf("cleared cache directory %s", disk.dir)

	return nil
}

func (disk *Disk[V]) Location() string {
	return disk.dir
}

// Usage returns the number of bytes occupied by cache entries.
func (disk *Disk[V]) Usage(_ context.Context) (uint64, error) {
	var sizes []uint64

	for dirEntry, err := range disk.entries() {
		if err != nil {
			return 0, err
		}

		if _, err := keyFromEntryName(dirEntry.Name()); err != nil && !errors.Is(err, errHashedEntryName) {
			continue
		}

		fi, err := dirEntry.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}

			return 0, err
		}

		sizes = append(sizes, uint64(fi.Size()))
	}

	return lo.Sum(sizes), nil
}

func (disk *Disk[V]) path(key string) string {
	return filepath.Join(disk.dir, entryName(key))
}

// entryKey recovers the key of the entry file with the given name.
func (disk *Disk[V]) entryKey(name string) (string, error) {
	key, err := keyFromEntryName(name)
	if !errors.Is(err, errHashedEntryName) {
		return key, err
	}

	// Hashed names only carry the key inside the entry
	zipReader, err := zip.OpenReader(filepath.Join(disk.dir, name))
	if err != nil {
		return "", err
	}
	defer zipReader.Close()

	info, err := readInfo(&zipReader.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to read %q file: %w", fileInfo, err)
	}

	if entryName(info.Key) != name {
		return "", fmt.Errorf("entry holds the key %q that doesn't belong to it", info.Key)
	}

	return info.Key, nil
}

func (disk *Disk[V]) codecFor(info *Info) (codec.Codec, error) {
	if info.Codec == disk.codec.Name() {
		return disk.codec, nil
	}

	return codec.ByName(info.Codec)
}

// entries lists the cache directory in batches without holding the lock
// while yielding, so that consumers may mutate the cache mid-iteration.
func (disk *Disk[V]) entries() iter.Seq2[fs.DirEntry, error] {
	return func(yield func(fs.DirEntry, error) bool) {
		dir, err := os.Open(disk.dir)
		if err != nil {
			yield(nil, fmt.Errorf("failed to open cache directory %s: %w", disk.dir, err))

			return
		}
		defer dir.Close()

		for {
			dirEntries, err := dir.ReadDir(readDirBatch)

			for _, dirEntry := range dirEntries {
				if !dirEntry.Type().IsRegular() {
					continue
				}

				if !yield(dirEntry, nil) {
					return
				}
			}

			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil {
				yield(nil, fmt.Errorf("failed to list cache directory %s: %w", disk.dir, err))

				return
			}
		}
	}
}

func writeEntry(w io.Writer, info Info, blob []byte) error {
	// Write the cache entry as a ZIP file
	zipWriter := zip.NewWriter(w)

	if err := writeInfo(zipWriter, info); err != nil {
		return fmt.Errorf("failed to write %q file: %w", fileInfo, err)
	}

	blobWriter, err := zipWriter.CreateHeader(&zip.FileHeader{
		Name:   fileBlob,
		Method: zip.Store,
	})
	if err != nil {
		return fmt.Errorf("failed to write %q file: %w", fileBlob, err)
	}

	if _, err := blobWriter.Write(blob); err != nil {
		return fmt.Errorf("failed to write %q file: %w", fileBlob, err)
	}

	return zipWriter.Close()
}
