package imagecache

import (
	"fmt"
	"github.com/cirruslabs/imagecache/internal/fingerprint"
	"github.com/samber/lo"
	"image"
	"path/filepath"
)

// Ref identifies image content to the cache.
type Ref interface {
	fingerprint(baseDir string) (fingerprint.Fingerprint, error)
	String() string
}

// File refers to an image file; relative paths resolve against the base
// directory of the cache.
type File string

func (file File) fingerprint(baseDir string) (fingerprint.Fingerprint, error) {
	if filepath.IsAbs(string(file)) {
		return fingerprint.FromPath("", string(file))
	}

	return fingerprint.FromPath(baseDir, string(file))
}

func (file File) String() string {
	return string(file)
}

// Files is a shorthand for referring to multiple image files.
func Files(paths ...string) []Ref {
	return lo.Map(paths, func(path string, _ int) Ref {
		return File(path)
	})
}

// Bytes refers to raw image content that's already in memory.
type Bytes []byte

func (bytes Bytes) fingerprint(_ string) (fingerprint.Fingerprint, error) {
	return fingerprint.FromBytes(bytes), nil
}

func (bytes Bytes) String() string {
	return fmt.Sprintf("<%d bytes>", len(bytes))
}

// Image refers to decoded pixel content.
func Image(img image.Image) Ref {
	return decodedImage{img: img}
}

type decodedImage struct {
	img image.Image
}

func (decodedImage decodedImage) fingerprint(_ string) (fingerprint.Fingerprint, error) {
	return fingerprint.FromImage(decodedImage.img), nil
}

func (decodedImage decodedImage) String() string {
	return fmt.Sprintf("<image %v>", decodedImage.img.Bounds())
}

// Fingerprinted refers to image content by a fingerprint computed earlier,
// such as the ones yielded by Cache.Keys.
type Fingerprinted fingerprint.Fingerprint

func (fingerprinted Fingerprinted) fingerprint(_ string) (fingerprint.Fingerprint, error) {
	return fingerprint.Parse(string(fingerprinted))
}

func (fingerprinted Fingerprinted) String() string {
	return string(fingerprinted)
}
