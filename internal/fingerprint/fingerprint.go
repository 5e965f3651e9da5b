// Package fingerprint derives content identities for images.
//
// A fingerprint is the hex-encoded SHA-256 digest of the image content, so
// the same bytes stored under different file names share a fingerprint.
package fingerprint

import (
	_ "crypto/sha256" // registers the digest algorithm
	"encoding/binary"
	"errors"
	"fmt"
	"github.com/opencontainers/go-digest"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
)

const algorithm = digest.SHA256

var (
	ErrNotFound = errors.New("image not found")
	ErrInvalid  = errors.New("invalid fingerprint")
)

type Fingerprint string

func (fingerprint Fingerprint) String() string {
	return string(fingerprint)
}

// Digest returns the fingerprint in the "sha256:<hex>" form.
func (fingerprint Fingerprint) Digest() digest.Digest {
	return digest.NewDigestFromEncoded(algorithm, string(fingerprint))
}

func Parse(s string) (Fingerprint, error) {
	if err := algorithm.Validate(s); err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalid, s, err)
	}

	return Fingerprint(s), nil
}

// FromPath fingerprints the file at baseDir/relativePath. Any failure to open
// or read the file is reported as ErrNotFound.
func FromPath(baseDir string, relativePath string) (Fingerprint, error) {
	path := relativePath

	if baseDir != "" {
		path = filepath.Join(baseDir, relativePath)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	defer file.Close()

	fingerprint, err := FromReader(file)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read %s: %w", ErrNotFound, path, err)
	}

	return fingerprint, nil
}

func FromReader(r io.Reader) (Fingerprint, error) {
	dgst, err := algorithm.FromReader(r)
	if err != nil {
		return "", err
	}

	return Fingerprint(dgst.Encoded()), nil
}

func FromBytes(buf []byte) Fingerprint {
	return Fingerprint(algorithm.FromBytes(buf).Encoded())
}

// FromImage fingerprints decoded pixel content. Two images with the same
// bounds and the same pixels produce the same fingerprint regardless of
// their concrete type or the file format they were decoded from.
func FromImage(img image.Image) Fingerprint {
	digester := algorithm.Digester()
	hash := digester.Hash()

	bounds := img.Bounds()

	var header [32]byte
	binary.BigEndian.PutUint64(header[0:], uint64(int64(bounds.Min.X)))
	binary.BigEndian.PutUint64(header[8:], uint64(int64(bounds.Min.Y)))
	binary.BigEndian.PutUint64(header[16:], uint64(int64(bounds.Max.X)))
	binary.BigEndian.PutUint64(header[24:], uint64(int64(bounds.Max.Y)))
	_, _ = hash.Write(header[:])

	row := make([]byte, 0, bounds.Dx()*8)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row = row[:0]

		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixel := color.RGBA64Model.Convert(img.At(x, y)).(color.RGBA64)

			row = binary.BigEndian.AppendUint16(row, pixel.R)
			row = binary.BigEndian.AppendUint16(row, pixel.G)
			row = binary.BigEndian.AppendUint16(row, pixel.B)
			row = binary.BigEndian.AppendUint16(row, pixel.A)
		}

		_, _ = hash.Write(row)
	}

	return Fingerprint(digester.Digest().Encoded())
}
