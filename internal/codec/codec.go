// Package codec encodes cached values for persistent backends.
//
// Persisted entries record the name of the codec that produced them, so a
// backend can decode entries written with a codec other than its current one.
package codec

import (
	"fmt"
	"strings"
)

type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default compresses JSON, which keeps feature vectors small on disk.
// Values decoded into an interface type come back in their JSON form
// (float64 numbers, map[string]any objects), so decode into a concrete type
// for exact round-trips.
var Default Codec = Zstd{Codec: GoJSON{}}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, error) {
	if inner, ok := strings.CutPrefix(name, zstdPrefix); ok {
		innerCodec, err := ByName(inner)
		if err != nil {
			return nil, err
		}

		return Zstd{Codec: innerCodec}, nil
	}

	switch name {
	case GoJSON{}.Name():
		return GoJSON{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}
