package codec

import (
	"fmt"
	"github.com/klauspost/compress/zstd"
)

const zstdPrefix = "zstd+"

//nolint:gochecknoglobals // EncodeAll and DecodeAll are safe for concurrent use
var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// Zstd compresses the output of the wrapped codec.
type Zstd struct {
	Codec Codec
}

func (z Zstd) Marshal(v any) ([]byte, error) {
	data, err := z.Codec.Marshal(v)
	if err != nil {
		return nil, err
	}

	return encoder.EncodeAll(data, make([]byte, 0, len(data))), nil
}

func (z Zstd) Unmarshal(data []byte, v any) error {
	decompressed, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("failed to decompress: %w", err)
	}

	return z.Codec.Unmarshal(decompressed, v)
}

func (z Zstd) Name() string {
	return zstdPrefix + z.Codec.Name()
}
