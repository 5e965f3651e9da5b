package disk

import (
	"github.com/cirruslabs/imagecache/internal/codec"
	"go.uber.org/zap"
)

type Option func(options *options)

type options struct {
	codec  codec.Codec
	logger *zap.SugaredLogger
}

// WithCodec sets the codec used to encode new entries. Existing entries are
// decoded with the codec they were written with.
func WithCodec(codec codec.Codec) Option {
	return func(options *options) {
		options.codec = codec
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(options *options) {
		options.logger = logger
	}
}
