package s3

import (
	"github.com/cirruslabs/imagecache/internal/codec"
	"go.uber.org/zap"
)

type Option func(options *options)

type options struct {
	prefix string
	codec  codec.Codec
	logger *zap.SugaredLogger
}

// WithPrefix stores objects under the given key prefix, e.g. "results/".
func WithPrefix(prefix string) Option {
	return func(options *options) {
		options.prefix = prefix
	}
}

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
