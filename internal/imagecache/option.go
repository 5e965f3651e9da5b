package imagecache

import "go.uber.org/zap"

type Option func(options *options)

type options struct {
	baseDir string
	logger  *zap.SugaredLogger
}

// WithBaseDir sets the directory that relative file references resolve
// against. Defaults to the working directory.
func WithBaseDir(baseDir string) Option {
	return func(options *options) {
		options.baseDir = baseDir
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(options *options) {
		options.logger = logger
	}
}
