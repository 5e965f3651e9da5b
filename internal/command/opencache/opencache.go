// Package opencache builds the cache that the CLI commands operate on
// from the configuration file and the global flags.
package opencache

import (
	"bytes"
	"fmt"
	cachepkg "github.com/cirruslabs/imagecache/internal/cache"
	"github.com/cirruslabs/imagecache/internal/cache/disk"
	"github.com/cirruslabs/imagecache/internal/cache/memory"
	"github.com/cirruslabs/imagecache/internal/cache/s3"
	"github.com/cirruslabs/imagecache/internal/codec"
	configpkg "github.com/cirruslabs/imagecache/internal/config"
	"github.com/cirruslabs/imagecache/internal/imagecache"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"os"
	"path/filepath"
)

var configPath string
var baseDir string
var cacheDir string

func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configPath, "file", "f", "",
		"configuration file path (e.g. /etc/imagecache.yml)")
	cmd.PersistentFlags().StringVar(&baseDir, "base-dir", "",
		"directory that relative image paths resolve against")
	cmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "",
		"directory of the disk backend")
}

func Open() (*imagecache.Cache[any], error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	factory, err := newFactory(config)
	if err != nil {
		return nil, err
	}

	return imagecache.New(factory,
		imagecache.WithBaseDir(config.BaseDir),
		imagecache.WithLogger(zap.S()),
	), nil
}

func loadConfig() (*configpkg.Config, error) {
	config := &configpkg.Config{
		Backend: configpkg.BackendDisk,
	}

	if configPath != "" {
		configBytes, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file at path %s: %w", configPath, err)
		}

		config, err = configpkg.Parse(bytes.NewReader(configBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration file at path %s: %w", configPath, err)
		}
	}

	// Flags take precedence over the configuration file
	if baseDir != "" {
		config.BaseDir = baseDir
	}

	if cacheDir != "" {
		config.Disk.Dir = cacheDir
	}

	if config.Disk.Dir == "" {
		userCacheDir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine the default cache directory: %w", err)
		}

		config.Disk.Dir = filepath.Join(userCacheDir, "imagecache")
	}

	return config, nil
}

func newFactory(config *configpkg.Config) (cachepkg.Factory[any], error) {
	switch config.Backend {
	case configpkg.BackendMemory:
		return memory.Factory[any](), nil
	case configpkg.BackendS3:
		return s3.Factory[any](&s3.Config{
			Endpoint:        config.S3.Endpoint,
			Region:          config.S3.Region,
			AccessKeyID:     config.S3.AccessKeyID,
			AccessKeySecret: config.S3.AccessKeySecret,
			Bucket:          config.S3.Bucket,
		}, s3.WithPrefix(config.S3.Prefix), s3.WithLogger(zap.S())), nil
	default:
		opts := []disk.Option{
			disk.WithLogger(zap.S()),
		}

		if config.Disk.Codec != "" {
			diskCodec, err := codec.ByName(config.Disk.Codec)
			if err != nil {
				return nil, err
			}

			opts = append(opts, disk.WithCodec(diskCodec))
		}

		return disk.Factory[any](config.Disk.Dir, opts...), nil
	}
}
