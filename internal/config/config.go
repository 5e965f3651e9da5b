package config

import (
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"io"
)

const (
	BackendMemory = "memory"
	BackendDisk   = "disk"
	BackendS3     = "s3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	BaseDir string `yaml:"base-dir"`
	Backend string `yaml:"backend"`
	Disk    Disk   `yaml:"disk"`
	S3      S3     `yaml:"s3"`
}

type Disk struct {
	Dir   string `yaml:"dir"`
	Codec string `yaml:"codec"`
}

type S3 struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
}

func Parse(r io.Reader) (*Config, error) {
	var config Config

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		// An empty file is a valid configuration
		if !errors.Is(err, io.EOF) {
			return nil, err
		}
	}

	if config.Backend == "" {
		config.Backend = BackendDisk
	}

	switch config.Backend {
	case BackendMemory, BackendDisk:
	case BackendS3:
		if config.S3.Bucket == "" {
			return nil, fmt.Errorf("%w: \"s3.bucket\" is required for the %q backend",
				ErrInvalidConfig, BackendS3)
		}
	default:
		return nil, fmt.Errorf("%w: unknown backend %q, expected %q, %q or %q",
			ErrInvalidConfig, config.Backend, BackendMemory, BackendDisk, BackendS3)
	}

	return &config, nil
}
