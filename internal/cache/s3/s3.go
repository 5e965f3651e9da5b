package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3pkg "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	cachepkg "github.com/cirruslabs/imagecache/internal/cache"
	"github.com/cirruslabs/imagecache/internal/codec"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"io"
	"iter"
	"net/url"
	"strings"
)

// metadataCodec is the user-defined object metadata key
// that records which codec encoded the object
const metadataCodec = "codec"

type S3[V any] struct {
	client *s3pkg.Client
	bucket string
	prefix string
	codec  codec.Codec
	logger *zap.SugaredLogger
}

type Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
}

// New uses the default AWS configuration and credentials chain
// and expects the bucket to exist.
func New[V any](ctx context.Context, bucket string, opts ...Option) (*S3[V], error) {
	return newFromDefaultChain[V](ctx, &Config{Bucket: bucket}, opts...)
}

// NewFromConfig targets an explicit (possibly S3-compatible) endpoint
// and creates the bucket if it doesn't exist yet. Credentials fall back
// to the default chain when no static ones are configured.
func NewFromConfig[V any](ctx context.Context, config *Config, opts ...Option) (*S3[V], error) {
	awsConfig, err := loadAWSConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	var clientOpts []func(*s3pkg.Options)

	if config.Endpoint != "" {
		s3EndpointURL, err := url.Parse(config.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to parse S3 endpoint %q: %w", config.Endpoint, err)
		}

		clientOpts = append(clientOpts, func(options *s3pkg.Options) {
			options.EndpointResolverV2 = &s3EndpointResolver{url: s3EndpointURL}
		})
	}

	client := s3pkg.NewFromConfig(awsConfig, clientOpts...)

	_, err = client.CreateBucket(ctx, &s3pkg.CreateBucketInput{
		Bucket: aws.String(config.Bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		var alreadyExists *types.BucketAlreadyExists

		if !errors.As(err, &alreadyOwned) && !errors.As(err, &alreadyExists) {
			return nil, fmt.Errorf("failed to create bucket %q: %w", config.Bucket, err)
		}
	}

	return newS3[V](client, config.Bucket, opts...), nil
}

// Factory picks the constructor: plain AWS with the default credentials
// chain when neither an endpoint nor static credentials are configured,
// NewFromConfig otherwise.
func Factory[V any](config *Config, opts ...Option) cachepkg.Factory[V] {
	return func(ctx context.Context) (cachepkg.Backend[V], error) {
		if UsesDefaultChain(config) {
			return newFromDefaultChain[V](ctx, config, opts...)
		}

		return NewFromConfig[V](ctx, config, opts...)
	}
}

// UsesDefaultChain reports whether the configuration targets AWS itself
// with credentials from the environment, shared files or instance roles.
func UsesDefaultChain(config *Config) bool {
	return config.Endpoint == "" && config.AccessKeyID == ""
}

func newFromDefaultChain[V any](ctx context.Context, config *Config, opts ...Option) (*S3[V], error) {
	awsConfig, err := loadAWSConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	return newS3[V](s3pkg.NewFromConfig(awsConfig), config.Bucket, opts...), nil
}

func loadAWSConfig(ctx context.Context, config *Config) (aws.Config, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error

	if config.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(config.Region))
	}

	if config.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.AccessKeySecret, ""),
		))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return awsConfig, nil
}

func newS3[V any](client *s3pkg.Client, bucket string, opts ...Option) *S3[V] {
	options := &options{
		codec:  codec.Default,
		logger: zap.NewNop().Sugar(),
	}

	for _, opt := range opts {
		opt(options)
	}

	return &S3[V]{
		client: client,
		bucket: bucket,
		prefix: options.prefix,
		codec:  options.codec,
		logger: options.logger,
	}
}

func (s3 *S3[V]) Get(ctx context.Context, key string) (V, error) {
	var value V

	result, err := s3.client.GetObject(ctx, &s3pkg.GetObjectInput{
		Bucket: aws.String(s3.bucket),
		Key:    aws.String(s3.objectKey(key)),
	})
	if err != nil {
		return value, convertErr(key, err)
	}
	defer result.Body.Close()

	blob, err := io.ReadAll(result.Body)
	if err != nil {
		return value, fmt.Errorf("failed to read cache entry %q: %w", key, err)
	}

	entryCodec, err := s3.codecFor(result.Metadata[metadataCodec])
	if err != nil {
		return value, fmt.Errorf("failed to decode cache entry %q: %w", key, err)
	}

	if err := entryCodec.Unmarshal(blob, &value); err != nil {
		return value, fmt.Errorf("failed to decode cache entry %q with codec %q: %w",
			key, entryCodec.Name(), err)
	}

	return value, nil
}

func (s3 *S3[V]) Set(ctx context.Context, key string, value V) error {
	if key == "" {
		return cachepkg.ErrEmptyKey
	}

	blob, err := s3.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %q with codec %q: %w", key, s3.codec.Name(), err)
	}

	_, err = s3.client.PutObject(ctx, &s3pkg.PutObjectInput{
		Bucket: aws.String(s3.bucket),
		Key:    aws.String(s3.objectKey(key)),
		Body:   bytes.NewReader(blob),
		Metadata: map[string]string{
			metadataCodec: s3.codec.Name(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload cache entry %q: %w", key, err)
	}

	return nil
}

func (s3 *S3[V]) Delete(ctx context.Context, key string) error {
	// DeleteObject succeeds for non-existent keys, so check first
	if err := s3.head(ctx, key); err != nil {
		return err
	}

	_, err := s3.client.DeleteObject(ctx, &s3pkg.DeleteObjectInput{
		Bucket: aws.String(s3.bucket),
		Key:    aws.String(s3.objectKey(key)),
	})
	if err != nil {
		return convertErr(key, err)
	}

	return nil
}

func (s3 *S3[V]) Contains(ctx context.Context, key string) bool {
	if err := s3.head(ctx, key); err != nil {
		if !errors.Is(err, cachepkg.ErrKeyMiss) {
			s3.logger.Debugf("failed to check for cache entry %q: %v", key, err)
		}

		return false
	}

	return true
}

func (s3 *S3[V]) Keys(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for objects, err := range s3.pages(ctx) {
			if err != nil {
				yield("", err)

				return
			}

			for _, object := range objects {
				if !yield(strings.TrimPrefix(aws.ToString(object.Key), s3.prefix), nil) {
					return
				}
			}
		}
	}
}

func (s3 *S3[V]) Size(ctx context.Context) (int, error) {
	var size int

	for objects, err := range s3.pages(ctx) {
		if err != nil {
			return 0, err
		}

		size += len(objects)
	}

	return size, nil
}

func (s3 *S3[V]) Clear(ctx context.Context) error {
	for objects, err := range s3.pages(ctx) {
		if err != nil {
			return err
		}

		if len(objects) == 0 {
			continue
		}

		result, err := s3.client.DeleteObjects(ctx, &s3pkg.DeleteObjectsInput{
			Bucket: aws.String(s3.bucket),
			Delete: &types.Delete{
				Objects: lo.Map(objects, func(object types.Object, _ int) types.ObjectIdentifier {
					return types.ObjectIdentifier{Key: object.Key}
				}),
				Quiet: aws.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete cache entries: %w", err)
		}

		if len(result.Errors) != 0 {
			return fmt.Errorf("failed to delete %d cache entries, first error: %s",
				len(result.Errors), aws.ToString(result.Errors[0].Message))
		}
	}

	s3.logger.Debugf("cleared %s", s3.Location())

	return nil
}

func (s3 *S3[V]) Location() string {
	return fmt.Sprintf("s3://%s/%s", s3.bucket, s3.prefix)
}

func (s3 *S3[V]) head(ctx context.Context, key string) error {
	_, err := s3.client.HeadObject(ctx, &s3pkg.HeadObjectInput{
		Bucket: aws.String(s3.bucket),
		Key:    aws.String(s3.objectKey(key)),
	})
	if err != nil {
		return convertErr(key, err)
	}

	return nil
}

// pages lists the objects under the prefix, one page at a time.
func (s3 *S3[V]) pages(ctx context.Context) iter.Seq2[[]types.Object, error] {
	return func(yield func([]types.Object, error) bool) {
		input := &s3pkg.ListObjectsV2Input{
			Bucket: aws.String(s3.bucket),
		}

		if s3.prefix != "" {
			input.Prefix = aws.String(s3.prefix)
		}

		paginator := s3pkg.NewListObjectsV2Paginator(s3.client, input)

		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(nil, fmt.Errorf("failed to list cache entries: %w", err))

				return
			}

			if !yield(page.Contents, nil) {
				return
			}
		}
	}
}

func (s3 *S3[V]) objectKey(key string) string {
	return s3.prefix + key
}

func (s3 *S3[V]) codecFor(name string) (codec.Codec, error) {
	if name == "" || name == s3.codec.Name() {
		return s3.codec, nil
	}

	return codec.ByName(name)
}

func convertErr(key string, err error) error {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey

	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %s", cachepkg.ErrKeyMiss, key)
	}

	return err
}
