// Package s3 implements the object store collaborator on Amazon S3 or any
// S3-compatible backend (MinIO, Localstack). Object keys are the
// stringified item ids of the FILE items owning the content.
package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"filecrate/internal/domain/repositories"
)

// maxDeleteBatch is the S3 DeleteObjects request cap.
const maxDeleteBatch = 1000

// defaultDeleteBatch keeps delete requests well under backend limits while
// still amortizing round trips for folder deletes.
const defaultDeleteBatch = 50

// Config contains the settings of the S3 object store.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // custom endpoint for S3-compatible storage; empty for AWS
	AccessKey string
	SecretKey string
	// BatchSize bounds DeleteObjects request sizes. Zero picks the default.
	BatchSize int
}

// Store implements the ObjectStore interface on an S3 client.
type Store struct {
	client    *s3.Client
	bucket    string
	batchSize int
}

// NewStore builds the S3 client and the store around it.
//
// A custom endpoint switches the client to path-style addressing, which
// MinIO and Localstack require. Credentials fall back to the default AWS
// chain when not set explicitly.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("object store: bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultDeleteBatch
	}
	if batchSize > maxDeleteBatch {
		batchSize = maxDeleteBatch
	}

	return &Store{
		client:    client,
		bucket:    cfg.Bucket,
		batchSize: batchSize,
	}, nil
}

// NewStoreWithClient wraps an already configured client, for tests.
func NewStoreWithClient(client *s3.Client, bucket string, batchSize int) *Store {
	if batchSize <= 0 || batchSize > maxDeleteBatch {
		batchSize = defaultDeleteBatch
	}
	return &Store{client: client, bucket: bucket, batchSize: batchSize}
}

var _ repositories.ObjectStore = (*Store)(nil)

// Upload stores content under the given key.
func (s *Store) Upload(ctx context.Context, key string, content io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   content,
	})
	if err != nil {
		return fmt.Errorf("upload object %s: %w", key, err)
	}

	return nil
}

// Download returns a reader over the content behind the key. The caller
// must close it.
func (s *Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download object %s: %w", key, err)
	}

	return out.Body, nil
}

// Remove deletes the blobs behind the given keys, chunked into DeleteObjects
// batches. The chunks have no ordering requirement among themselves; they
// only all have to complete.
func (s *Store) Remove(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += s.batchSize {
		end := start + s.batchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := keys[start:end]

		objects := make([]types.ObjectIdentifier, len(batch))
		for i, key := range batch {
			objects[i] = types.ObjectIdentifier{Key: aws.String(key)}
		}

		_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("delete object batch: %w", err)
		}
	}

	return nil
}

// EnsureBucket creates the bucket if it does not already exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}

	return nil
}

// DeleteBucket removes the bucket. It must already be empty.
func (s *Store) DeleteBucket(ctx context.Context) error {
	_, err := s.client.DeleteBucket(ctx, &s3.DeleteBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("delete bucket %s: %w", s.bucket, err)
	}

	return nil
}
