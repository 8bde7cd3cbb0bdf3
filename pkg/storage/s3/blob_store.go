// Package s3 is an AWS S3-backed storage.ResultBlobStore, grounded on the
// aws-sdk-go-v2 config+s3 usage declared in the teacher's go.mod and in
// scttfrdmn-aws-instance-benchmarks/pkg/aws, giving those dependencies a
// concrete caller: archiving uploaded task-set CSVs and the schedule CSVs
// a worker produces.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pafsched/pkg/storage"
)

// BlobStore is an S3-backed storage.ResultBlobStore.
type BlobStore struct {
	client *s3.Client
	bucket string
}

// NewBlobStore loads AWS credentials/region from the environment (or the
// given region/endpoint override) and returns a BlobStore bound to bucket.
func NewBlobStore(ctx context.Context, bucket, region, endpoint string) (*BlobStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &BlobStore{client: client, bucket: bucket}, nil
}

// Put uploads data under key, implementing storage.ResultBlobStore.
func (b *BlobStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3: put %s: %w", key, err)
	}
	return nil
}

// Get downloads the object at key, implementing storage.ResultBlobStore.
func (b *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("s3: get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: reading %s: %w", key, err)
	}
	return data, nil
}

// EnsureBucket creates the bucket if it does not already exist, ignoring
// the "already owned by you" case so startup is idempotent.
func (b *BlobStore) EnsureBucket(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)})
	if err == nil {
		return nil
	}
	_, err = b.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(b.bucket)})
	if err != nil {
		var owned *s3.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("s3: creating bucket %s: %w", b.bucket, err)
	}
	return nil
}
