// Package s3util is the compressor's object storage layer: it reads and
// writes whole objects through the S3 API.
package s3util

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// API is the subset of *s3.Client used by Store.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store reads and writes objects in S3.
type Store struct {
	client API
}

// NewStore wraps an S3 client.
func NewStore(client API) *Store {
	return &Store{client: client}
}

// StoreFactory builds a Store bound to a region.
type StoreFactory func(region string) *Store

// NewStoreFactory returns a factory that builds a fresh S3 client from cfg
// for each region it is asked for.
func NewStoreFactory(cfg aws.Config) StoreFactory {
	return func(region string) *Store {
		client := s3.NewFromConfig(cfg, func(o *s3.Options) {
			if region != "" {
				o.Region = region
			}
		})
		return NewStore(client)
	}
}

// Get downloads the object at bucket/key. The body is drained fully before
// returning.
func (s *Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	log.Debug().Str("bucket", bucket).Str("key", key).Msg("Downloading from S3")

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("S3 GetObject: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	log.Debug().Str("key", key).Int("size", len(data)).Msg("Downloaded from S3")
	return data, nil
}
