package s3util

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsmiddleware "github.com/aws/aws-sdk-go-v2/aws/middleware"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// PutResult is the response metadata of a PutObject call.
type PutResult struct {
	ETag                 string `json:"ETag,omitempty"`
	VersionID            string `json:"VersionId,omitempty"`
	ServerSideEncryption string `json:"ServerSideEncryption,omitempty"`
	RequestID            string `json:"RequestId,omitempty"`
}

// Put uploads body to bucket/key, overwriting any existing object.
func (s *Store) Put(ctx context.Context, bucket, key string, body []byte, contentType string) (*PutResult, error) {
	log.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Str("contentType", contentType).
		Int("size", len(body)).
		Msg("Uploading to S3")

	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("S3 PutObject: %w", err)
	}

	result := &PutResult{
		ETag:                 aws.ToString(out.ETag),
		VersionID:            aws.ToString(out.VersionId),
		ServerSideEncryption: string(out.ServerSideEncryption),
	}
	if requestID, ok := awsmiddleware.GetRequestIDMetadata(out.ResultMetadata); ok {
		result.RequestID = requestID
	}

	log.Info().Str("key", key).Str("etag", result.ETag).Msg("Uploaded to S3")
	return result, nil
}
