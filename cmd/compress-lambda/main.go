// Package main provides the Lambda entry point for in-place image recompression.
//
// The function accepts either a direct invocation ({bucket, key, quality?,
// region?}) or an S3 Batch Operations invocation ({invocationId, tasks[]}).
// It downloads the object, re-encodes it as PNG or JPEG according to the
// key's extension, and overwrites the object in place.
//
// Memory: 512 MB
// Timeout: 1 minute
package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/fpang/image-compressor/internal/compressor"
	"github.com/fpang/image-compressor/internal/lambdaboot"
)

var handler *compressor.Handler

func init() {
	handler = lambdaboot.Init("compress-lambda")
}

func main() {
	lambda.Start(handler.Handle)
}
