// Package main provides a local invoker for the compressor handler.
//
// It builds a direct or S3 Batch Operations event from flags, runs it
// through the same handler the Lambda uses (against real S3, with the
// default AWS credential chain), and prints the JSON response.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/image-compressor/internal/compressor"
	"github.com/fpang/image-compressor/internal/event"
	"github.com/fpang/image-compressor/internal/lambdaboot"
)

// CLI flags
var (
	bucketFlag    string
	bucketARNFlag string
	keyFlag       string
	regionFlag    string
	qualityFlag   int
	versionFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "compress-cli",
	Short: "Recompress an S3 image in place using the compressor handler",
	Long: `compress-cli runs the compressor handler locally with a hand-built event.

Examples:
  compress-cli direct --bucket compressor-dev --key test.png
  compress-cli direct -b compressor-dev -k photos/a.jpeg -q 60 --region eu-west-1
  compress-cli batch --bucket-arn arn:aws:s3:::compressor-dev --key test.png`,
}

var directCmd = &cobra.Command{
	Use:   "direct",
	Short: "Invoke with a direct {bucket, key, quality, region} event",
	RunE: func(cmd *cobra.Command, args []string) error {
		evt := event.DirectEvent{Bucket: bucketFlag, Key: keyFlag, Region: regionFlag, Quality: qualityFlag}
		return run(cmd.Context(), evt)
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Invoke with a single-task S3 Batch Operations event",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), newBatchEvent(bucketARNFlag, keyFlag, versionFlag))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&keyFlag, "key", "k", "", "Object key; its extension selects png or jpeg output")
	_ = rootCmd.MarkPersistentFlagRequired("key")

	directCmd.Flags().StringVarP(&bucketFlag, "bucket", "b", "", "Bucket name")
	directCmd.Flags().StringVar(&regionFlag, "region", "", "Bucket region (default us-east-1)")
	directCmd.Flags().IntVarP(&qualityFlag, "quality", "q", 0, "Encode quality 1-100 (default 70)")
	_ = directCmd.MarkFlagRequired("bucket")

	batchCmd.Flags().StringVar(&bucketARNFlag, "bucket-arn", "", "Bucket ARN, e.g. arn:aws:s3:::compressor-dev")
	batchCmd.Flags().StringVar(&versionFlag, "version-id", "1", "Object version ID to report in the task")
	_ = batchCmd.MarkFlagRequired("bucket-arn")

	rootCmd.AddCommand(directCmd, batchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newBatchEvent(bucketARN, key, versionID string) events.S3BatchJobEvent {
	return events.S3BatchJobEvent{
		InvocationSchemaVersion: "1.0",
		InvocationID:            uuid.NewString(),
		Job:                     events.S3BatchJob{ID: uuid.NewString()},
		Tasks: []events.S3BatchJobTask{{
			TaskID:      uuid.NewString(),
			S3Key:       key,
			S3VersionID: versionID,
			S3BucketARN: bucketARN,
		}},
	}
}

func run(ctx context.Context, evt any) error {
	handler := lambdaboot.Init("compress-cli").WithMetricsOutput(os.Stderr)

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	log.Debug().RawJSON("event", payload).Msg("Invoking handler")

	resp, err := handler.Handle(ctx, payload)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	fmt.Println(string(out))

	if failed(resp) {
		return fmt.Errorf("compression failed")
	}
	return nil
}

// failed reports whether resp carries a failure result.
func failed(resp any) bool {
	switch r := resp.(type) {
	case compressor.DirectResponse:
		return r.StatusCode != http.StatusOK
	case events.S3BatchJobResponse:
		return len(r.Results) == 0 || r.Results[0].ResultCode != compressor.ResultSucceeded
	default:
		return true
	}
}
