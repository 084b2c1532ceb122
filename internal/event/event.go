// Package event normalizes the two invocation shapes the compressor accepts.
//
// A direct invocation names the object explicitly:
//
//	{"region": "us-east-1", "bucket": "b", "key": "photos/a.png", "quality": 80}
//
// An S3 Batch Operations invocation carries a tasks array:
//
//	{"invocationSchemaVersion": "1.0", "invocationId": "...",
//	 "tasks": [{"taskId": "...", "s3BucketArn": "arn:aws:s3:::b", "s3Key": "a.png"}]}
//
// The shape is detected once, by the presence of a top-level "tasks" key.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

var (
	// ErrMissingInput is returned when the bucket or key cannot be resolved.
	ErrMissingInput = errors.New("missing bucket or key")
	// ErrInvalidEvent is returned when the payload is not a JSON object or a
	// field has the wrong type (e.g. "quality": 80.5).
	ErrInvalidEvent = errors.New("invalid event")
)

// Defaults applied to direct invocations. Unlike batch invocations, these
// are fixed and not taken from configuration.
const (
	DirectRegion  = "us-east-1"
	DirectQuality = 70
)

// Kind identifies which invocation shape was received.
type Kind int

const (
	KindDirect Kind = iota
	KindBatch
)

func (k Kind) String() string {
	if k == KindBatch {
		return "batch"
	}
	return "direct"
}

// Defaults fill request fields a batch event does not carry.
type Defaults struct {
	Region  string
	Quality int
}

// Request is the normalized unit of work.
type Request struct {
	Bucket    string
	Key       string
	Quality   int
	Extension string
	Region    string
}

// Invocation is the parsed event. Batch carries the envelope needed to
// shape the response and is nil for direct invocations.
type Invocation struct {
	Kind    Kind
	Request Request
	Batch   *BatchMeta
}

// BatchMeta is the part of a batch event echoed back in the response.
type BatchMeta struct {
	InvocationSchemaVersion string
	InvocationID            string
	TaskID                  string
}

// DirectEvent is the direct invocation payload. A zero Quality or empty
// Region means "use the default".
type DirectEvent struct {
	Region  string `json:"region,omitempty"`
	Bucket  string `json:"bucket"`
	Key     string `json:"key"`
	Quality int    `json:"quality,omitempty"`
}

// objectRef is decoded on its own when a full decode fails, so the failed
// request can still be logged by bucket and key.
type objectRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// Parse detects the shape of raw and normalizes it. batchDefaults supply
// region and quality for batch events; direct events use DirectRegion and
// DirectQuality. On failure Parse still returns the Invocation, filled as
// far as the payload allows, so the caller can address the failed task.
func Parse(raw json.RawMessage, batchDefaults Defaults) (*Invocation, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return &Invocation{Kind: KindDirect}, fmt.Errorf("%w: not a JSON object: %w", ErrInvalidEvent, err)
	}
	if fields == nil {
		return &Invocation{Kind: KindDirect}, fmt.Errorf("%w: null payload", ErrInvalidEvent)
	}

	if _, ok := fields["tasks"]; ok {
		return parseBatch(raw, batchDefaults)
	}
	return parseDirect(raw)
}

func parseDirect(raw json.RawMessage) (*Invocation, error) {
	inv := &Invocation{Kind: KindDirect}

	var evt DirectEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		var ref objectRef
		_ = json.Unmarshal(raw, &ref)
		inv.Request.Bucket = ref.Bucket
		inv.Request.Key = ref.Key
		inv.Request.Extension = Extension(ref.Key)
		return inv, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	inv.Request = Request{
		Bucket:    evt.Bucket,
		Key:       evt.Key,
		Quality:   evt.Quality,
		Extension: Extension(evt.Key),
		Region:    evt.Region,
	}
	if inv.Request.Quality == 0 {
		inv.Request.Quality = DirectQuality
	}
	if inv.Request.Region == "" {
		inv.Request.Region = DirectRegion
	}

	if evt.Bucket == "" || evt.Key == "" {
		return inv, fmt.Errorf("%w: bucket=%q key=%q", ErrMissingInput, evt.Bucket, evt.Key)
	}
	return inv, nil
}

func parseBatch(raw json.RawMessage, defaults Defaults) (*Invocation, error) {
	inv := &Invocation{Kind: KindBatch, Batch: &BatchMeta{}}

	var evt events.S3BatchJobEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		var envelope struct {
			InvocationSchemaVersion string `json:"invocationSchemaVersion"`
			InvocationID            string `json:"invocationId"`
		}
		_ = json.Unmarshal(raw, &envelope)
		inv.Batch.InvocationSchemaVersion = envelope.InvocationSchemaVersion
		inv.Batch.InvocationID = envelope.InvocationID
		return inv, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	inv.Batch.InvocationSchemaVersion = evt.InvocationSchemaVersion
	inv.Batch.InvocationID = evt.InvocationID

	if len(evt.Tasks) == 0 {
		return inv, fmt.Errorf("%w: batch event has no tasks", ErrMissingInput)
	}

	// Only the first task is processed; Batch Operations sends one per invocation.
	task := evt.Tasks[0]
	inv.Batch.TaskID = task.TaskID

	bucket := BucketFromARN(task.S3BucketARN)
	inv.Request = Request{
		Bucket:    bucket,
		Key:       task.S3Key,
		Quality:   defaults.Quality,
		Extension: Extension(task.S3Key),
		Region:    defaults.Region,
	}

	if bucket == "" || task.S3Key == "" {
		return inv, fmt.Errorf("%w: s3BucketArn=%q s3Key=%q", ErrMissingInput, task.S3BucketARN, task.S3Key)
	}
	return inv, nil
}

// BucketFromARN returns the bucket name after the last ":::" in an S3 bucket
// ARN (arn:aws:s3:::name). A value without ":::" is returned as is.
func BucketFromARN(arn string) string {
	if i := strings.LastIndex(arn, ":::"); i >= 0 {
		return arn[i+3:]
	}
	return arn
}

// Extension returns the substring after the final "." in key. A key with no
// "." is returned whole.
func Extension(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 {
		return key[i+1:]
	}
	return key
}
