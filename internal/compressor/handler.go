// Package compressor runs the recompression pipeline for one invocation:
// parse the event, fetch the object, transcode it, write it back, and shape
// the result for the caller.
package compressor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fpang/image-compressor/internal/config"
	"github.com/fpang/image-compressor/internal/event"
	"github.com/fpang/image-compressor/internal/metrics"
	"github.com/fpang/image-compressor/internal/s3util"
	"github.com/fpang/image-compressor/internal/transcode"
)

// ContentType is set on every written object, including JPEG output.
// Downstream consumers read it as is, so it is not derived from the format.
const ContentType = "image/png"

// ObjectStore reads and writes whole objects. *s3util.Store implements it.
type ObjectStore interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) (*s3util.PutResult, error)
}

// Handler processes compressor invocations.
type Handler struct {
	cfg      config.Config
	newStore func(region string) ObjectStore
	metrics  io.Writer
}

// NewHandler returns a Handler. newStore is called once per invocation with
// the request's region.
func NewHandler(cfg config.Config, newStore func(region string) ObjectStore) *Handler {
	return &Handler{cfg: cfg, newStore: newStore, metrics: os.Stdout}
}

// WithMetricsOutput redirects EMF records, which go to stdout by default.
func (h *Handler) WithMetricsOutput(w io.Writer) *Handler {
	h.metrics = w
	return h
}

// pipelineStats carries sizes for logging and metrics.
type pipelineStats struct {
	inputBytes  int
	outputBytes int
}

// Handle is the Lambda entry point. Pipeline failures are reported in the
// response, never as a returned error.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (any, error) {
	start := time.Now()

	// Configured region and quality apply to batch tasks; direct events
	// carry their own or fall back to fixed defaults.
	inv, err := event.Parse(raw, event.Defaults{Region: h.cfg.Region, Quality: h.cfg.Quality})
	logger := invocationLogger(ctx, inv)

	var put *s3util.PutResult
	var stats pipelineStats
	if err == nil {
		logger.Info().Int("quality", inv.Request.Quality).Msg("Processing compression request")
		put, stats, err = h.process(ctx, logger, inv.Request)
	}

	rec := metrics.NewWithWriter(h.cfg.MetricsNamespace, h.metrics).
		Dimension("Operation", "compress").
		Dimension("InvocationKind", inv.Kind.String()).
		Duration("LatencyMs", time.Since(start)).
		Property("key", inv.Request.Key)
	defer rec.Flush()

	if err != nil {
		kind := KindOf(err)
		logger.Error().Err(err).Str("errorKind", string(kind)).Dur("duration", time.Since(start)).Msg("Compression failed")
		rec.Count("Failed").Property("errorKind", string(kind))
		return formatFailure(inv, err), nil
	}

	logger.Info().
		Int("inputSize", stats.inputBytes).
		Int("outputSize", stats.outputBytes).
		Str("etag", put.ETag).
		Dur("duration", time.Since(start)).
		Msg("Image compressed and uploaded")
	rec.Count("Succeeded").
		Metric("InputBytes", float64(stats.inputBytes), metrics.UnitBytes).
		Metric("OutputBytes", float64(stats.outputBytes), metrics.UnitBytes)
	return formatSuccess(inv, put), nil
}

// process runs fetch, transcode and store in order, stopping at the first error.
func (h *Handler) process(ctx context.Context, logger zerolog.Logger, req event.Request) (*s3util.PutResult, pipelineStats, error) {
	var stats pipelineStats
	store := h.newStore(req.Region)

	src, err := store.Get(ctx, req.Bucket, req.Key)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %w", ErrStorageRead, err)
	}
	stats.inputBytes = len(src)

	out, info, err := transcode.Transcode(src, req.Extension, transcode.Options{
		CompressionLevel: h.cfg.CompressionLevel,
		Quality:          req.Quality,
	})
	if err != nil {
		return nil, stats, err
	}
	stats.outputBytes = len(out)

	logger.Debug().
		Str("sourceFormat", info.Format).
		Str("targetFormat", req.Extension).
		Int("width", info.Width).
		Int("height", info.Height).
		Int("inputSize", stats.inputBytes).
		Int("outputSize", stats.outputBytes).
		Msg("Image transcoded")

	if info.HasCamera() {
		logger.Debug().
			Str("cameraMake", info.CameraMake).
			Str("cameraModel", info.CameraModel).
			Msg("EXIF metadata dropped by re-encode")
	}

	put, err := store.Put(ctx, req.Bucket, req.Key, out, ContentType)
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	return put, stats, nil
}

func invocationLogger(ctx context.Context, inv *event.Invocation) zerolog.Logger {
	lc := log.With().
		Str("invocationKind", inv.Kind.String()).
		Str("bucket", inv.Request.Bucket).
		Str("key", inv.Request.Key)
	if lctx, ok := lambdacontext.FromContext(ctx); ok {
		lc = lc.Str("requestId", lctx.AwsRequestID)
	}
	if inv.Batch != nil {
		lc = lc.Str("invocationId", inv.Batch.InvocationID).Str("taskId", inv.Batch.TaskID)
	}
	return lc.Logger()
}
