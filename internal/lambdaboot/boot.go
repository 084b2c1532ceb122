// Package lambdaboot holds the cold-start bootstrap shared by the compressor
// entry points: logging, configuration, AWS config, and the startup summary.
package lambdaboot

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog/log"

	"github.com/fpang/image-compressor/internal/compressor"
	"github.com/fpang/image-compressor/internal/config"
	"github.com/fpang/image-compressor/internal/logging"
	"github.com/fpang/image-compressor/internal/s3util"
)

// Init initializes logging, loads configuration and the default AWS config,
// and builds the handler. Fatals on any error.
func Init(name string) *compressor.Handler {
	initStart := time.Now()
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	awsCfg := InitAWS(cfg.Region)
	factory := s3util.NewStoreFactory(awsCfg)
	handler := compressor.NewHandler(cfg, func(region string) compressor.ObjectStore {
		return factory(region)
	})

	StartupLog(name, initStart, cfg).Log()

	return handler
}

// InitAWS loads the default AWS config pinned to region.
func InitAWS(region string) aws.Config {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return cfg
}

// StartupLog prepares the cold-start summary for cfg.
func StartupLog(name string, initStart time.Time, cfg config.Config) *logging.StartupLogger {
	return logging.NewStartupLogger(name).
		CommitHash(commitHash).
		Config("region", cfg.Region).
		Config("quality", strconv.Itoa(cfg.Quality)).
		Config("compressionLevel", strconv.Itoa(cfg.CompressionLevel)).
		Config("metricsNamespace", cfg.MetricsNamespace).
		Config("contentType", compressor.ContentType).
		InitDuration(time.Since(initStart))
}

// commitHash is set at build time:
//
//	go build -ldflags "-X github.com/fpang/image-compressor/internal/lambdaboot.commitHash=$(git rev-parse --short HEAD)"
var commitHash string
