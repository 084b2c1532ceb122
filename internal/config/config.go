// Package config loads the compressor's runtime configuration from the
// environment once at cold start.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultRegion           = "us-east-1"
	DefaultQuality          = 70
	DefaultCompressionLevel = 9
	DefaultMetricsNamespace = "ImageCompressor"
)

// Config holds every environment-derived setting used by the pipeline.
type Config struct {
	Region           string
	Quality          int
	CompressionLevel int
	LogLevel         string
	MetricsNamespace string
}

// Load reads the configuration from environment variables.
//
//	COMPRESSOR_REGION             storage region for batch tasks (default us-east-1)
//	COMPRESSOR_QUALITY            encode quality for batch tasks, 0-100 (default 70)
//	COMPRESSOR_COMPRESSION_LEVEL  PNG zlib level, 0-9 (default 9)
//	COMPRESSOR_LOG_LEVEL          debug, info, warn, error (default info)
//	COMPRESSOR_METRICS_NAMESPACE  CloudWatch EMF namespace
func Load() (Config, error) {
	cfg := Config{
		Region:           envOrDefault("COMPRESSOR_REGION", DefaultRegion),
		LogLevel:         envOrDefault("COMPRESSOR_LOG_LEVEL", "info"),
		MetricsNamespace: envOrDefault("COMPRESSOR_METRICS_NAMESPACE", DefaultMetricsNamespace),
	}

	var err error
	cfg.Quality, err = intEnv("COMPRESSOR_QUALITY", DefaultQuality, 0, 100)
	if err != nil {
		return Config{}, err
	}
	cfg.CompressionLevel, err = intEnv("COMPRESSOR_COMPRESSION_LEVEL", DefaultCompressionLevel, 0, 9)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func envOrDefault(envVar, defaultVal string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultVal
}

func intEnv(envVar string, defaultVal, lo, hi int) (int, error) {
	raw := os.Getenv(envVar)
	if raw == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", envVar, err)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%s: %d out of range [%d, %d]", envVar, n, lo, hi)
	}
	return n, nil
}
