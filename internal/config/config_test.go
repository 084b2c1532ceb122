package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("COMPRESSOR_REGION", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("COMPRESSOR_QUALITY", "")
	t.Setenv("COMPRESSOR_COMPRESSION_LEVEL", "")
	t.Setenv("COMPRESSOR_METRICS_NAMESPACE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Region != DefaultRegion {
		t.Errorf("Region = %q, want %q", cfg.Region, DefaultRegion)
	}
	if cfg.Quality != DefaultQuality {
		t.Errorf("Quality = %d, want %d", cfg.Quality, DefaultQuality)
	}
	if cfg.CompressionLevel != DefaultCompressionLevel {
		t.Errorf("CompressionLevel = %d, want %d", cfg.CompressionLevel, DefaultCompressionLevel)
	}
	if cfg.MetricsNamespace != DefaultMetricsNamespace {
		t.Errorf("MetricsNamespace = %q, want %q", cfg.MetricsNamespace, DefaultMetricsNamespace)
	}
}

func TestLoad_RegionIgnoresLambdaRegion(t *testing.T) {
	// The Lambda runtime always sets AWS_REGION; it must not leak into the
	// bucket region.
	t.Setenv("COMPRESSOR_REGION", "")
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Region != DefaultRegion {
		t.Errorf("Region = %q, want %q", cfg.Region, DefaultRegion)
	}

	t.Setenv("COMPRESSOR_REGION", "ap-south-1")
	cfg, _ = Load()
	if cfg.Region != "ap-south-1" {
		t.Errorf("Region = %q, want ap-south-1", cfg.Region)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		envVar  string
		value   string
		wantErr string
	}{
		{"quality not a number", "COMPRESSOR_QUALITY", "high", "COMPRESSOR_QUALITY"},
		{"quality too large", "COMPRESSOR_QUALITY", "101", "out of range"},
		{"level negative", "COMPRESSOR_COMPRESSION_LEVEL", "-1", "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("COMPRESSOR_QUALITY", "")
			t.Setenv("COMPRESSOR_COMPRESSION_LEVEL", "")
			t.Setenv(tt.envVar, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
