package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "filamento/pkg/errors"
)

var configKeys = []string{
	"PORT", "ENV", "CATALOG_FILE", "SCHEMA_FILE", "SCHEMA_INFER", "SIMILARITY_METRIC",
	"MATCH_THRESHOLD", "RESULT_LIMIT", "LOG_LEVEL", "LOG_FORMAT", "LOG_FILE",
	"ENABLE_FILE_LOGGING", "METRICS_ENABLED", "METRICS_PATH", "OTEL_ENABLED",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ORIGIN", "CONFIG_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

// writeSources creates a catalog and schema file and points the env at them.
func writeSources(t *testing.T) (catalog, schema string) {
	t.Helper()
	dir := t.TempDir()
	catalog = filepath.Join(dir, "catalog.csv")
	schema = filepath.Join(dir, "schema.yaml")
	if err := os.WriteFile(catalog, []byte("Tipo,Color Base\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(schema, []byte("brands: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CATALOG_FILE", catalog)
	t.Setenv("SCHEMA_FILE", schema)
	return catalog, schema
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	c := Load()
	if c.Port != "8080" || c.Env != "development" {
		t.Fatalf("unexpected server defaults: %+v", c)
	}
	if c.SimilarityMetric != "rgb" {
		t.Fatalf("metric default = %q, want rgb", c.SimilarityMetric)
	}
	if c.MatchThreshold != 0 {
		t.Fatalf("threshold default = %v, want 0", c.MatchThreshold)
	}
	if !c.MetricsEnabled {
		t.Fatalf("metrics should default on in development")
	}
	if c.RateLimitRPS != 20 || c.RateLimitBurst != 40 {
		t.Fatalf("rate limit defaults = %v/%d", c.RateLimitRPS, c.RateLimitBurst)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "Production")
	t.Setenv("SIMILARITY_METRIC", " HSL ")
	t.Setenv("MATCH_THRESHOLD", "80")
	t.Setenv("SCHEMA_INFER", "true")
	t.Setenv("CONFIG_FILE", " ./filamento.env ")
	c := Load()
	if c.Env != "production" || c.MetricsEnabled {
		t.Fatalf("production should disable metrics by default: %+v", c)
	}
	if c.SimilarityMetric != "hsl" || c.MatchThreshold != 80 || !c.SchemaInfer {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.ConfigFile != "./filamento.env" {
		t.Fatalf("config file = %q", c.ConfigFile)
	}
}

func TestLoadBadThresholdFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("MATCH_THRESHOLD", "high")
	if c := Load(); c.MatchThreshold != 0 {
		t.Fatalf("threshold = %v, want fallback 0", c.MatchThreshold)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "valid", env: nil},
		{name: "hsl", env: map[string]string{"SIMILARITY_METRIC": "hsl"}},
		{name: "unknown metric", env: map[string]string{"SIMILARITY_METRIC": "lab"}, wantErr: "SIMILARITY_METRIC"},
		{name: "threshold too high", env: map[string]string{"MATCH_THRESHOLD": "101"}, wantErr: "MATCH_THRESHOLD"},
		{name: "negative threshold", env: map[string]string{"MATCH_THRESHOLD": "-1"}, wantErr: "MATCH_THRESHOLD"},
		{name: "NaN threshold", env: map[string]string{"MATCH_THRESHOLD": "NaN"}, wantErr: "MATCH_THRESHOLD"},
		{name: "infinite threshold", env: map[string]string{"MATCH_THRESHOLD": "+Inf"}, wantErr: "MATCH_THRESHOLD"},
		{name: "NaN rate limit", env: map[string]string{"RATE_LIMIT_RPS": "NaN"}, wantErr: "RATE_LIMIT_RPS"},
		{name: "bad port", env: map[string]string{"PORT": "70000"}, wantErr: "PORT"},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}, wantErr: "LOG_LEVEL"},
		{name: "bad log format", env: map[string]string{"LOG_FORMAT": "xml"}, wantErr: "LOG_FORMAT"},
		{name: "missing catalog", env: map[string]string{"CATALOG_FILE": "/nonexistent/catalog.csv"}, wantErr: "CATALOG_FILE"},
		{name: "zero burst", env: map[string]string{"RATE_LIMIT_BURST": "0"}, wantErr: "RATE_LIMIT_BURST"},
		{name: "rate limit off", env: map[string]string{"RATE_LIMIT_RPS": "0", "RATE_LIMIT_BURST": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			writeSources(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			err := Load().Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error mentioning %s", tt.wantErr)
			}
			if !errs.Is(err, errs.ErrValidation) {
				t.Fatalf("expected validation error, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSchemaSources(t *testing.T) {
	clearEnv(t)
	writeSources(t)
	t.Setenv("SCHEMA_FILE", "")
	if err := Load().Validate(); err != nil {
		t.Fatalf("embedded schema should be enough: %v", err)
	}
	t.Setenv("SCHEMA_INFER", "true")
	if err := Load().Validate(); err != nil {
		t.Fatalf("inferred schema should not need a file: %v", err)
	}
	writeSources(t)
	if err := Load().Validate(); err == nil || !strings.Contains(err.Error(), "SCHEMA_INFER") {
		t.Fatalf("expected SCHEMA_INFER conflict, got %v", err)
	}
}

func TestValidateMissingCatalog(t *testing.T) {
	clearEnv(t)
	writeSources(t)
	t.Setenv("CATALOG_FILE", "/nonexistent/catalog.csv")
	err := Load().Validate()
	if err == nil || !strings.Contains(err.Error(), "CATALOG_FILE") {
		t.Fatalf("expected CATALOG_FILE error, got %v", err)
	}
	if !errs.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation kind, got %T", err)
	}
}

func TestConfigSummary(t *testing.T) {
	clearEnv(t)
	s := Load().GetConfigSummary()
	if s["similarity_metric"] != "rgb" {
		t.Fatalf("summary metric = %v", s["similarity_metric"])
	}
	if _, ok := s["match_threshold"]; !ok {
		t.Fatalf("summary missing threshold")
	}
}
