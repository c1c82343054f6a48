package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"filamento/internal/constants"
)

type Config struct {
	Port string
	Env  string // development, staging, production

	// Catalog sources
	CatalogFile string // exported spreadsheet (CSV)
	SchemaFile  string // brand/column declaration (YAML); embedded default when empty
	SchemaInfer bool   // derive brands from header text instead

	// Matching
	SimilarityMetric string  // "rgb" or "hsl"
	MatchThreshold   float64 // inclusive, 0-100
	ResultLimit      int     // 0 = unlimited

	// Logging
	LogLevel          string
	LogFormat         string // "json" or "text"
	LogFile           string
	EnableFileLogging bool

	// Metrics & tracing
	MetricsEnabled bool
	MetricsPath    string
	OTelEnabled    bool

	// HTTP
	RateLimitRPS   float64 // per client; 0 disables
	RateLimitBurst int
	CORSOrigin     string

	// Hot reload: .env-style file re-applied when it changes
	ConfigFile string
}

func Load() *Config {
	env := strings.ToLower(getEnv("ENV", "development"))
	devDefault := env == "development" || env == "staging"

	threshold, err := strconv.ParseFloat(getEnv("MATCH_THRESHOLD", strconv.FormatFloat(constants.DefaultMatchThreshold, 'f', -1, 64)), 64)
	if err != nil {
		log.Printf("[Warning] MATCH_THRESHOLD is not a number, using %v", constants.DefaultMatchThreshold)
		threshold = constants.DefaultMatchThreshold
	}
	resultLimit, _ := strconv.Atoi(getEnv("RESULT_LIMIT", "0"))
	schemaInfer, _ := strconv.ParseBool(getEnv("SCHEMA_INFER", "false"))
	enableFileLogging, _ := strconv.ParseBool(getEnv("ENABLE_FILE_LOGGING", "false"))
	metricsEnabled, _ := strconv.ParseBool(getEnv("METRICS_ENABLED", strconv.FormatBool(devDefault)))
	otelEnabled, _ := strconv.ParseBool(getEnv("OTEL_ENABLED", "false"))
	rateRPS, _ := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "20"), 64)
	rateBurst, _ := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "40"))

	return &Config{
		Port: getEnv("PORT", "8080"),
		Env:  env,

		CatalogFile: getEnv("CATALOG_FILE", "./data/catalog.csv"),
		SchemaFile:  getEnv("SCHEMA_FILE", ""),
		SchemaInfer: schemaInfer,

		SimilarityMetric: strings.ToLower(strings.TrimSpace(getEnv("SIMILARITY_METRIC", constants.DefaultMetric))),
		MatchThreshold:   threshold,
		ResultLimit:      resultLimit,

		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
		LogFile:           getEnv("LOG_FILE", "./logs/filamento.log"),
		EnableFileLogging: enableFileLogging,

		MetricsEnabled: metricsEnabled,
		MetricsPath:    getEnv("METRICS_PATH", "/metrics"),
		OTelEnabled:    otelEnabled,

		RateLimitRPS:   rateRPS,
		RateLimitBurst: rateBurst,
		CORSOrigin:     getEnv("CORS_ORIGIN", "*"),

		ConfigFile: strings.TrimSpace(getEnv("CONFIG_FILE", "")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
