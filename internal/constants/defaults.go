package constants

import "time"

// Centralized default values for timeouts, intervals, and related settings.
// These provide sane defaults; environment/config may override where supported.

const (
	// Similarity metric used when SIMILARITY_METRIC is unset.
	DefaultMetric = "rgb"

	// Catalog column names of the published spreadsheet.
	DefaultTypeColumn      = "Tipo"
	DefaultBaseColorColumn = "Color Base"
	CodeColumnSuffix       = " Code"
	ColorColumnSuffix      = " Color"

	// HTTP server
	HTTPReadTimeout  = 10 * time.Second
	HTTPWriteTimeout = 15 * time.Second
	HTTPIdleTimeout  = 60 * time.Second

	// File watching: collapse editor write bursts into one reload.
	FileWatchDebounce = 250 * time.Millisecond

	HealthCheckTimeout = 5 * time.Second
	RateLimiterIdleTTL = 10 * time.Minute

	// App shutdown
	GracefulShutdownTimeoutDefault = 10 * time.Second
)
