package constants

// Centralized threshold values used across the application.
// These are not configuration knobs; use pkg/config for env-driven settings.

const (
	// Similarity scores are reported on a 0-100 scale.
	MinSimilarity = 0.0
	MaxSimilarity = 100.0

	// Default ranking threshold (inclusive). Deployments commonly run with 80.
	DefaultMatchThreshold = 0.0

	// HSL metric weights. Hue dominates perceived filament color.
	HSLHueWeight        = 0.6
	HSLSaturationWeight = 0.2
	HSLLightnessWeight  = 0.2

	// Maximum circular hue difference in degrees.
	MaxHueDelta = 180.0
)
