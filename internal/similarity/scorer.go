package similarity

import (
	"fmt"
	"math"
	"strings"

	"filamento/internal/constants"
	"filamento/internal/hexcolor"
	errs "filamento/pkg/errors"
)

// Metric selects how two colors are compared.
type Metric string

const (
	// MetricRGB is Euclidean distance in RGB space, reported as a whole number.
	MetricRGB Metric = "rgb"
	// MetricHSL is a weighted hue/saturation/lightness distance, reported with one decimal.
	MetricHSL Metric = "hsl"
)

// maxRGBDistance is the distance between black and white.
var maxRGBDistance = math.Sqrt(3 * 255 * 255)

// ParseMetric maps a configuration value to a Metric. Unknown values are a
// configuration error; there is no fallback.
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case MetricRGB:
		return MetricRGB, nil
	case MetricHSL:
		return MetricHSL, nil
	default:
		return "", errs.NewConfig("similarity.ParseMetric", "SIMILARITY_METRIC", s, "unknown metric (must be one of: rgb, hsl)")
	}
}

// Config allows tuning the scorer without code changes.
type Config struct {
	Metric Metric

	// HSL weights; only used by MetricHSL.
	HueWeight        float64
	SaturationWeight float64
	LightnessWeight  float64
}

// DefaultConfig returns the RGB metric with the standard HSL weights.
func DefaultConfig() Config {
	return Config{
		Metric:           MetricRGB,
		HueWeight:        constants.HSLHueWeight,
		SaturationWeight: constants.HSLSaturationWeight,
		LightnessWeight:  constants.HSLLightnessWeight,
	}
}

// ConfigFor returns DefaultConfig with the given metric.
func ConfigFor(m Metric) Config {
	cfg := DefaultConfig()
	cfg.Metric = m
	return cfg
}

// Scorer computes bounded similarity scores between hex colors.
// It holds no mutable state and is safe for concurrent use.
type Scorer struct {
	cfg Config
}

// NewScorer validates cfg and returns a Scorer.
func NewScorer(cfg Config) (*Scorer, error) {
	if _, err := ParseMetric(string(cfg.Metric)); err != nil {
		return nil, err
	}
	if cfg.HueWeight < 0 || cfg.SaturationWeight < 0 || cfg.LightnessWeight < 0 {
		return nil, errs.NewConfig("similarity.NewScorer", "weights", fmt.Sprintf("%v/%v/%v", cfg.HueWeight, cfg.SaturationWeight, cfg.LightnessWeight), "weights must not be negative")
	}
	if cfg.Metric == MetricHSL && cfg.HueWeight+cfg.SaturationWeight+cfg.LightnessWeight == 0 {
		return nil, errs.NewConfig("similarity.NewScorer", "weights", "0", "hsl metric needs at least one non-zero weight")
	}
	return &Scorer{cfg: cfg}, nil
}

// NewDefault returns a scorer using DefaultConfig.
func NewDefault() *Scorer { return &Scorer{cfg: DefaultConfig()} }

// Metric reports the active metric.
func (s *Scorer) Metric() Metric { return s.cfg.Metric }

// Score returns the similarity of a and b in [0,100], rounded per metric:
// RGB to the nearest integer, HSL to one decimal. Either side failing to
// decode yields 0.
func (s *Scorer) Score(a, b string) float64 {
	v, ok := s.exact(a, b)
	if !ok {
		return 0
	}
	return s.round(v)
}

// Exact is Score without rounding. Rankings order by this value so that
// colors reported with the same rounded score keep their true order.
func (s *Scorer) Exact(a, b string) float64 {
	v, _ := s.exact(a, b)
	return v
}

// Round applies the metric's reporting precision to an exact score.
func (s *Scorer) Round(v float64) float64 { return s.round(v) }

func (s *Scorer) exact(a, b string) (float64, bool) {
	switch s.cfg.Metric {
	case MetricHSL:
		ha, okA := hexcolor.DecodeHSL(a)
		hb, okB := hexcolor.DecodeHSL(b)
		if !okA || !okB {
			return 0, false
		}
		return s.hslSimilarity(ha, hb), true
	default:
		ca, okA := hexcolor.Decode(a)
		cb, okB := hexcolor.Decode(b)
		if !okA || !okB {
			return 0, false
		}
		return rgbSimilarity(ca, cb), true
	}
}

func (s *Scorer) round(v float64) float64 {
	if s.cfg.Metric == MetricHSL {
		return math.Round(v*10) / 10
	}
	return math.Round(v)
}

func rgbSimilarity(a, b hexcolor.RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	dist := math.Sqrt(dr*dr + dg*dg + db*db)
	return clamp((1 - dist/maxRGBDistance) * 100)
}

func (s *Scorer) hslSimilarity(a, b hexcolor.HSL) float64 {
	dh := hueDistance(a.H, b.H)
	ds := math.Abs(a.S - b.S)
	dl := math.Abs(a.L - b.L)
	distance := s.cfg.HueWeight*dh + s.cfg.SaturationWeight*ds + s.cfg.LightnessWeight*dl
	return clamp((1 - distance) * 100)
}

// hueDistance is the circular hue difference scaled to [0,1].
func hueDistance(h1, h2 float64) float64 {
	d := math.Abs(h1 - h2)
	if 360-d < d {
		d = 360 - d
	}
	return d / constants.MaxHueDelta
}

func clamp(v float64) float64 {
	if v < constants.MinSimilarity {
		return constants.MinSimilarity
	}
	if v > constants.MaxSimilarity {
		return constants.MaxSimilarity
	}
	return v
}
