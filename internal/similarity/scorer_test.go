package similarity

import (
	"math"
	"testing"

	errs "filamento/pkg/errors"
)

func mustScorer(t *testing.T, m Metric) *Scorer {
	t.Helper()
	s, err := NewScorer(ConfigFor(m))
	if err != nil {
		t.Fatalf("NewScorer(%s): %v", m, err)
	}
	return s
}

func TestParseMetric(t *testing.T) {
	for in, want := range map[string]Metric{"rgb": MetricRGB, "HSL": MetricHSL, " hsl ": MetricHSL} {
		got, err := ParseMetric(in)
		if err != nil || got != want {
			t.Fatalf("ParseMetric(%q) = %q, %v", in, got, err)
		}
	}
	for _, in := range []string{"", "lab", "rgba"} {
		_, err := ParseMetric(in)
		if err == nil {
			t.Fatalf("ParseMetric(%q) expected error", in)
		}
		if !errs.Is(err, errs.ErrConfig) {
			t.Fatalf("expected config error, got %T", err)
		}
	}
}

func TestNewScorer_RejectsBadConfig(t *testing.T) {
	if _, err := NewScorer(Config{Metric: "cmyk"}); !errs.Is(err, errs.ErrConfig) {
		t.Fatalf("expected config error for unknown metric, got %v", err)
	}
	cfg := ConfigFor(MetricHSL)
	cfg.HueWeight = -1
	if _, err := NewScorer(cfg); err == nil {
		t.Fatal("expected error for negative weight")
	}
	if _, err := NewScorer(Config{Metric: MetricHSL}); err == nil {
		t.Fatal("expected error for all-zero hsl weights")
	}
}

func TestScore_RGB(t *testing.T) {
	s := mustScorer(t, MetricRGB)
	tests := []struct {
		a, b string
		want float64
	}{
		{"#FF0000", "#FF0000", 100},
		{"#000000", "#FFFFFF", 0},
		{"#FF0000", "#FE0101", 100}, // 99.6 rounds up
		{"#FF0000", "#00FF00", 18},
		{"#000000", "#808080", 50},
		{"#000000", "#333333", 80},
		{"#000000", "#343434", 80},
		{"#000000", "#353535", 79},
	}
	for _, tt := range tests {
		if got := s.Score(tt.a, tt.b); got != tt.want {
			t.Fatalf("Score(%s,%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestScore_HSL(t *testing.T) {
	s := mustScorer(t, MetricHSL)
	tests := []struct {
		a, b string
		want float64
	}{
		{"#FF0000", "#FF0000", 100.0},
		{"#FF0000", "#00FF00", 60.0},
		{"#FF0000", "#0000FF", 60.0}, // 240° apart wraps to 120°
		{"#FF0000", "#00FFFF", 40.0},
		{"#000000", "#FFFFFF", 80.0},
		{"#FF0000", "#808080", 80.0}, // 79.96 keeps one decimal
	}
	for _, tt := range tests {
		if got := s.Score(tt.a, tt.b); got != tt.want {
			t.Fatalf("Score(%s,%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestScore_HSLKeepsOneDecimal(t *testing.T) {
	s := mustScorer(t, MetricHSL)
	got := s.Score("#FF0000", "#FE0101")
	if got != math.Round(got*10)/10 {
		t.Fatalf("expected one decimal, got %v", got)
	}
	if got >= 100 || got < 99 {
		t.Fatalf("expected a near match below 100, got %v", got)
	}
}

func TestHueDistance_Wraps(t *testing.T) {
	if got := hueDistance(350, 10); math.Abs(got-20.0/180.0) > 1e-12 {
		t.Fatalf("hueDistance(350,10) = %v, want %v", got, 20.0/180.0)
	}
	if got := hueDistance(10, 350); math.Abs(got-20.0/180.0) > 1e-12 {
		t.Fatalf("hueDistance(10,350) = %v", got)
	}
	if got := hueDistance(0, 180); got != 1 {
		t.Fatalf("hueDistance(0,180) = %v, want 1", got)
	}
}

func TestScore_HueWrapIsClose(t *testing.T) {
	s := mustScorer(t, MetricHSL)
	// #FF002B sits near 350°, #FF2B00 near 10°.
	if got := s.Score("#FF002B", "#FF2B00"); got < 90 {
		t.Fatalf("expected hues across 0° to be close, got %v", got)
	}
}

func TestScore_AbsentIsZero(t *testing.T) {
	for _, m := range []Metric{MetricRGB, MetricHSL} {
		s := mustScorer(t, m)
		for _, pair := range [][2]string{{"", "#FF0000"}, {"#FF0000", "#ccc"}, {"#cccccc", "#cccccc"}, {"zzz", ""}} {
			if got := s.Score(pair[0], pair[1]); got != 0 {
				t.Fatalf("%s Score(%q,%q) = %v, want 0", m, pair[0], pair[1], got)
			}
			if got := s.Exact(pair[0], pair[1]); got != 0 {
				t.Fatalf("%s Exact(%q,%q) = %v, want 0", m, pair[0], pair[1], got)
			}
		}
	}
}

func TestScore_BoundedAndSymmetric(t *testing.T) {
	hexes := []string{"#000000", "#FFFFFF", "#FF0000", "#00FF00", "#0000FF", "#123456", "#FE0101", "#808080", "#FF002B", "#7F7F00", "#ABCDEF"}
	for _, m := range []Metric{MetricRGB, MetricHSL} {
		s := mustScorer(t, m)
		for _, a := range hexes {
			for _, b := range hexes {
				ab, ba := s.Score(a, b), s.Score(b, a)
				if ab < 0 || ab > 100 {
					t.Fatalf("%s Score(%s,%s) = %v out of range", m, a, b, ab)
				}
				if ab != ba {
					t.Fatalf("%s asymmetric: %s/%s = %v vs %v", m, a, b, ab, ba)
				}
			}
		}
	}
}

func TestExact_OrdersWithinRoundedTie(t *testing.T) {
	s := mustScorer(t, MetricRGB)
	exactSame := s.Exact("#FF0000", "#FF0000")
	exactNear := s.Exact("#FF0000", "#FE0101")
	if !(exactSame > exactNear) {
		t.Fatalf("expected identical color to outrank near color: %v vs %v", exactSame, exactNear)
	}
	if s.Round(exactNear) != 100 {
		t.Fatalf("expected near color to round to 100, got %v", s.Round(exactNear))
	}
}

func TestNewDefault(t *testing.T) {
	if NewDefault().Metric() != MetricRGB {
		t.Fatal("default metric should be rgb")
	}
}
