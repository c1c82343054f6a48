package hexcolor

import (
	"math"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   RGB
		wantOK bool
	}{
		{name: "white", input: "#FFFFFF", want: RGB{255, 255, 255}, wantOK: true},
		{name: "black", input: "#000000", want: RGB{0, 0, 0}, wantOK: true},
		{name: "lowercase", input: "#ff8000", want: RGB{255, 128, 0}, wantOK: true},
		{name: "no hash", input: "AB12CD", want: RGB{0xAB, 0x12, 0xCD}, wantOK: true},
		{name: "surrounding spaces", input: "  #0A0B0C \t", want: RGB{10, 11, 12}, wantOK: true},
		{name: "empty", input: ""},
		{name: "only hash", input: "#"},
		{name: "short placeholder", input: "#ccc"},
		{name: "long placeholder", input: "#cccccc"},
		{name: "long placeholder upper", input: "#CCCCCC"},
		{name: "three digits", input: "#fff"},
		{name: "eight digits", input: "#FF0000FF"},
		{name: "non hex", input: "#GG0000"},
		{name: "sign inside", input: "#+10000"},
		{name: "double hash", input: "##FF0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Decode(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Decode(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Fatalf("Decode(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHSL(t *testing.T) {
	tests := []struct {
		hex     string
		h, s, l float64
	}{
		{"#FF0000", 0, 1, 0.5},
		{"#00FF00", 120, 1, 0.5},
		{"#0000FF", 240, 1, 0.5},
		{"#FFFF00", 60, 1, 0.5},
		{"#FF00FF", 300, 1, 0.5},
		{"#000000", 0, 0, 0},
		{"#FFFFFF", 0, 0, 1},
		{"#808080", 0, 0, 128.0 / 255.0},
	}
	for _, tt := range tests {
		got, ok := DecodeHSL(tt.hex)
		if !ok {
			t.Fatalf("DecodeHSL(%q) not ok", tt.hex)
		}
		if !near(got.H, tt.h) || !near(got.S, tt.s) || !near(got.L, tt.l) {
			t.Fatalf("DecodeHSL(%q) = %+v, want {%v %v %v}", tt.hex, got, tt.h, tt.s, tt.l)
		}
		if got.H < 0 || got.H >= 360 {
			t.Fatalf("hue out of range for %q: %v", tt.hex, got.H)
		}
	}
}

func TestHSL_NegativeHueWraps(t *testing.T) {
	// red dominant with blue above green lands just below 360
	got, ok := DecodeHSL("#FF0033")
	if !ok {
		t.Fatal("expected color")
	}
	if got.H < 300 || got.H >= 360 {
		t.Fatalf("expected hue in [300,360), got %v", got.H)
	}
}

func TestDecodeHSL_Absent(t *testing.T) {
	if _, ok := DecodeHSL("#ccc"); ok {
		t.Fatal("placeholder must not decode")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, hex := range []string{"#000000", "#ffffff", "#fe0101", "#12ab9f"} {
		c, ok := Decode(hex)
		if !ok {
			t.Fatalf("Decode(%q) failed", hex)
		}
		if got := Encode(c); got != hex {
			t.Fatalf("Encode(Decode(%q)) = %q", hex, got)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(" #FE0101"); got != "#fe0101" {
		t.Fatalf("Normalize = %q", got)
	}
	if got := Normalize("#ccc"); got != "" {
		t.Fatalf("placeholder should normalize to empty, got %q", got)
	}
	if Valid("nope") {
		t.Fatal("expected invalid")
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
