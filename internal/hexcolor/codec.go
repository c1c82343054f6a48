// Package hexcolor decodes spreadsheet hex cells ("#RRGGBB") into RGB and
// HSL values. Anything that is not exactly six hex digits, and the "#ccc"
// placeholder the sheet uses for missing swatches, decodes to no color.
package hexcolor

import (
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit per channel color.
type RGB struct {
	R, G, B uint8
}

// HSL holds hue in degrees [0,360) and saturation/lightness in [0,1].
type HSL struct {
	H, S, L float64
}

// placeholders are sentinel cells meaning "no color data", not a real gray.
var placeholders = map[string]struct{}{
	"ccc":    {},
	"cccccc": {},
}

// Decode parses a hex color. ok is false for empty, placeholder or malformed input.
func Decode(hex string) (RGB, bool) {
	s := strings.TrimSpace(hex)
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return RGB{}, false
	}
	if _, isPlaceholder := placeholders[strings.ToLower(s)]; isPlaceholder {
		return RGB{}, false
	}
	r, err := strconv.ParseUint(s[0:2], 16, 8)
	if err != nil {
		return RGB{}, false
	}
	g, err := strconv.ParseUint(s[2:4], 16, 8)
	if err != nil {
		return RGB{}, false
	}
	b, err := strconv.ParseUint(s[4:6], 16, 8)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(r), G: uint8(g), B: uint8(b)}, true
}

// DecodeHSL is Decode followed by RGB.HSL.
func DecodeHSL(hex string) (HSL, bool) {
	c, ok := Decode(hex)
	if !ok {
		return HSL{}, false
	}
	return c.HSL(), true
}

// Valid reports whether hex decodes to a color.
func Valid(hex string) bool {
	_, ok := Decode(hex)
	return ok
}

// HSL converts to hue/saturation/lightness. Achromatic colors get h=s=0.
func (c RGB) HSL() HSL {
	h, s, l := c.colorful().Hsl()
	if h >= 360 {
		h -= 360
	}
	return HSL{H: h, S: s, L: l}
}

// Hex encodes the color as lowercase "#rrggbb".
func (c RGB) Hex() string { return c.colorful().Hex() }

// Encode is the inverse of Decode for valid colors.
func Encode(c RGB) string { return c.Hex() }

// Normalize returns the canonical "#rrggbb" form of hex, or "" when it does not decode.
func Normalize(hex string) string {
	c, ok := Decode(hex)
	if !ok {
		return ""
	}
	return c.Hex()
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}
