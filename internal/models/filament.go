package models

import "strings"

// ColorRecord is one brand's filament color in one catalog row.
// Records are built fresh from the table and never mutated.
type ColorRecord struct {
	Brand     string `json:"brand"`
	Type      string `json:"type"`
	BaseColor string `json:"base_color,omitempty"`
	ColorName string `json:"color_name"`
	Code      string `json:"code,omitempty"`
	Hex       string `json:"hex,omitempty"`
}

// RecordKey is the identity used for de-duplication.
type RecordKey struct {
	Brand     string
	ColorName string
	Hex       string
	Code      string
}

// Key returns the record identity (brand, color name, hex, code).
func (r ColorRecord) Key() RecordKey {
	return RecordKey{Brand: r.Brand, ColorName: r.ColorName, Hex: r.Hex, Code: r.Code}
}

// HasName reports whether the record carries a displayable color name.
func (r ColorRecord) HasName() bool { return strings.TrimSpace(r.ColorName) != "" }

// ScoredCandidate pairs a candidate record with its similarity to the base (0-100).
type ScoredCandidate struct {
	Record     ColorRecord `json:"record"`
	Similarity float64     `json:"similarity"`
}
