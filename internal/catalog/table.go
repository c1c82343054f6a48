// Package catalog turns the published filament spreadsheet into ColorRecords
// and answers the lookups behind the type / base color / brand filters.
package catalog

import (
	"strings"

	"filamento/internal/models"
)

// Row is one sheet line: a material type and base color with each brand's
// color for it. Brands with a blank name cell have no record.
type Row struct {
	Type      string
	BaseColor string
	Records   []models.ColorRecord
}

// record returns the brand's record in this row.
func (r Row) record(brand string) (models.ColorRecord, bool) {
	for _, rec := range r.Records {
		if rec.Brand == brand {
			return rec, true
		}
	}
	return models.ColorRecord{}, false
}

// Table is an immutable snapshot of the catalog. Reloads build a new Table.
type Table struct {
	schema Schema
	rows   []Row
}

func (t *Table) Schema() Schema { return t.schema }
func (t *Table) Len() int       { return len(t.rows) }

// Rows returns a copy of the table rows.
func (t *Table) Rows() []Row { return append([]Row(nil), t.rows...) }

// Types lists distinct non-empty material types in first-seen order.
func (t *Table) Types() []string {
	return t.distinct(func(r Row) (string, bool) { return r.Type, true })
}

// BaseColors lists distinct base colors, limited to typ when it is non-empty.
func (t *Table) BaseColors(typ string) []string {
	return t.distinct(func(r Row) (string, bool) {
		return r.BaseColor, typ == "" || r.Type == typ
	})
}

// Brands lists brands in schema order.
func (t *Table) Brands() []string { return t.schema.BrandNames() }

// HasBrand reports whether the schema declares brand.
func (t *Table) HasBrand(brand string) bool {
	for _, b := range t.schema.Brands {
		if b.Name == brand {
			return true
		}
	}
	return false
}

// FindRow returns the first row with the given type and base color.
func (t *Table) FindRow(typ, baseColor string) (Row, bool) {
	for _, r := range t.rows {
		if r.Type == typ && r.BaseColor == baseColor {
			return r, true
		}
	}
	return Row{}, false
}

// Lookup returns brand's record in the first row matching typ and baseColor.
func (t *Table) Lookup(typ, baseColor, brand string) (models.ColorRecord, bool) {
	row, ok := t.FindRow(typ, baseColor)
	if !ok {
		return models.ColorRecord{}, false
	}
	return row.record(brand)
}

// Equivalents returns the other brands' records from the same row, in brand
// order. Records without a color name are left out.
func (t *Table) Equivalents(typ, baseColor, brand string) []models.ColorRecord {
	row, ok := t.FindRow(typ, baseColor)
	if !ok {
		return nil
	}
	out := make([]models.ColorRecord, 0, len(row.Records))
	for _, rec := range row.Records {
		if rec.Brand == brand || !rec.HasName() {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// Pool returns the ranking pool for base: every record of the same material
// type from a different brand, across all rows.
func (t *Table) Pool(base models.ColorRecord) []models.ColorRecord {
	var out []models.ColorRecord
	for _, r := range t.rows {
		if r.Type != base.Type {
			continue
		}
		for _, rec := range r.Records {
			if rec.Brand != base.Brand {
				out = append(out, rec)
			}
		}
	}
	return out
}

func (t *Table) distinct(pick func(Row) (string, bool)) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range t.rows {
		v, ok := pick(r)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
