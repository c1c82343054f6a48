package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	errs "filamento/pkg/errors"
)

func loadTestTable(t *testing.T) *Table {
	t.Helper()
	schema, err := LoadSchema(filepath.Join("testdata", "schema.yaml"))
	if err != nil {
		t.Fatalf("LoadSchema: %v", err)
	}
	tbl, err := LoadFile(filepath.Join("testdata", "catalog.csv"), schema)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	return tbl
}

func TestParseSchema_Defaults(t *testing.T) {
	s, err := ParseSchema([]byte("brands:\n  - name: Bambu\n"))
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	if s.TypeColumn != "Tipo" || s.BaseColorColumn != "Color Base" {
		t.Fatalf("unexpected default columns: %+v", s)
	}
	b := s.Brands[0]
	if b.NameColumn != "Bambu" || b.CodeColumn != "Bambu Code" || b.ColorColumn != "Bambu Color" {
		t.Fatalf("unexpected brand defaults: %+v", b)
	}
}

func TestParseSchema_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no brands", "type_column: Tipo\n"},
		{"duplicate brand", "brands:\n  - name: A\n  - name: A\n"},
		{"empty name", "brands:\n  - name: ' '\n"},
		{"brand on type column", "brands:\n  - name: Tipo\n"},
		{"malformed", "brands: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchema([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errs.Is(err, errs.ErrValidation) {
				t.Fatalf("expected validation error, got %T: %v", err, err)
			}
		})
	}
}

func TestLoadSchema_MissingFile(t *testing.T) {
	_, err := LoadSchema(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errs.Is(err, errs.ErrData) {
		t.Fatalf("expected data error, got %v", err)
	}
}

func TestInferSchema(t *testing.T) {
	header := []string{"Tipo", "Color Base", "Bambu", "Bambu Code", "Bambu Color", "eSun", "eSun Code", "eSun Color\r"}
	s, err := InferSchema(header)
	if err != nil {
		t.Fatalf("InferSchema: %v", err)
	}
	if got := s.BrandNames(); !reflect.DeepEqual(got, []string{"Bambu", "eSun"}) {
		t.Fatalf("unexpected brands %v", got)
	}
	if _, err := InferSchema([]string{"Tipo", "Color Base"}); err == nil {
		t.Fatal("expected error when no brand columns")
	}
}

func TestReadCSV_Records(t *testing.T) {
	tbl := loadTestTable(t)
	if tbl.Len() != 5 {
		t.Fatalf("expected 5 rows, got %d", tbl.Len())
	}
	rec, ok := tbl.Lookup("PLA", "Rojo", "Prusament")
	if !ok {
		t.Fatal("expected Prusament PLA Rojo record")
	}
	want := struct{ name, code, hex string }{"Lipstick Red", "PRM-LR", "#C8102E"}
	if rec.ColorName != want.name || rec.Code != want.code || rec.Hex != want.hex || rec.BaseColor != "Rojo" || rec.Type != "PLA" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if _, ok := tbl.Lookup("PLA", "Negro", "eSun"); ok {
		t.Fatal("blank name cell must not produce a record")
	}
	if _, ok := tbl.Lookup("ABS", "Rojo", "Bambu"); ok {
		t.Fatal("unknown type must not match")
	}
	white, _ := tbl.Lookup("PLA", "Blanco", "eSun")
	if white.Hex != "#ccc" {
		t.Fatalf("placeholder hex should be kept verbatim for the codec, got %q", white.Hex)
	}
}

func TestFilters(t *testing.T) {
	tbl := loadTestTable(t)
	if got := tbl.Types(); !reflect.DeepEqual(got, []string{"PLA", "PETG"}) {
		t.Fatalf("Types = %v", got)
	}
	if got := tbl.BaseColors(""); !reflect.DeepEqual(got, []string{"Rojo", "Negro", "Blanco"}) {
		t.Fatalf("BaseColors(all) = %v", got)
	}
	if got := tbl.BaseColors("PETG"); !reflect.DeepEqual(got, []string{"Rojo"}) {
		t.Fatalf("BaseColors(PETG) = %v", got)
	}
	if got := tbl.Brands(); !reflect.DeepEqual(got, []string{"Bambu", "Prusament", "eSun"}) {
		t.Fatalf("Brands = %v", got)
	}
	if !tbl.HasBrand("eSun") || tbl.HasBrand("Sunlu") {
		t.Fatal("HasBrand mismatch")
	}
}

func TestEquivalents(t *testing.T) {
	tbl := loadTestTable(t)
	got := tbl.Equivalents("PLA", "Negro", "Bambu")
	if len(got) != 1 || got[0].Brand != "Prusament" {
		t.Fatalf("expected only Prusament, got %+v", got)
	}
	got = tbl.Equivalents("PLA", "Rojo", "eSun")
	if len(got) != 2 || got[0].Brand != "Bambu" || got[1].Brand != "Prusament" {
		t.Fatalf("expected brand order Bambu, Prusament; got %+v", got)
	}
	// first matching row wins; the second PLA/Rojo line is not consulted
	for _, r := range got {
		if r.ColorName == "Scarlet" {
			t.Fatal("second PLA/Rojo row should not be used")
		}
	}
	if got := tbl.Equivalents("PLA", "Verde", "Bambu"); got != nil {
		t.Fatalf("expected nil for unknown row, got %+v", got)
	}
}

func TestPool(t *testing.T) {
	tbl := loadTestTable(t)
	base, _ := tbl.Lookup("PLA", "Rojo", "Bambu")
	pool := tbl.Pool(base)
	for _, r := range pool {
		if r.Type != "PLA" || r.Brand == "Bambu" {
			t.Fatalf("pool contains %+v", r)
		}
	}
	// PLA rows: Rojo(2 others) + Negro(1) + Blanco(2) + Rojo#2(0) = 5
	if len(pool) != 5 {
		t.Fatalf("expected 5 pool records, got %d", len(pool))
	}
}

func TestReadCSV_ToleratesShortRowsAndCR(t *testing.T) {
	data := "Tipo,Color Base,A,A Code,A Color\r\nPLA,Rojo,Red\r\n,,,,\r\nPETG,Azul,Blue,B1,#0000FF\r\n"
	s, _ := ParseSchema([]byte("brands:\n  - name: A\n"))
	tbl, err := ReadCSV(strings.NewReader(data), s)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("expected blank line skipped, got %d rows", tbl.Len())
	}
	rec, ok := tbl.Lookup("PLA", "Rojo", "A")
	if !ok || rec.Code != "" || rec.Hex != "" {
		t.Fatalf("short row should give empty code/hex, got %+v", rec)
	}
	rec, _ = tbl.Lookup("PETG", "Azul", "A")
	if rec.Hex != "#0000FF" {
		t.Fatalf("trailing CR not stripped: %q", rec.Hex)
	}
}

func TestReadCSV_MissingColumns(t *testing.T) {
	s, _ := ParseSchema([]byte("brands:\n  - name: Sunlu\n"))
	_, err := ReadCSV(strings.NewReader("Tipo,Color Base,A\nPLA,Rojo,Red\n"), s)
	if !errs.Is(err, errs.ErrValidation) {
		t.Fatalf("expected validation error for missing brand column, got %v", err)
	}
	_, err = ReadCSV(strings.NewReader("Kind,Color Base,Sunlu\n"), s)
	if err == nil {
		t.Fatal("expected error for missing type column")
	}
	_, err = ReadCSV(strings.NewReader(""), s)
	if !errs.Is(err, errs.ErrData) {
		t.Fatalf("expected data error for empty input, got %v", err)
	}
}

func TestLoadFile_Inferred(t *testing.T) {
	tbl, err := LoadFile(filepath.Join("testdata", "catalog.csv"), Schema{})
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got := tbl.Brands(); !reflect.DeepEqual(got, []string{"Bambu", "Prusament", "eSun"}) {
		t.Fatalf("inferred brands %v", got)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.csv"), Schema{})
	if !errs.Is(err, errs.ErrData) {
		t.Fatalf("expected data error, got %v", err)
	}
}

func TestTableIsSnapshot(t *testing.T) {
	tbl := loadTestTable(t)
	rows := tbl.Rows()
	rows[0].Type = "mutated"
	if tbl.Types()[0] != "PLA" {
		t.Fatal("Rows must return a copy")
	}
	dir := t.TempDir()
	p := filepath.Join(dir, "c.csv")
	if err := os.WriteFile(p, []byte("Tipo,Color Base,A\nPLA,Rojo,Red\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(p, Schema{}); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
}

func TestResolveSchema(t *testing.T) {
	s, err := ResolveSchema(false, "")
	if err != nil {
		t.Fatalf("default schema: %v", err)
	}
	if got := s.BrandNames(); !reflect.DeepEqual(got, []string{"Bambu", "Prusament", "eSun", "Sunlu"}) {
		t.Fatalf("default brands %v", got)
	}

	s, err = ResolveSchema(false, filepath.Join("testdata", "schema.yaml"))
	if err != nil {
		t.Fatalf("schema file: %v", err)
	}
	if len(s.Brands) == 0 {
		t.Fatal("schema file has no brands")
	}

	// inference wins over a file and yields the zero schema
	s, err = ResolveSchema(true, filepath.Join("testdata", "schema.yaml"))
	if err != nil || len(s.Brands) != 0 {
		t.Fatalf("infer = %+v, %v", s, err)
	}

	if _, err := ResolveSchema(false, filepath.Join(t.TempDir(), "missing.yaml")); !errs.Is(err, errs.ErrData) {
		t.Fatalf("missing schema file err = %v", err)
	}
}
