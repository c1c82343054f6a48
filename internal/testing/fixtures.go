// Package testutil holds catalog fixtures shared by package tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filamento/internal/catalog"
)

// CatalogCSV is a small sheet in the published layout. PLA/Negro has no eSun
// color and PLA/Blanco carries the "#ccc" placeholder for eSun.
const CatalogCSV = `Tipo,Color Base,Bambu,Bambu Code,Bambu Color,Prusament,Prusament Code,Prusament Color,eSun,eSun Code,eSun Color
PLA,Rojo,Red,10200,#C12E1F,Lipstick Red,PRM-LR,#C8102E,Fire Engine Red,PLA-R,#D0312D
PLA,Negro,Black,10101,#000000,Jet Black,PRM-JB,#1A1A1A,,,
PLA,Blanco,Jade White,10100,#FFFFFF,Signal White,PRM-SW,#F4F4F4,Cold White,PLA-W,#ccc
PETG,Rojo,Red,30200,#BB3A2E,Carmine Red,PRM-CR,#A3282D,Red,PETG-R,#B22222
`

// SchemaYAML declares the three brands of CatalogCSV.
const SchemaYAML = `brands:
  - name: Bambu
  - name: Prusament
  - name: eSun
`

// Schema parses SchemaYAML.
func Schema(t testing.TB) catalog.Schema {
	t.Helper()
	s, err := catalog.ParseSchema([]byte(SchemaYAML))
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	return s
}

// Table builds a catalog from CatalogCSV.
func Table(t testing.TB) *catalog.Table {
	t.Helper()
	return TableFrom(t, CatalogCSV)
}

// TableFrom builds a catalog from csv using the fixture schema.
func TableFrom(t testing.TB, csv string) *catalog.Table {
	t.Helper()
	tbl, err := catalog.ReadCSV(strings.NewReader(csv), Schema(t))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return tbl
}

// WriteFile writes body to name inside dir and returns the path.
func WriteFile(t testing.TB, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}
