package catalog

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filamento/internal/models"
	errs "filamento/pkg/errors"
)

// ReadCSV parses the exported sheet. The first line is the header; schema
// columns are resolved against it once.
func ReadCSV(r io.Reader, schema Schema) (*Table, error) {
	header, lines, err := readAll(r)
	if err != nil {
		return nil, err
	}
	return build(header, lines, schema)
}

// ReadCSVInferred reads the sheet using InferSchema on its header.
func ReadCSVInferred(r io.Reader) (*Table, error) {
	header, lines, err := readAll(r)
	if err != nil {
		return nil, err
	}
	schema, err := InferSchema(header)
	if err != nil {
		return nil, err
	}
	return build(header, lines, schema)
}

func build(header []string, lines [][]string, schema Schema) (*Table, error) {
	res, err := schema.resolve(header)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(lines))
	for _, line := range lines {
		if blank(line) {
			continue
		}
		row := Row{Type: cell(line, res.typ), BaseColor: cell(line, res.base)}
		for _, b := range res.brands {
			name := cell(line, b.nameCol)
			if name == "" {
				continue
			}
			row.Records = append(row.Records, models.ColorRecord{
				Brand:     b.name,
				Type:      row.Type,
				BaseColor: row.BaseColor,
				ColorName: name,
				Code:      cell(line, b.code),
				Hex:       cell(line, b.hx),
			})
		}
		rows = append(rows, row)
	}
	return &Table{schema: schema, rows: rows}, nil
}

// LoadFile reads a catalog CSV from disk. A zero Schema means infer it from the header.
func LoadFile(path string, schema Schema) (*Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errs.NewData("catalog.LoadFile", path, "cannot open catalog", err)
	}
	defer f.Close()

	var t *Table
	if len(schema.Brands) == 0 {
		t, err = ReadCSVInferred(f)
	} else {
		t, err = ReadCSV(f, schema)
	}
	if err != nil {
		return nil, errs.NewData("catalog.LoadFile", path, "cannot parse catalog", err)
	}
	return t, nil
}

func readAll(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var header []string
	var lines [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, errs.NewData("catalog.readAll", "", "malformed csv", err)
		}
		if header == nil {
			header = make([]string, len(rec))
			for i, h := range rec {
				header[i] = cleanCell(h)
			}
			continue
		}
		lines = append(lines, rec)
	}
	if header == nil {
		return nil, nil, errs.NewData("catalog.readAll", "", "empty catalog (no header row)", nil)
	}
	return header, lines, nil
}

// cell returns the cleaned value at i; short rows read as empty.
func cell(line []string, i int) string {
	if i < 0 || i >= len(line) {
		return ""
	}
	return cleanCell(line[i])
}

func cleanCell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r", ""))
}

func blank(line []string) bool {
	for _, c := range line {
		if cleanCell(c) != "" {
			return false
		}
	}
	return true
}
