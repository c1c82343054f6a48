package catalog

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"filamento/internal/constants"
	errs "filamento/pkg/errors"
)

// BrandColumns names the three columns a brand occupies in the sheet.
type BrandColumns struct {
	Name        string `yaml:"name" json:"name"`
	NameColumn  string `yaml:"name_column,omitempty" json:"name_column,omitempty"`
	CodeColumn  string `yaml:"code_column,omitempty" json:"code_column,omitempty"`
	ColorColumn string `yaml:"color_column,omitempty" json:"color_column,omitempty"`
}

// Schema declares how sheet columns map to records. It is supplied by the
// deployment (schema.yaml) rather than guessed from header text.
type Schema struct {
	TypeColumn      string         `yaml:"type_column" json:"type_column"`
	BaseColorColumn string         `yaml:"base_color_column" json:"base_color_column"`
	Brands          []BrandColumns `yaml:"brands" json:"brands"`
}

// LoadSchema reads a YAML schema file and applies defaults.
func LoadSchema(path string) (Schema, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Schema{}, errs.NewData("catalog.LoadSchema", path, "cannot read schema file", err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return Schema{}, errs.NewData("catalog.LoadSchema", path, "invalid schema", err)
	}
	return s, nil
}

// ParseSchema decodes YAML, fills default column names and validates.
func ParseSchema(data []byte) (Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, errs.NewValidation("catalog.ParseSchema", "malformed yaml", err)
	}
	s = s.withDefaults()
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// withDefaults fills omitted column names: the sheet convention is
// "<Brand>", "<Brand> Code", "<Brand> Color".
func (s Schema) withDefaults() Schema {
	if strings.TrimSpace(s.TypeColumn) == "" {
		s.TypeColumn = constants.DefaultTypeColumn
	}
	if strings.TrimSpace(s.BaseColorColumn) == "" {
		s.BaseColorColumn = constants.DefaultBaseColorColumn
	}
	brands := make([]BrandColumns, len(s.Brands))
	for i, b := range s.Brands {
		b.Name = strings.TrimSpace(b.Name)
		if b.NameColumn == "" {
			b.NameColumn = b.Name
		}
		if b.CodeColumn == "" {
			b.CodeColumn = b.Name + constants.CodeColumnSuffix
		}
		if b.ColorColumn == "" {
			b.ColorColumn = b.Name + constants.ColorColumnSuffix
		}
		brands[i] = b
	}
	s.Brands = brands
	return s
}

// Validate checks that the schema is usable.
func (s Schema) Validate() error {
	if len(s.Brands) == 0 {
		return errs.NewValidation("catalog.Schema.Validate", "schema declares no brands", nil)
	}
	seen := make(map[string]struct{}, len(s.Brands))
	for _, b := range s.Brands {
		if b.Name == "" {
			return errs.NewValidation("catalog.Schema.Validate", "brand with empty name", nil)
		}
		if _, dup := seen[b.Name]; dup {
			return errs.NewValidation("catalog.Schema.Validate", "duplicate brand "+b.Name, nil)
		}
		seen[b.Name] = struct{}{}
		if b.NameColumn == s.TypeColumn || b.NameColumn == s.BaseColorColumn {
			return errs.NewValidation("catalog.Schema.Validate", "brand "+b.Name+" reuses the type or base color column", nil)
		}
	}
	return nil
}

//go:embed default_schema.yaml
var defaultSchema []byte

// DefaultSchema is the layout of the published sheet, built into the binary.
func DefaultSchema() (Schema, error) { return ParseSchema(defaultSchema) }

// ResolveSchema picks the schema source in a fixed order: header inference,
// then the schema file, then DefaultSchema. Inference returns the zero
// Schema, which LoadFile treats as "infer from the header".
func ResolveSchema(infer bool, file string) (Schema, error) {
	switch {
	case infer:
		return Schema{}, nil
	case file != "":
		return LoadSchema(file)
	default:
		return DefaultSchema()
	}
}

// BrandNames returns brands in declared order.
func (s Schema) BrandNames() []string {
	out := make([]string, len(s.Brands))
	for i, b := range s.Brands {
		out[i] = b.Name
	}
	return out
}

// InferSchema builds a schema from a header row using the published sheet's
// naming convention: any column that is not the type or base color column and
// does not mention "Code" or "Color" is a brand. Deployments opt into this
// with SCHEMA_INFER; an explicit schema file is preferred.
func InferSchema(header []string) (Schema, error) {
	s := Schema{
		TypeColumn:      constants.DefaultTypeColumn,
		BaseColorColumn: constants.DefaultBaseColorColumn,
	}
	for _, h := range header {
		h = cleanCell(h)
		if h == "" || h == s.TypeColumn || h == s.BaseColorColumn {
			continue
		}
		if strings.Contains(h, "Code") || strings.Contains(h, "Color") {
			continue
		}
		s.Brands = append(s.Brands, BrandColumns{Name: h})
	}
	s = s.withDefaults()
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// resolved holds column indexes looked up once per header. -1 means absent.
type resolved struct {
	typ, base int
	brands    []resolvedBrand
}

type resolvedBrand struct {
	name              string
	nameCol, code, hx int
}

// resolve maps schema columns to header positions. The type, base color and
// every brand name column must exist; code and color columns are optional.
func (s Schema) resolve(header []string) (resolved, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = cleanCell(h)
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	lookup := func(col string) int {
		if i, ok := idx[col]; ok {
			return i
		}
		return -1
	}

	r := resolved{typ: lookup(s.TypeColumn), base: lookup(s.BaseColorColumn)}
	if r.typ < 0 {
		return resolved{}, errs.NewValidation("catalog.Schema.resolve", "missing type column "+s.TypeColumn, nil)
	}
	if r.base < 0 {
		return resolved{}, errs.NewValidation("catalog.Schema.resolve", "missing base color column "+s.BaseColorColumn, nil)
	}
	for _, b := range s.Brands {
		rb := resolvedBrand{
			name:    b.Name,
			nameCol: lookup(b.NameColumn),
			code:    lookup(b.CodeColumn),
			hx:      lookup(b.ColorColumn),
		}
		if rb.nameCol < 0 {
			return resolved{}, errs.NewValidation("catalog.Schema.resolve", "missing brand column "+b.NameColumn, nil)
		}
		r.brands = append(r.brands, rb)
	}
	return r, nil
}
