// Command filamento looks up a filament color in the catalog and prints its
// equivalents and the closest colors from other brands.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"filamento/internal/catalog"
	"filamento/internal/matcher"
	"filamento/internal/similarity"
	"filamento/pkg/config"
	"filamento/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	var (
		catalogFile = flag.String("catalog", cfg.CatalogFile, "catalog CSV file")
		schemaFile  = flag.String("schema", cfg.SchemaFile, "schema YAML; empty uses the built-in schema")
		inferSchema = flag.Bool("infer", cfg.SchemaInfer, "infer brands from the catalog header (overrides -schema)")
		typ         = flag.String("type", "", "material type (Tipo)")
		baseColor   = flag.String("color", "", "base color (Color Base)")
		brand       = flag.String("brand", "", "brand (Marca)")
		metric      = flag.String("metric", cfg.SimilarityMetric, "similarity metric: rgb or hsl")
		threshold   = flag.Float64("threshold", cfg.MatchThreshold, "minimum similarity (0-100)")
		limit       = flag.Int("limit", cfg.ResultLimit, "maximum similar colors; 0 = all")
		perRow      = flag.Int("per-row", 3, "cards per row")
		hexA        = flag.String("a", "", "score mode: first hex color")
		hexB        = flag.String("b", "", "score mode: second hex color")
		asJSON      = flag.Bool("json", false, "print JSON instead of cards")
		verbose     = flag.Bool("v", false, "log to stderr")
	)
	flag.Parse()

	if err := run(runOptions{
		catalogFile: *catalogFile,
		schemaFile:  *schemaFile,
		inferSchema: *inferSchema,
		query:       matcher.Query{Type: *typ, BaseColor: *baseColor, Brand: *brand},
		metric:      *metric,
		threshold:   *threshold,
		limit:       *limit,
		perRow:      *perRow,
		hexA:        *hexA,
		hexB:        *hexB,
		asJSON:      *asJSON,
		verbose:     *verbose,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "filamento:", err)
		os.Exit(1)
	}
}

type runOptions struct {
	catalogFile string
	schemaFile  string
	inferSchema bool
	query       matcher.Query
	metric      string
	threshold   float64
	limit       int
	perRow      int
	hexA, hexB  string
	asJSON      bool
	verbose     bool
}

func run(o runOptions) error {
	logger := logging.Discard()
	if o.verbose {
		lc := logging.DefaultLogConfig()
		lc.Output = "stderr"
		lc.Format = "text"
		lc.Level = logging.LevelDebug
		var err error
		if logger, err = logging.NewLogger(lc); err != nil {
			return err
		}
	}

	m, err := similarity.ParseMetric(o.metric)
	if err != nil {
		return err
	}
	scorer, err := similarity.NewScorer(similarity.ConfigFor(m))
	if err != nil {
		return err
	}

	// Score mode needs no catalog.
	if o.hexA != "" || o.hexB != "" {
		svc := matcher.New(nil, scorer, matcher.Options{}, logger)
		res := svc.Score(o.hexA, o.hexB)
		if o.asJSON {
			return printJSON(res)
		}
		renderScore(os.Stdout, res)
		return nil
	}

	table, err := loadTable(o)
	if err != nil {
		return err
	}
	svc := matcher.New(table, scorer, matcher.Options{Threshold: o.threshold, Limit: o.limit}, logger)

	q := o.query
	if q.Type == "" || q.BaseColor == "" || q.Brand == "" {
		f := svc.Filters(q.Type)
		if o.asJSON {
			return printJSON(f)
		}
		renderFilters(os.Stdout, f)
		return nil
	}

	cmp, err := svc.Compare(q)
	if err != nil {
		return err
	}
	matches, err := svc.SimilarWithin(q, o.threshold)
	if err != nil {
		return err
	}
	if o.asJSON {
		return printJSON(struct {
			matcher.Comparison
			Similar matcher.Matches `json:"similar"`
		}{cmp, matches})
	}
	renderComparison(os.Stdout, cmp, o.perRow)
	fmt.Println()
	renderMatches(os.Stdout, matches, o.perRow)
	return nil
}

func loadTable(o runOptions) (*catalog.Table, error) {
	schema, err := catalog.ResolveSchema(o.inferSchema, o.schemaFile)
	if err != nil {
		return nil, err
	}
	return catalog.LoadFile(o.catalogFile, schema)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
