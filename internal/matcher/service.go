// Package matcher answers the catalog questions a color-matching client asks:
// which filters exist, what the selected filament is called across brands, and
// which colors from other brands come closest to it.
package matcher

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"filamento/internal/catalog"
	"filamento/internal/hexcolor"
	"filamento/internal/models"
	"filamento/internal/ranking"
	"filamento/internal/similarity"
	errs "filamento/pkg/errors"
	"filamento/pkg/logging"
	"filamento/pkg/metrics"
)

// Query selects one catalog cell.
type Query struct {
	Type      string `json:"type"`
	BaseColor string `json:"color"`
	Brand     string `json:"brand"`
}

func (q Query) normalized() Query {
	return Query{
		Type:      strings.TrimSpace(q.Type),
		BaseColor: strings.TrimSpace(q.BaseColor),
		Brand:     strings.TrimSpace(q.Brand),
	}
}

func (q Query) validate(op string) error {
	var missing []string
	if q.Type == "" {
		missing = append(missing, "type")
	}
	if q.BaseColor == "" {
		missing = append(missing, "color")
	}
	if q.Brand == "" {
		missing = append(missing, "brand")
	}
	if len(missing) > 0 {
		return errs.NewValidation(op, "missing filter: "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// Filters lists the values the three dropdowns may take.
type Filters struct {
	Types      []string `json:"types"`
	BaseColors []string `json:"base_colors"`
	Brands     []string `json:"brands"`
}

// Comparison is the selected filament and its equivalents from other brands.
type Comparison struct {
	Selected    models.ColorRecord   `json:"selected"`
	Equivalents []models.ColorRecord `json:"equivalents"`
}

// Matches is a similarity ranking for a selected filament.
type Matches struct {
	Base      models.ColorRecord       `json:"base"`
	Metric    similarity.Metric        `json:"metric"`
	Threshold float64                  `json:"threshold"`
	Results   []models.ScoredCandidate `json:"results"`
}

// ScoreResult is the similarity between two raw hex strings.
type ScoreResult struct {
	A          string            `json:"a"`
	B          string            `json:"b"`
	Metric     similarity.Metric `json:"metric"`
	Similarity float64           `json:"similarity"`
	ValidA     bool              `json:"valid_a"`
	ValidB     bool              `json:"valid_b"`
}

// Options tunes ranking.
type Options struct {
	Threshold float64
	Limit     int
}

// Stats summarises service activity.
type Stats struct {
	Rows      int               `json:"rows"`
	Brands    int               `json:"brands"`
	Metric    similarity.Metric `json:"metric"`
	Threshold float64           `json:"threshold"`
	Limit     int               `json:"limit"`
	LoadedAt  time.Time         `json:"loaded_at"`
	Reloads   int64             `json:"reloads"`
	Compares  int64             `json:"compares"`
	Rankings  int64             `json:"rankings"`
	NotFound  int64             `json:"not_found"`
}

// snapshot is swapped whole so a request never mixes two catalogs or metrics.
type snapshot struct {
	table    *catalog.Table
	scorer   *similarity.Scorer
	ranker   *ranking.Ranker
	opts     Options
	loadedAt time.Time
}

var (
	mCompares  = metrics.Default.Counter("matcher_compare_total", "Equivalence lookups served")
	mRankings  = metrics.Default.Counter("matcher_similar_total", "Similarity rankings served")
	mNotFound  = metrics.Default.Counter("matcher_not_found_total", "Lookups for a cell missing from the catalog")
	mReloads   = metrics.Default.Counter("matcher_reload_total", "Catalog or scoring swaps applied")
	gRows      = metrics.Default.Gauge("catalog_rows", "Rows in the active catalog")
	hRankLatMs = metrics.Default.Histogram("matcher_rank_ms", "Ranking latency in milliseconds", []float64{0.1, 0.5, 1, 5, 10, 50})
)

// Service is safe for concurrent use. Reloads replace the active snapshot;
// requests in flight keep the one they started with.
type Service struct {
	snap   atomic.Pointer[snapshot]
	logger *logging.ComponentLogger

	reloads  atomic.Int64
	compares atomic.Int64
	rankings atomic.Int64
	notFound atomic.Int64
}

// New builds a service over table. A nil scorer falls back to the default metric.
func New(table *catalog.Table, scorer *similarity.Scorer, opts Options, logger *logging.Logger) *Service {
	if scorer == nil {
		scorer = similarity.NewDefault()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Service{logger: logger.WithComponent("matcher")}
	s.store(&snapshot{table: table, scorer: scorer, ranker: ranking.NewRanker(scorer), opts: opts, loadedAt: time.Now()})
	return s
}

func (s *Service) store(sn *snapshot) {
	s.snap.Store(sn)
	if sn.table != nil {
		gRows.Set(float64(sn.table.Len()))
	}
}

func (s *Service) current() *snapshot { return s.snap.Load() }

// Table returns the active catalog.
func (s *Service) Table() *catalog.Table { return s.current().table }

// SetTable swaps in a freshly loaded catalog.
func (s *Service) SetTable(t *catalog.Table) {
	if t == nil {
		return
	}
	old := s.current()
	next := *old
	next.table = t
	next.loadedAt = time.Now()
	s.store(&next)
	s.reloads.Add(1)
	mReloads.Inc()
	s.logger.Info("Catalog swapped", logging.Int("rows", t.Len()), logging.Int("previous_rows", tableLen(old.table)))
}

// ApplyConfig switches the scoring settings in one swap. The previous settings
// stay active when any value is invalid.
func (s *Service) ApplyConfig(metric string, threshold float64, limit int) error {
	m, err := similarity.ParseMetric(metric)
	if err != nil {
		return err
	}
	if math.IsNaN(threshold) || threshold < 0 || threshold > 100 {
		return errs.NewConfig("matcher.ApplyConfig", "MATCH_THRESHOLD", fmt.Sprint(threshold), "threshold must be between 0 and 100")
	}
	if limit < 0 {
		return errs.NewConfig("matcher.ApplyConfig", "RESULT_LIMIT", fmt.Sprint(limit), "limit must not be negative")
	}
	scorer, err := similarity.NewScorer(similarity.ConfigFor(m))
	if err != nil {
		return err
	}
	next := *s.current()
	next.scorer = scorer
	next.ranker = ranking.NewRanker(scorer)
	next.opts = Options{Threshold: threshold, Limit: limit}
	s.store(&next)
	s.reloads.Add(1)
	mReloads.Inc()
	s.logger.Info("Scoring config applied",
		logging.String("metric", string(m)),
		logging.Float64("threshold", threshold),
		logging.Int("limit", limit))
	return nil
}

// Filters lists types, the base colors available (for typ when set) and brands.
func (s *Service) Filters(typ string) Filters {
	t := s.current().table
	if t == nil {
		return Filters{Types: []string{}, BaseColors: []string{}, Brands: []string{}}
	}
	return Filters{
		Types:      nonNil(t.Types()),
		BaseColors: nonNil(t.BaseColors(strings.TrimSpace(typ))),
		Brands:     nonNil(t.Brands()),
	}
}

// lookup resolves q to a record within sn.
func (s *Service) lookup(op string, sn *snapshot, q Query) (models.ColorRecord, error) {
	if err := q.validate(op); err != nil {
		return models.ColorRecord{}, err
	}
	if sn.table == nil {
		return models.ColorRecord{}, errs.NewNotFound(op, "no catalog loaded")
	}
	if !sn.table.HasBrand(q.Brand) {
		s.notFound.Add(1)
		mNotFound.Inc()
		return models.ColorRecord{}, errs.NewNotFound(op, fmt.Sprintf("unknown brand %q", q.Brand))
	}
	rec, ok := sn.table.Lookup(q.Type, q.BaseColor, q.Brand)
	if !ok {
		s.notFound.Add(1)
		mNotFound.Inc()
		return models.ColorRecord{}, errs.NewNotFound(op, fmt.Sprintf("no %s color for %s / %s", q.Brand, q.Type, q.BaseColor))
	}
	return rec, nil
}

// Compare returns the selected record and the same row's other brands.
func (s *Service) Compare(q Query) (Comparison, error) {
	q = q.normalized()
	sn := s.current()
	rec, err := s.lookup("matcher.Compare", sn, q)
	if err != nil {
		return Comparison{}, err
	}
	s.compares.Add(1)
	mCompares.Inc()
	return Comparison{
		Selected:    rec,
		Equivalents: nonNil(sn.table.Equivalents(q.Type, q.BaseColor, q.Brand)),
	}, nil
}

// Similar ranks the other brands' colors of the same type using the active threshold.
func (s *Service) Similar(q Query) (Matches, error) {
	return s.similar(q, nil)
}

// SimilarWithin is Similar with a caller-chosen threshold.
func (s *Service) SimilarWithin(q Query, threshold float64) (Matches, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 100 {
		return Matches{}, errs.NewValidation("matcher.SimilarWithin", "threshold must be between 0 and 100", nil)
	}
	return s.similar(q, &threshold)
}

func (s *Service) similar(q Query, threshold *float64) (Matches, error) {
	q = q.normalized()
	sn := s.current()
	base, err := s.lookup("matcher.Similar", sn, q)
	if err != nil {
		return Matches{}, err
	}

	opts := ranking.Options{Threshold: sn.opts.Threshold, Limit: sn.opts.Limit}
	if threshold != nil {
		opts.Threshold = *threshold
	}

	timer := hRankLatMs.Start()
	results := sn.ranker.Rank(base, sn.table.Pool(base), opts)
	timer.Observe()

	s.rankings.Add(1)
	mRankings.Inc()
	s.logger.Debug("Ranked candidates",
		logging.String("brand", base.Brand),
		logging.String("color", base.ColorName),
		logging.Int("results", len(results)))

	return Matches{Base: base, Metric: sn.scorer.Metric(), Threshold: opts.Threshold, Results: results}, nil
}

// Score compares two hex strings with the active metric. Undecodable input scores 0.
func (s *Service) Score(a, b string) ScoreResult {
	sn := s.current()
	return ScoreResult{
		A:          a,
		B:          b,
		Metric:     sn.scorer.Metric(),
		Similarity: sn.scorer.Score(a, b),
		ValidA:     hexcolor.Valid(a),
		ValidB:     hexcolor.Valid(b),
	}
}

// Stats reports the active snapshot and request counts.
func (s *Service) Stats() Stats {
	sn := s.current()
	st := Stats{
		Metric:    sn.scorer.Metric(),
		Threshold: sn.opts.Threshold,
		Limit:     sn.opts.Limit,
		LoadedAt:  sn.loadedAt,
		Reloads:   s.reloads.Load(),
		Compares:  s.compares.Load(),
		Rankings:  s.rankings.Load(),
		NotFound:  s.notFound.Load(),
	}
	if sn.table != nil {
		st.Rows = sn.table.Len()
		st.Brands = len(sn.table.Brands())
	}
	return st
}

func tableLen(t *catalog.Table) int {
	if t == nil {
		return 0
	}
	return t.Len()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
