// Package ranking orders candidate filament colors by similarity to a base color.
package ranking

import (
	"sort"

	"filamento/internal/constants"
	"filamento/internal/models"
)

// Scorer is the part of similarity.Scorer the ranker needs.
type Scorer interface {
	Exact(a, b string) float64
	Round(v float64) float64
}

// Options controls filtering of ranked results.
type Options struct {
	// Threshold is the inclusive minimum reported similarity a candidate needs to survive.
	Threshold float64
	// Limit caps the number of results; 0 means no cap.
	Limit int
}

// DefaultOptions keeps every candidate.
func DefaultOptions() Options {
	return Options{Threshold: constants.DefaultMatchThreshold}
}

// Ranker scores, filters, de-duplicates and sorts candidates.
type Ranker struct {
	scorer Scorer
}

func NewRanker(s Scorer) *Ranker { return &Ranker{scorer: s} }

type scored struct {
	cand  models.ScoredCandidate
	exact float64
}

// Rank scores every candidate against base.Hex. The pool is taken as given:
// restricting it to the base's type and to other brands is the caller's job.
//
// Candidates reporting a similarity below opts.Threshold are dropped, then
// duplicates by (brand, color name, hex, code) are removed keeping the first.
// The rest is stable-sorted by descending similarity. Ordering uses the
// unrounded score: two candidates reported with the same similarity (both 100,
// say) are ordered by their true distance, not by input order. Only candidates
// whose unrounded scores are equal keep input order. The result is never nil.
func (r *Ranker) Rank(base models.ColorRecord, candidates []models.ColorRecord, opts Options) []models.ScoredCandidate {
	kept := make([]scored, 0, len(candidates))
	seen := make(map[models.RecordKey]struct{}, len(candidates))

	for _, c := range candidates {
		exact := r.scorer.Exact(base.Hex, c.Hex)
		sim := r.scorer.Round(exact)
		if sim < opts.Threshold {
			continue
		}
		key := c.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, scored{
			cand:  models.ScoredCandidate{Record: c, Similarity: sim},
			exact: exact,
		})
	}

	// Reported ties are broken by the unrounded score; exact ties keep input order.
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].exact > kept[j].exact })

	if opts.Limit > 0 && len(kept) > opts.Limit {
		kept = kept[:opts.Limit]
	}

	out := make([]models.ScoredCandidate, len(kept))
	for i, k := range kept {
		out[i] = k.cand
	}
	return out
}
