// Package api exposes the matcher over HTTP as JSON.
package api

import (
	"net/http"
	"strconv"
	"strings"

	"filamento/internal/matcher"
	errs "filamento/pkg/errors"
	"filamento/pkg/events"
)

func queryFrom(r *http.Request) matcher.Query {
	q := r.URL.Query()
	return matcher.Query{Type: q.Get("type"), BaseColor: q.Get("color"), Brand: q.Get("brand")}
}

// FiltersHandler lists dropdown values; ?type= narrows the base colors.
func FiltersHandler(svc *matcher.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Filters(r.URL.Query().Get("type")))
	}
}

// CompareHandler returns the selected filament and its equivalents.
func CompareHandler(svc *matcher.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Compare(queryFrom(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// SimilarHandler ranks other brands' colors. An optional ?threshold=
// overrides the configured one for this request.
func SimilarHandler(svc *matcher.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := queryFrom(r)
		raw := strings.TrimSpace(r.URL.Query().Get("threshold"))
		if raw == "" {
			m, err := svc.Similar(q)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, m)
			return
		}

		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, errs.NewValidation("api.Similar", "threshold must be a number", err))
			return
		}
		m, err := svc.SimilarWithin(q, threshold)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// ScoreHandler compares two raw hex values (?a=&b=).
func ScoreHandler(svc *matcher.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		a, b := q.Get("a"), q.Get("b")
		if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
			writeError(w, errs.NewValidation("api.Score", "both a and b are required", nil))
			return
		}
		writeJSON(w, http.StatusOK, svc.Score(a, b))
	}
}

// StatsHandler reports the active catalog and scoring settings.
func StatsHandler(svc *matcher.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Stats())
	}
}

// EventsHandler lists recent reload events, newest first (?limit=, default 50).
func EventsHandler(store events.EventStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeError(w, errs.NewValidation("api.Events", "limit must be a non-negative integer", err))
				return
			}
			limit = n
		}
		all, err := store.List(r.Context(), 0)
		if err != nil {
			writeError(w, err)
			return
		}
		oldest := make([]events.StoredEvent, len(all))
		for i, e := range all {
			oldest[len(all)-1-i] = e
		}
		list := all
		if limit > 0 && limit < len(all) {
			list = all[:limit]
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"events": list,
			"state":  events.Replay(oldest),
		})
	}
}
