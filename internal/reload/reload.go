// Package reload applies configuration and catalog file changes to a running
// matcher and records every attempt in the audit store.
package reload

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"filamento/internal/catalog"
	"filamento/internal/matcher"
	"filamento/pkg/config"
	"filamento/pkg/events"
	"filamento/pkg/filewatch"
	"filamento/pkg/logging"
)

// Reloader owns the live catalog paths. Catalog reloads always read the
// latest applied configuration, and the file watcher follows path changes.
type Reloader struct {
	svc      *matcher.Service
	audit    events.EventStore
	logger   *logging.ComponentLogger
	debounce time.Duration

	mu        sync.Mutex
	cfg       *config.Config
	stopWatch context.CancelFunc
	watched   []string
}

func New(cfg *config.Config, svc *matcher.Service, audit events.EventStore, debounce time.Duration, logger *logging.Logger) *Reloader {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Reloader{
		svc:      svc,
		audit:    audit,
		logger:   logger.WithComponent("reload"),
		debounce: debounce,
		cfg:      cfg,
	}
}

// Config returns the configuration the catalog is currently loaded from.
func (r *Reloader) Config() *config.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

// Watched lists the files the catalog watcher follows.
func (r *Reloader) Watched() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.watched...)
}

// WatchCatalog starts watching the current catalog and schema files,
// replacing any previous watcher.
func (r *Reloader) WatchCatalog(ctx context.Context) error {
	cfg := r.Config()
	fw, err := filewatch.New(r.debounce, cfg.CatalogFile, cfg.SchemaFile)
	if err != nil {
		return err
	}
	files := fw.Files()
	sort.Strings(files)

	wctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	if r.stopWatch != nil {
		r.stopWatch()
	}
	r.stopWatch = cancel
	r.watched = files
	r.mu.Unlock()

	go func() {
		defer fw.Close()
		_ = fw.Run(wctx, func(path string) {
			_ = r.ReloadCatalog(wctx, path)
		}, func(err error) {
			r.logger.Warn("Catalog watcher error", logging.String("error", err.Error()))
		})
	}()
	r.logger.Debug("Watching catalog", logging.Strings("files", files))
	return nil
}

// Close stops the catalog watcher.
func (r *Reloader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopWatch != nil {
		r.stopWatch()
		r.stopWatch = nil
	}
}

// ReloadCatalog rebuilds the table after changed was modified. A broken file
// keeps the previous table in service.
func (r *Reloader) ReloadCatalog(ctx context.Context, changed string) error {
	base := events.Base{Ts: time.Now(), Source: changed}
	t, err := loadCatalog(r.Config())
	if err != nil {
		r.logger.Error("Catalog reload failed; keeping current catalog", err, logging.String("file", changed))
		r.record(ctx, events.CatalogReloadFailed{Base: base, Error: err.Error()})
		return err
	}
	r.svc.SetTable(t)
	r.record(ctx, events.CatalogReloaded{Base: base, Rows: t.Len(), Brands: t.Brands()})
	return nil
}

// Apply acts on a config change. Scoring settings and catalog sources are
// applied in place; other changed fields are reported as needing a restart.
// A change whose catalog cannot be loaded is rejected as a whole.
func (r *Reloader) Apply(ctx context.Context, chg config.Change) error {
	base := events.Base{Ts: time.Now(), Source: "config"}
	if chg.Err != nil {
		return r.reject(ctx, base, chg.Err)
	}

	live, restart := config.SplitFields(chg.Fields)
	if len(restart) > 0 {
		r.logger.Warn("Config change needs a restart", logging.Strings("fields", restart))
		r.record(ctx, events.ConfigRejected{
			Base:  base,
			Error: "restart required to apply: " + strings.Join(restart, ", "),
		})
	}
	if len(live) == 0 {
		return nil
	}

	var table *catalog.Table
	if has(live, "Catalog") {
		t, err := loadCatalog(chg.New)
		if err != nil {
			return r.reject(ctx, base, fmt.Errorf("catalog: %w", err))
		}
		table = t
	}
	if has(live, "SimilarityMetric") || has(live, "MatchThreshold") || has(live, "ResultLimit") {
		if err := r.svc.ApplyConfig(chg.New.SimilarityMetric, chg.New.MatchThreshold, chg.New.ResultLimit); err != nil {
			return r.reject(ctx, base, err)
		}
	}

	r.mu.Lock()
	r.cfg = chg.New
	r.mu.Unlock()

	if table != nil {
		r.svc.SetTable(table)
		if err := r.WatchCatalog(ctx); err != nil {
			r.logger.Warn("Catalog watcher not moved", logging.String("error", err.Error()))
		}
	}

	r.logger.Info("Config applied", logging.Strings("fields", live))
	r.record(ctx, events.ConfigApplied{
		Base:      base,
		Fields:    live,
		Metric:    chg.New.SimilarityMetric,
		Threshold: chg.New.MatchThreshold,
	})
	return nil
}

// LastCatalogFailed reports whether the most recent catalog reload failed.
func (r *Reloader) LastCatalogFailed(ctx context.Context) bool {
	if r.audit == nil {
		return false
	}
	recent, err := r.audit.List(ctx, 0)
	if err != nil {
		return false
	}
	for _, e := range recent {
		switch e.Type {
		case events.TypeCatalogFailed:
			return true
		case events.TypeCatalogReloaded:
			return false
		}
	}
	return false
}

func (r *Reloader) reject(ctx context.Context, base events.Base, err error) error {
	r.logger.Warn("Config reload failed", logging.String("error", err.Error()))
	r.record(ctx, events.ConfigRejected{Base: base, Error: err.Error()})
	return err
}

func (r *Reloader) record(ctx context.Context, e events.Event) {
	if r.audit == nil {
		return
	}
	if err := r.audit.Append(ctx, e); err != nil {
		r.logger.Warn("Audit append failed", logging.String("error", err.Error()))
	}
}

func loadCatalog(cfg *config.Config) (*catalog.Table, error) {
	schema, err := catalog.ResolveSchema(cfg.SchemaInfer, cfg.SchemaFile)
	if err != nil {
		return nil, err
	}
	return catalog.LoadFile(cfg.CatalogFile, schema)
}

func has(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
