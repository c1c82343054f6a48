package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"filamento/pkg/filewatch"
	"filamento/pkg/metrics"
)

// Change describes a configuration update event.
// Only a subset of fields may have changed; see Fields for the list of keys.
type Change struct {
	Old    *Config
	New    *Config
	Fields []string
	Err    error
}

// Subscriber channel buffer size; small to apply back-pressure if receivers are slow.
const subBuf = 4

// Watcher re-reads configuration when CONFIG_FILE changes on disk. The file is
// a .env file; its values override the process environment before Load runs.
type Watcher struct {
	mu       sync.RWMutex
	cur      *Config
	closed   bool
	subs     []chan Change
	cancel   context.CancelFunc
	filePath string
	debounce time.Duration

	mReloads  *metrics.Counter
	mFailures *metrics.Counter
}

// NewWatcher snapshots the current configuration. Nothing is watched until Start.
func NewWatcher(initial *Config, debounce time.Duration) *Watcher {
	if initial == nil {
		initial = Load()
	}
	return &Watcher{
		cur:       initial,
		filePath:  initial.ConfigFile,
		debounce:  debounce,
		mReloads:  metrics.Default.Counter("config_reload_total", "Total number of applied config reloads"),
		mFailures: metrics.Default.Counter("config_reload_failures_total", "Total number of failed config reloads"),
	}
}

// Current returns the last valid configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cur
}

// Subscribe returns a channel to receive Change notifications.
// Caller should drain the channel until it is closed.
func (w *Watcher) Subscribe() <-chan Change {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(chan Change, subBuf)
	w.subs = append(w.subs, ch)
	return ch
}

// Close stops the watcher and closes subscriber channels.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	for _, s := range w.subs {
		close(s)
	}
	w.subs = nil
}

// Start watches CONFIG_FILE in a goroutine. It is a no-op when no file is
// configured or when already started.
func (w *Watcher) Start(ctx context.Context) error {
	if w.filePath == "" {
		return nil
	}
	fw, err := filewatch.New(w.debounce, w.filePath)
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}

	w.mu.Lock()
	if w.cancel != nil || w.closed {
		w.mu.Unlock()
		fw.Close()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.mu.Unlock()

	go func() {
		defer fw.Close()
		_ = fw.Run(ctx, func(string) { w.Reload() }, func(err error) {
			w.mFailures.Inc()
			w.notify(Change{Old: w.Current(), Err: fmt.Errorf("watch %s: %w", w.filePath, err)})
		})
	}()
	return nil
}

// Reload re-applies CONFIG_FILE (if any), rebuilds the configuration and
// notifies subscribers when watched fields differ. Invalid configurations are
// reported but never replace the current one.
func (w *Watcher) Reload() {
	if w.filePath != "" {
		if err := godotenv.Overload(w.filePath); err != nil {
			w.mFailures.Inc()
			w.notify(Change{Old: w.Current(), Err: fmt.Errorf("read %s: %w", w.filePath, err)})
			return
		}
	}

	newCfg := Load()
	if err := newCfg.Validate(); err != nil {
		w.mFailures.Inc()
		w.notify(Change{Old: w.Current(), New: newCfg, Err: fmt.Errorf("invalid config: %w", err)})
		return
	}

	w.mu.Lock()
	old := w.cur
	fields := diffKeys(old, newCfg)
	if len(fields) == 0 {
		w.mu.Unlock()
		return
	}
	w.cur = newCfg
	w.mu.Unlock()

	w.mReloads.Inc()
	w.notify(Change{Old: old, New: newCfg, Fields: fields})
}

func (w *Watcher) notify(chg Change) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, s := range w.subs {
		select {
		case s <- chg:
		default:
			// drop if slow; keep system moving
		}
	}
}

func diffKeys(a, b *Config) []string {
	if a == nil || b == nil {
		return []string{"all"}
	}
	var f []string
	appendIf := func(cond bool, name string) {
		if cond {
			f = append(f, name)
		}
	}
	appendIf(a.SimilarityMetric != b.SimilarityMetric, "SimilarityMetric")
	appendIf(a.MatchThreshold != b.MatchThreshold, "MatchThreshold")
	appendIf(a.ResultLimit != b.ResultLimit, "ResultLimit")
	appendIf(a.CatalogFile != b.CatalogFile || a.SchemaFile != b.SchemaFile || a.SchemaInfer != b.SchemaInfer, "Catalog")
	appendIf(a.LogLevel != b.LogLevel, "LogLevel")
	appendIf(a.LogFormat != b.LogFormat, "LogFormat")
	appendIf(a.MetricsEnabled != b.MetricsEnabled || a.MetricsPath != b.MetricsPath, "Metrics")
	appendIf(a.RateLimitRPS != b.RateLimitRPS || a.RateLimitBurst != b.RateLimitBurst, "RateLimit")
	return f
}

// liveFields are the Change.Fields a running server can apply in place.
var liveFields = map[string]bool{
	"SimilarityMetric": true,
	"MatchThreshold":   true,
	"ResultLimit":      true,
	"Catalog":          true,
}

// SplitFields separates changed fields that can be applied live from those
// that only take effect after a restart.
func SplitFields(fields []string) (live, restart []string) {
	for _, f := range fields {
		if liveFields[f] {
			live = append(live, f)
		} else {
			restart = append(restart, f)
		}
	}
	return live, restart
}
