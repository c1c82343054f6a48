package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"filamento/pkg/logging"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
	HealthStatusUnknown   HealthStatus = "unknown"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Name        string                 `json:"name"`
	Status      HealthStatus           `json:"status"`
	Message     string                 `json:"message,omitempty"`
	LastChecked time.Time              `json:"last_checked"`
	Duration    string                 `json:"duration"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// SystemHealth represents the overall system health
type SystemHealth struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Uptime     string                     `json:"uptime"`
	Components map[string]ComponentHealth `json:"components"`
}

// HealthChecker defines the interface for health check functions
type HealthChecker interface {
	Check(ctx context.Context) ComponentHealth
	Name() string
}

// HealthCheckFunc adapts a plain function to HealthChecker
type HealthCheckFunc struct {
	name string
	fn   func(ctx context.Context) (HealthStatus, string, map[string]interface{})
}

func (hcf HealthCheckFunc) Name() string { return hcf.name }

func (hcf HealthCheckFunc) Check(ctx context.Context) ComponentHealth {
	start := time.Now()
	status, msg, meta := hcf.fn(ctx)
	return ComponentHealth{
		Name:        hcf.name,
		Status:      status,
		Message:     msg,
		LastChecked: start,
		Duration:    time.Since(start).String(),
		Metadata:    meta,
	}
}

// NewHealthCheckFunc creates a checker from fn
func NewHealthCheckFunc(name string, fn func(ctx context.Context) (HealthStatus, string, map[string]interface{})) HealthChecker {
	return HealthCheckFunc{name: name, fn: fn}
}

// HealthManager runs registered checks and aggregates their status
type HealthManager struct {
	checkers  map[string]HealthChecker
	startTime time.Time
	version   string
	timeout   time.Duration
	logger    *logging.ComponentLogger
	mu        sync.RWMutex
}

// NewHealthManager creates a new health manager
func NewHealthManager(version string, timeout time.Duration, logger *logging.Logger) *HealthManager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &HealthManager{
		checkers:  make(map[string]HealthChecker),
		startTime: time.Now(),
		version:   version,
		timeout:   timeout,
		logger:    logger.WithComponent("health"),
	}
}

// RegisterChecker registers a health checker, replacing any with the same name
func (hm *HealthManager) RegisterChecker(checker HealthChecker) {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	hm.checkers[checker.Name()] = checker
	hm.logger.Debug("Registered health checker", logging.String("checker", checker.Name()))
}

// CheckAll runs all health checks concurrently
func (hm *HealthManager) CheckAll(ctx context.Context) SystemHealth {
	start := time.Now()

	hm.mu.RLock()
	checkers := make([]HealthChecker, 0, len(hm.checkers))
	for _, c := range hm.checkers {
		checkers = append(checkers, c)
	}
	hm.mu.RUnlock()

	results := make(chan ComponentHealth, len(checkers))
	var wg sync.WaitGroup
	for _, checker := range checkers {
		wg.Add(1)
		go func(c HealthChecker) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, hm.timeout)
			defer cancel()
			results <- c.Check(checkCtx)
		}(checker)
	}
	wg.Wait()
	close(results)

	components := make(map[string]ComponentHealth, len(checkers))
	for r := range results {
		components[r.Name] = r
	}
	status := determineSystemHealth(components)

	hm.logger.Debug("Completed health check",
		logging.String("status", string(status)),
		logging.Duration("duration", time.Since(start)),
		logging.Int("components", len(components)))

	return SystemHealth{
		Status:     status,
		Timestamp:  time.Now(),
		Version:    hm.version,
		Uptime:     time.Since(hm.startTime).Round(time.Second).String(),
		Components: components,
	}
}

// determineSystemHealth calculates overall system health from components
func determineSystemHealth(components map[string]ComponentHealth) HealthStatus {
	if len(components) == 0 {
		return HealthStatusUnknown
	}
	healthy, degraded := 0, 0
	for _, c := range components {
		switch c.Status {
		case HealthStatusHealthy:
			healthy++
		case HealthStatusDegraded:
			degraded++
		case HealthStatusUnhealthy:
			return HealthStatusUnhealthy
		}
	}
	if degraded > 0 {
		return HealthStatusDegraded
	}
	if healthy == len(components) {
		return HealthStatusHealthy
	}
	return HealthStatusUnknown
}

// Handler serves the aggregated health. Degraded still answers 200.
func (hm *HealthManager) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := hm.CheckAll(r.Context())
		w.Header().Set("Content-Type", "application/json")
		switch h.Status {
		case HealthStatusHealthy, HealthStatusDegraded:
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(h)
	}
}
