package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"

	"filamento/internal/api"
	"filamento/internal/catalog"
	"filamento/internal/constants"
	"filamento/internal/matcher"
	"filamento/internal/reload"
	"filamento/internal/similarity"
	"filamento/pkg/config"
	"filamento/pkg/events"
	"filamento/pkg/health"
	"filamento/pkg/logging"
)

var version = "dev"

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatal("Logger init failed: ", err)
	}
	defer logger.Close()
	appLog := logger.WithComponent("main")
	appLog.Info("Starting filamento", logging.String("version", version), logging.Any("config", cfg.GetConfigSummary()))

	metric, err := similarity.ParseMetric(cfg.SimilarityMetric)
	if err != nil {
		log.Fatal("Similarity metric: ", err)
	}
	scorer, err := similarity.NewScorer(similarity.ConfigFor(metric))
	if err != nil {
		log.Fatal("Similarity scorer: ", err)
	}

	schema, err := catalog.ResolveSchema(cfg.SchemaInfer, cfg.SchemaFile)
	if err != nil {
		log.Fatal("Catalog schema: ", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	table, err := catalog.LoadFile(cfg.CatalogFile, schema)
	if err != nil {
		log.Fatal("Catalog load failed: ", err)
	}
	appLog.Info("Catalog loaded", logging.Int("rows", table.Len()), logging.Strings("brands", table.Brands()))

	audit := events.NewMemoryStore(256)
	svc := matcher.New(table, scorer, matcher.Options{Threshold: cfg.MatchThreshold, Limit: cfg.ResultLimit}, logger)
	reloader := reload.New(cfg, svc, audit, constants.FileWatchDebounce, logger)
	defer reloader.Close()

	hm := health.NewHealthManager(version, constants.HealthCheckTimeout, logger)
	hm.RegisterChecker(health.NewHealthCheckFunc("catalog", func(ctx context.Context) (health.HealthStatus, string, map[string]interface{}) {
		st := svc.Stats()
		meta := map[string]interface{}{"rows": st.Rows, "brands": st.Brands, "metric": st.Metric, "loaded_at": st.LoadedAt}
		if st.Rows == 0 {
			return health.HealthStatusDegraded, "catalog is empty", meta
		}
		if reloader.LastCatalogFailed(ctx) {
			return health.HealthStatusDegraded, "last catalog reload failed; serving previous catalog", meta
		}
		return health.HealthStatusHealthy, "catalog loaded", meta
	}))

	// Hot reload: .env overrides from CONFIG_FILE
	cw := config.NewWatcher(cfg, constants.FileWatchDebounce)
	if err := cw.Start(ctx); err != nil {
		appLog.Warn("Config watcher disabled", logging.String("error", err.Error()))
	}
	defer cw.Close()
	go func() {
		for chg := range cw.Subscribe() {
			_ = reloader.Apply(ctx, chg)
		}
	}()

	// Catalog reload when the catalog or schema file changes
	if err := reloader.WatchCatalog(ctx); err != nil {
		appLog.Warn("Catalog watcher disabled", logging.String("error", err.Error()))
	}

	metricsPath := ""
	if cfg.MetricsEnabled {
		metricsPath = cfg.MetricsPath
	}
	router := api.NewRouter(svc, api.RouterOptions{
		Logger:      logger,
		Health:      hm.Handler(),
		Events:      audit,
		CORSOrigin:  cfg.CORSOrigin,
		RateRPS:     cfg.RateLimitRPS,
		RateBurst:   cfg.RateLimitBurst,
		MetricsPath: metricsPath,
		Tracing:     cfg.OTelEnabled,
		ServiceName: "filamento",
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  constants.HTTPReadTimeout,
		WriteTimeout: constants.HTTPWriteTimeout,
		IdleTimeout:  constants.HTTPIdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		appLog.Info("Received shutdown signal, initiating graceful shutdown")
		cancel()
	}()

	go func() {
		appLog.Info("Server starting", logging.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error: ", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.GracefulShutdownTimeoutDefault)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("HTTP server shutdown error", err)
	}
	appLog.Info("Application shutdown complete")
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	lc := logging.DefaultLogConfig()
	lc.Level = level
	lc.Format = cfg.LogFormat
	if cfg.EnableFileLogging {
		lc.Output = "file"
		lc.FilePath = cfg.LogFile
	}
	return logging.NewLogger(lc)
}
