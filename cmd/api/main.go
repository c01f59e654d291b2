package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/bigbestmart/catalog-backend/api/routes"
	"github.com/bigbestmart/catalog-backend/internal/catalog"
	"github.com/bigbestmart/catalog-backend/internal/media"
	"github.com/bigbestmart/catalog-backend/internal/notifications"
	product "github.com/bigbestmart/catalog-backend/internal/products"
	"github.com/bigbestmart/catalog-backend/pkg/config"
	"github.com/bigbestmart/catalog-backend/pkg/db"
	"github.com/bigbestmart/catalog-backend/pkg/geocode"
	"github.com/bigbestmart/catalog-backend/pkg/instance"
	"github.com/bigbestmart/catalog-backend/pkg/logger"
	"github.com/bigbestmart/catalog-backend/pkg/metrics"
	"github.com/bigbestmart/catalog-backend/pkg/migrate"
	"github.com/bigbestmart/catalog-backend/pkg/redis"
	"github.com/bigbestmart/catalog-backend/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Fields:      map[string]any{"env": cfg.App.Env, "instance": instance.ID()},
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.AutoRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
	} else {
		logg.Warn(ctx, "redis not configured; idempotency, rate limits and geocode cache disabled")
	}

	store, err := storage.New(ctx, cfg.Storage, logg)
	if err != nil {
		return err
	}
	uploader, err := media.NewService(store, cfg.Media, cfg.Storage)
	if err != nil {
		return err
	}

	registry := catalog.DefaultRegistry()
	entityRepo := catalog.NewRepository(dbClient.DB())
	mappingRepo := catalog.NewMappingRepository(dbClient.DB())
	catalogSvc, err := catalog.NewService(registry, entityRepo, mappingRepo, uploader, dbClient)
	if err != nil {
		return err
	}
	productSvc, err := product.NewService(product.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}
	mappingSvc, err := catalog.NewMappingService(entityRepo, mappingRepo, productSvc, dbClient)
	if err != nil {
		return err
	}
	notificationSvc, err := notifications.NewService(notifications.NewRepository(dbClient.DB()), uploader)
	if err != nil {
		return err
	}

	var geoOpts []geocode.Option
	if redisClient != nil {
		geoOpts = append(geoOpts, geocode.WithCache(redisClient, 0))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	addr := ":" + port(cfg)
	ctx = logg.WithFields(ctx, map[string]any{
		"addr":    addr,
		"storage": cfg.Storage.Provider,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			Catalog:        catalogSvc,
			Mappings:       mappingSvc,
			Notifications:  notificationSvc,
			Products:       productSvc,
			Geocoder:       geocode.NewClient(cfg.Geocode, geoOpts...),
			MaxImageBytes:  cfg.Media.MaxBytes(),
			HTTPMetrics:    metrics.NewHTTPMetrics(reg),
			MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func port(cfg *config.Config) string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return cfg.App.Port
}
