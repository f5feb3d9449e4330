package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moklgydocs/mokpermissions/internal/catalog"
	"github.com/moklgydocs/mokpermissions/internal/events"
	"github.com/moklgydocs/mokpermissions/internal/handlers"
	"github.com/moklgydocs/mokpermissions/internal/infrastructure/config"
	"github.com/moklgydocs/mokpermissions/internal/infrastructure/database"
	"github.com/moklgydocs/mokpermissions/internal/infrastructure/metrics"
	"github.com/moklgydocs/mokpermissions/internal/repositories/postgres"
	"github.com/moklgydocs/mokpermissions/internal/services"
	"github.com/moklgydocs/mokpermissions/internal/services/authorization"
	"github.com/moklgydocs/mokpermissions/pkg/cache"
	"github.com/moklgydocs/mokpermissions/pkg/cache/memorycache"
	"github.com/moklgydocs/mokpermissions/pkg/cache/rediscache"
)

const (
	defaultEnv           = "dev"
	migrationsPathSuffix = "internal/infrastructure/database/migrations/postgres"
)

func main() {
	ctx := context.Background()

	// Get environment from ENV variable or use default
	env := os.Getenv("ENV")
	if env == "" {
		env = defaultEnv
	}

	// Initialize configuration
	if err := config.InitConfig(env); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	log.Printf("Connected to database: %s@%s:%d/%s",
		cfg.Database.User,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database)

	if root, err := findProjectRoot(); err == nil {
		if err := pg.RunMigrations(filepath.Join(root, migrationsPathSuffix)); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Printf("Skipping migrations: %v", err)
	}

	// Initialize repositories
	grantRepo := postgres.NewPostgresGrantRepository(pg.DB)
	definitionRepo := postgres.NewPostgresDefinitionRepository(pg.DB)
	userRoleRepo := postgres.NewPostgresUserRoleRepository(pg.DB)

	// Build the permission catalog: dynamic definitions from the database,
	// once, before anything reads it.
	defs := catalog.NewDefinitionService(
		catalog.NewDynamicDefinitionProvider(definitionRepo, cfg.Catalog.DefaultGroupName),
	)
	if err := defs.Build(ctx); err != nil {
		log.Fatalf("Failed to build permission catalog: %v", err)
	}
	log.Printf("Permission catalog built: %d groups, %d permissions",
		len(defs.Groups()), len(defs.Permissions()))

	// Compose the grant store: tenant scoping, then caching
	store := services.NewTenantScopedStore(grantRepo)

	collector := metrics.NewCollector()
	var grantCache cache.Cache
	if cfg.Cache.Enabled {
		grantCache, err = newGrantCache(ctx, &cfg.Cache)
		if err != nil {
			log.Fatalf("Failed to create grant cache: %v", err)
		}
		defer grantCache.Close()
		store = services.NewCachedStore(store, grantCache, cfg.Cache.TTL())
		collector.SetCache(grantCache)
		log.Printf("Grant cache enabled: backend=%s ttl=%s sliding=%s",
			cfg.Cache.Backend, cfg.Cache.TTL(), cfg.Cache.SlidingWindow())
	}

	// Compose the manager: validation, then events, then batch
	bus := events.NewBus()
	bus.Subscribe(func(ctx context.Context, event events.Event) error {
		log.Printf("%s %s for %s:%s (tenant %q)",
			event.Kind, event.PermissionName, event.ProviderName, event.ProviderKey, event.TenantID)
		return nil
	})
	manager := services.NewBatchPermissionManager(
		services.NewEventingManager(services.NewPermissionManager(defs, store), bus),
		defs,
		store,
	)

	exporter := metrics.NewPrometheusExporter(collector)
	checker := metrics.NewInstrumentedChecker(
		authorization.NewChecker(defs, store, userRoleRepo),
		collector,
		exporter,
	)

	// Refresh gauge metrics periodically
	stopUpdater := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				exporter.Update()
			case <-stopUpdater:
				return
			}
		}
	}()

	// Serve the admin/check API, Prometheus metrics and health
	mux := http.NewServeMux()
	handlers.NewPermissionHandler(checker, manager).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pg.HealthCheck(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("Metrics server listening on :%d", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("metrics server error: %w", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serverErrors:
		log.Fatalf("Server failed: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down", sig)
	}

	close(stopUpdater)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Metrics server shutdown error: %v", err)
	}
}

// newGrantCache builds the configured cache backend.
func newGrantCache(ctx context.Context, cfg *config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "redis":
		return rediscache.New(ctx, &rediscache.Config{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			SlidingTTL: cfg.SlidingWindow(),
		})
	default:
		return memorycache.New(&memorycache.Config{
			MaxSizeBytes:  cfg.MaxMemoryBytes,
			DefaultTTL:    cfg.TTL(),
			SlidingTTL:    cfg.SlidingWindow(),
			EnableMetrics: cfg.Metrics,
		})
	}
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}
