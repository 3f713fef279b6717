package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mossfall/grottobot/internal/catalog"
	"github.com/mossfall/grottobot/internal/config"
	"github.com/mossfall/grottobot/internal/database"
	"github.com/mossfall/grottobot/internal/database/postgres"
	"github.com/mossfall/grottobot/internal/event"
	"github.com/mossfall/grottobot/internal/inventory"
	"github.com/mossfall/grottobot/internal/ledger"
	"github.com/mossfall/grottobot/internal/metrics"
	"github.com/mossfall/grottobot/internal/server"
)

const (
	dbMaxConnections = 10
	dbMaxIdleTime    = 5 * time.Minute
	dbMaxLifetime    = time.Hour

	shutdownTimeout = 10 * time.Second

	deadLetterPath = "events_deadletter.jsonl"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	initLogger(cfg)

	pool, err := database.NewPool(cfg.GetDBConnString(), dbMaxConnections, dbMaxIdleTime, dbMaxLifetime)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Event bus with retry and dead-letter fallback
	bus, err := event.NewResilientPublisher(event.NewMemoryBus(), event.DefaultResilientConfig(deadLetterPath))
	if err != nil {
		slog.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			slog.Error("Failed to close event publisher", "error", err)
		}
	}()

	if err := metrics.NewEventMetricsCollector().Register(bus); err != nil {
		slog.Error("Failed to register event metrics", "error", err)
		os.Exit(1)
	}

	// Repositories and services. The ledger and inventory reference each
	// other through narrow interfaces; the crediter is wired last.
	catalogSvc := catalog.NewServiceWithTTL(postgres.NewCatalogRepository(pool), time.Duration(cfg.CacheTTLSec)*time.Second)
	inventorySvc := inventory.NewService(postgres.NewInventoryRepository(pool), catalogSvc, bus, rand.Float64)
	ledgerSvc := ledger.NewService(postgres.NewLedgerRepository(pool), catalogSvc, inventorySvc, bus, rand.Float64)
	inventorySvc.SetCrediter(ledgerSvc)

	if cfg.CatalogSeed != "" {
		seedCatalog(cfg.CatalogSeed, catalogSvc)
	}

	srv := server.NewServer(cfg.Port, cfg.APIKey, nil, pool, ledgerSvc, inventorySvc, catalogSvc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}
}

// seedCatalog loads a JSON seed file and upserts its item definitions.
// A bad seed file is fatal; a partially-applied sync is not.
func seedCatalog(path string, svc catalog.Service) {
	loader := catalog.NewLoader()

	seed, err := loader.Load(path)
	if err != nil {
		slog.Error("Failed to load catalog seed", "path", path, "error", err)
		os.Exit(1)
	}

	result, err := loader.Sync(context.Background(), seed, svc)
	if err != nil {
		slog.Error("Failed to sync catalog seed", "path", path, "error", err)
		os.Exit(1)
	}

	slog.Info("Catalog seed applied",
		"path", path,
		"upserted", result.ItemsUpserted,
		"skipped", result.ItemsSkipped)
}
