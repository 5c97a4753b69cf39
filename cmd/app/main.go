package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"invoice-system/internal/adapters/cli"
	"invoice-system/internal/adapters/repl"
	"invoice-system/internal/app"
	"invoice-system/internal/cloud"
	"invoice-system/internal/config"
	"invoice-system/internal/core"
	"invoice-system/internal/logger"
	"invoice-system/internal/storage"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := logger.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatalf("Invalid log configuration: %v", err)
	}

	backend, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Unable to open data directory %s: %v", cfg.DataDir, err)
	}
	store := core.NewStore(backend, logger.WithComponent("store"))
	invoiceService := core.NewInvoiceService(store, logger.WithComponent("invoices"))
	inventoryService := core.NewInventoryService(store, logger.WithComponent("inventory"))

	ctx := context.Background()

	var engine *cloud.Engine
	remote, err := newRemote(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to connect to remote backend: %v", err)
	}
	if remote != nil {
		defer remote.Close()
		engine = cloud.NewEngine(store, remote, logger.WithComponent("sync"), cloud.Options{
			Debounce: cfg.PushDebounce,
		})
		if err := engine.Start(ctx); err != nil {
			log.Fatalf("Unable to start sync engine: %v", err)
		}
		defer engine.Stop()
	}

	svc := app.NewAppService(store, invoiceService, inventoryService, engine)

	if len(os.Args) > 1 {
		cli.Run(ctx, svc, os.Args[1:])
		// One-shot mutations must not be lost to the debounce window.
		svc.FlushSync(ctx)
		return
	}

	repl.Run(ctx, svc, bufio.NewReader(os.Stdin))
	svc.FlushSync(ctx)
}

// newRemote selects the remote document store from configuration.
// Returns (nil, nil) when sync is not configured.
func newRemote(ctx context.Context, cfg config.Config) (cloud.Remote, error) {
	switch cfg.RemoteBackend {
	case config.BackendPostgres:
		return cloud.NewPostgresStore(ctx, cfg.DatabaseURL, logger.WithComponent("postgres"))
	case config.BackendRedis:
		return cloud.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, logger.WithComponent("redis"))
	default:
		return nil, nil
	}
}
