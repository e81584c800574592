package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yorkie-bakery-be/internal/bootstrap"
	"yorkie-bakery-be/internal/config"
	"yorkie-bakery-be/internal/server"
	"yorkie-bakery-be/internal/service"
	"yorkie-bakery-be/internal/tracer"
	"yorkie-bakery-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	var gormDB *gorm.DB
	if bootstrap.NeedsDatabase(cfg) {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg)
	if err != nil {
		log.Fatalf("Failed to bootstrap: %v", err)
	}
	defer container.Close()

	shutdownTracer := tracer.InitTracer(container.Logger)
	defer shutdownTracer(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	if err := container.CatalogIndexService.Consume(ctx); err != nil {
		log.Fatalf("Failed to start catalog indexer: %v", err)
	}
	go container.SessionPurgeService.Run(ctx)

	if container.NatsSubscriber != nil {
		if err := container.NatsSubscriber.Subscribe(ctx, service.MenuItemChangedSubject, "catalog-indexer", container.CatalogIndexService.HandleCatalogEvent); err != nil {
			container.Logger.Warn("MAIN", "Catalog event subscription failed", map[string]interface{}{"error": err.Error()})
		}
	}

	if cfg.App.SeedFile != "" {
		if err := seedCatalog(ctx, container, cfg.App.SeedFile); err != nil {
			log.Fatalf("Failed to seed catalog: %v", err)
		}
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		container.Logger.Info("MAIN", "Shutting down", nil)
		if err := srv.Shutdown(); err != nil {
			container.Logger.Error("MAIN", "Server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}

// seedCatalog loads a seed file and indexes it. Used to bring up the
// in-memory backends with a usable menu.
func seedCatalog(ctx context.Context, c *bootstrap.Container, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	items, err := c.CatalogSeedService.Parse(f)
	if err != nil {
		return err
	}
	if err := c.CatalogSeedService.Seed(ctx, items); err != nil {
		return err
	}

	indexCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	_, err = c.CatalogIndexService.IndexAll(indexCtx)
	return err
}
