// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/inventory-backend/internal/app"
	"github.com/your-org/inventory-backend/internal/config"
	"github.com/your-org/inventory-backend/internal/domain/replenishment"
	"github.com/your-org/inventory-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/inventory-backend/internal/infrastructure/database/redis"
	"github.com/your-org/inventory-backend/internal/interfaces/http"
	"github.com/your-org/inventory-backend/internal/pkg/logger"
	"github.com/your-org/inventory-backend/internal/pkg/pdf"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)
	log.Infof("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	// Connect to database
	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Health(); err != nil {
		log.Fatalf("Database health check failed: %v", err)
	}

	if cfg.Database.AutoMigrate {
		migration := postgres.NewMigration(db.GetDB(), log)
		if err := migration.RunAutoMigrations(); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		if err := migration.CreateIndexes(); err != nil {
			log.Warnf("Index creation failed: %v", err)
		}
		if err := migration.SeedOrderStates(); err != nil {
			log.Fatalf("Seeding order states failed: %v", err)
		}
		if cfg.IsDevelopment() {
			if err := migration.GetTableInfo(); err != nil {
				log.Warnf("Reading table info failed: %v", err)
			}
		}
	}

	serverOpts := []http.Option{http.WithHealthCheck("database", db)}

	// Redis backs rate limiting and the cross-instance replenishment lock
	var locker replenishment.Locker
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewConnection(cfg, log)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		locker = redis.NewLocker(redisClient)
		serverOpts = append(serverOpts,
			http.WithRateLimiter(redisClient),
			http.WithHealthCheck("redis", redisClient),
		)
	}

	store := postgres.NewStore(db.GetDB())
	services := app.NewServices(cfg, store, log, locker)

	var scheduler *replenishment.Scheduler
	if cfg.Scheduler.Enabled {
		location, _ := cfg.SchedulerLocation()
		scheduler, err = replenishment.NewScheduler(services.Replenishment, cfg.Scheduler.Cron, location, log.WithField("component", "scheduler"))
		if err != nil {
			log.Fatalf("Failed to create replenishment scheduler: %v", err)
		}
		scheduler.Start()
	}

	log.Info("✅ All systems operational!")

	server := http.NewServer(cfg, log, services.Handlers(pdf.NewService(cfg), log), serverOpts...)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("👋 Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.Errorf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	if scheduler != nil {
		if err := scheduler.Stop(ctx); err != nil {
			log.Errorf("Replenishment run did not finish before shutdown: %v", err)
		}
	}

	log.Info("✅ Server shutdown completed")
}
