package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"podcast-be/internal/bootstrap"
	"podcast-be/internal/config"
	"podcast-be/internal/server"
	"podcast-be/internal/tracer"
	"podcast-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// Tracing stays a no-op unless OTEL_ENABLED=true
	shutdownTracer, err := tracer.Init(context.Background(), cfg.Tracing, cfg.App.Environment)
	if err != nil {
		log.Printf("[WARN] Tracing disabled: %v", err)
	}
	defer shutdownTracer(context.Background())

	// 2. Initialize Database
	gormDB, err := database.Open(database.Options{
		Dialect: cfg.Database.Dialect,
		DSN:     cfg.Database.Connection,
	})
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	if err := container.SettlementService.Consume(ctx, container.SubscriptionService); err != nil {
		log.Panicf("Unable to start settlement consumer: %v", err)
	}
	if n, err := container.SettlementService.Rehydrate(ctx); err != nil {
		log.Printf("[WARN] Failed to reschedule pending settlements: %v", err)
	} else if n > 0 {
		log.Printf("Rescheduled %d pending settlements", n)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
