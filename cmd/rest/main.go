package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tria-chat-be/internal/bootstrap"
	"tria-chat-be/internal/config"
	"tria-chat-be/internal/server"
	"tria-chat-be/internal/tracer"
	"tria-chat-be/pkg/database"
)

const (
	sessionPurgeInterval = time.Hour
	shutdownTimeout      = 30 * time.Second
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	// The consumer outlives the signal: in-flight turns keep publishing
	// transcript entries until the server has drained.
	consumeCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	if err := container.ConsumerService.Consume(consumeCtx); err != nil {
		log.Fatalf("Background Consumer Error: %v", err)
	}
	go purgeExpiredSessions(sigCtx, container)

	// 5. Initialize Server
	srv := server.New(cfg, container)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run()
	}()

	// 6. Run until a signal or a listener failure
	select {
	case <-sigCtx.Done():
	case err := <-serverErr:
		log.Printf("Server stopped: %v", err)
	}

	// 7. Drain in order: HTTP handlers, then the transcript consumer
	if err := srv.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	stopConsumer()
	select {
	case <-container.ConsumerService.Done():
	case <-time.After(shutdownTimeout):
		log.Printf("Transcript consumer did not finish within %s", shutdownTimeout)
	}
}

func purgeExpiredSessions(ctx context.Context, container *bootstrap.Container) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := container.SessionService.PurgeExpired(ctx)
			if err != nil {
				container.Logger.Warn("SESSION", "Failed to purge expired sessions", map[string]interface{}{"error": err.Error()})
				continue
			}
			if n > 0 {
				container.Logger.Info("SESSION", "Purged expired sessions", map[string]interface{}{"count": n})
			}
		}
	}
}
