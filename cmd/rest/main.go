package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"course-assistant-be/internal/bootstrap"
	"course-assistant-be/internal/config"
	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/internal/server"
	"course-assistant-be/internal/tracer"
	"course-assistant-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(cfg.App)
	defer func() { _ = shutdownTracer(context.Background()) }()

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer func() { _ = sysLogger.Sync() }()

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.LogLevel)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	defer func() {
		if err := database.Close(gormDB); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}()

	// 4. Bootstrap Dependencies (Container)
	core, err := bootstrap.NewCore(gormDB, cfg, sysLogger)
	if err != nil {
		log.Panicf("Unable to bootstrap core: %v", err)
	}
	defer core.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := bootstrap.NewContainer(ctx, core)
	if err != nil {
		log.Panicf("Unable to bootstrap container: %v", err)
	}

	// 5. Background embedding worker
	go func() {
		if err := container.ConsumerService.Consume(ctx); err != nil {
			sysLogger.Error("MAIN", "Consumer stopped", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 6. Run Server until a signal arrives
	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			sysLogger.Error("MAIN", "Server stopped", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	sysLogger.Info("MAIN", "Shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sysLogger.Error("MAIN", "Graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}
