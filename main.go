package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/devteam/internal/adapter/generation"
	"github.com/xiaot623/devteam/internal/bus"
	"github.com/xiaot623/devteam/internal/config"
	"github.com/xiaot623/devteam/internal/registry"
	"github.com/xiaot623/devteam/internal/repository"
	"github.com/xiaot623/devteam/internal/service"
	v1 "github.com/xiaot623/devteam/internal/transport/http/v1"
	"github.com/xiaot623/devteam/internal/transport/ws"
	"github.com/xiaot623/devteam/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting devteam service...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Generation URL: %s", cfg.GenerationURL)

	// Initialize store
	db, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize stage registry
	var reg *registry.Registry
	if cfg.TeamConfigPath != "" {
		defs, err := registry.LoadTeamFile(cfg.TeamConfigPath)
		if err != nil {
			log.Fatalf("Failed to load team config: %v", err)
		}
		reg, err = registry.New(defs)
		if err != nil {
			log.Fatalf("Failed to initialize registry: %v", err)
		}
		log.Printf("Loaded %d stages from %s", len(defs), cfg.TeamConfigPath)
	} else {
		reg = registry.Default()
	}

	// Initialize event bus
	eventBus := bus.New(
		bus.WithQueueSize(cfg.SubscriberQueueSize),
		bus.WithHeartbeatInterval(cfg.HeartbeatInterval),
	)
	defer eventBus.Close()

	// Initialize generation client
	genClient := generation.NewClient(cfg.GenerationURL, cfg.GenerationAPIKey, cfg.GenerationModel, cfg.StageTimeout)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize service
	svc := service.New(db, reg, eventBus, genClient, cfg, policyEngine)

	// Initialize handlers
	h := v1.NewHandler(svc)
	wsServer := ws.NewServer(eventBus)

	// Create Echo server
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Register routes
	h.RegisterRoutes(e)
	e.GET("/ws/logs", wsServer.HandleWebSocket)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down devteam service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Devteam service stopped")
}
