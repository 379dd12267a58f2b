package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/symone-ai/symone-admin/internal/analytics"
	"github.com/symone-ai/symone-admin/internal/api"
	"github.com/symone-ai/symone-admin/internal/export"
	"github.com/symone-ai/symone-admin/internal/janitor"
	"github.com/symone-ai/symone-admin/internal/store"
)

func main() {
	// Load .env if present; real environment wins
	_ = godotenv.Load()

	// Load configuration from environment
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "postgres://localhost:5432/symone_admin?sslmode=disable"
	}

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		fmt.Sscanf(portStr, "%d", &port)
	}

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Println("WARNING: Using default JWT_SECRET. Set JWT_SECRET environment variable in production!")
		jwtSecret = "change-me-in-production-min-32-chars"
	}

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	// Initialize store
	log.Println("Connecting to database...")
	st, err := store.NewStore(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer st.Close()

	// Run migrations
	log.Println("Running database migrations...")
	if err := st.Migrate(context.Background()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Load analytics engine config
	configPath := os.Getenv("ANALYTICS_CONFIG_FILE")
	engineConfig, err := analytics.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load analytics config: %v", err)
	}
	holder := analytics.NewConfigHolder(engineConfig)

	// Watch the config file for hot reloads
	if configPath != "" {
		watcher, err := analytics.NewConfigWatcher(configPath, holder)
		if err != nil {
			log.Fatalf("Failed to watch analytics config: %v", err)
		}
		defer watcher.Stop()
		log.Printf("Watching analytics config %s for changes", configPath)
	}

	analyticsService := analytics.NewService(st, holder)

	// Report export (disabled without a bucket)
	exporter, err := export.NewUploader(context.Background(), os.Getenv("EXPORT_BUCKET"), os.Getenv("EXPORT_PREFIX"))
	if err != nil {
		log.Fatalf("Failed to initialize report export: %v", err)
	}
	if exporter.Enabled() {
		log.Printf("Report export enabled (bucket=%s)", os.Getenv("EXPORT_BUCKET"))
	}

	// Start janitor
	janitorConfig := janitor.DefaultConfig()
	janitorConfig.StaleSessionTimeout = engineConfig.LivenessTimeout
	jan := janitor.NewJanitor(janitorConfig, st)
	go func() {
		if err := jan.Start(context.Background()); err != nil && err != context.Canceled {
			log.Printf("Janitor stopped: %v", err)
		}
	}()
	defer jan.Stop()

	// Create server config
	config := api.DefaultServerConfig()
	config.Port = port
	config.JWTSecret = jwtSecret
	config.AllowedOrigins = []string{corsOrigins}

	log.Printf("Server configured:")
	log.Printf("  Port: %d", config.Port)
	log.Printf("  CORS origins: %v", config.AllowedOrigins)

	// Create API server
	server := api.NewServer(config, st, analyticsService, exporter)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Gracefully shutdown the server with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
