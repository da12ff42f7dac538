/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the account distribution engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load the config file
  2. Initialize SQLite-backed ledger
  3. Wire the repository, coordinator, stats, and access codes
  4. Configure HTTP router and panel scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Config file path (optional, YAML)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the panel scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close the database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/pool.db"

  # Run with a config file
  ./server -config="./pool.yaml"

  # Run on a different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - config/config.go: File-based configuration
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/warp/account-pool/api"
	"github.com/warp/account-pool/config"
	"github.com/warp/account-pool/notify"
	"github.com/warp/account-pool/pool"
	"github.com/warp/account-pool/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "config file path (YAML)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	panelTargets := flag.String("panels", "", "comma-separated panel targets for the availability scheduler")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.DB = *dbPath
	}

	// Initialize ledger
	store, err := sqlite.New(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Delivery sink: webhook when configured, log sink for local runs
	var sink pool.Sink
	if cfg.WebhookURL != "" {
		sink = notify.NewWebhook(cfg.WebhookURL)
	} else {
		log.Println("No webhook configured, deliveries go to the log")
		sink = notify.Log{}
	}

	// Wire the engine
	repo := pool.NewRepository(store)
	coord := pool.NewCoordinator(repo, sink)
	coord.SingleCooldown = cfg.SingleCooldown.Std()
	coord.PackCooldown = cfg.PackCooldown.Std()
	stats := pool.NewStats(store)
	codes := pool.NewAuthCodes(store)

	handler := api.NewHandler(repo, coord, stats, codes)
	handler.AuthCodeTTL = cfg.AuthCodeTTL.Std()
	if cfg.OTPURL != "" {
		handler.OTP.BaseURL = cfg.OTPURL
	}

	// Panel scheduler
	scheduler := api.NewPanelScheduler(stats, sink, splitTargets(*panelTargets))
	scheduler.RefreshInterval = cfg.PanelInterval.Std()
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", cfg.Port)
		log.Printf("📊 API available at http://localhost:%d/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func splitTargets(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
