/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the travel agency server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env and environment, then apply command-line flags
  2. Open the collection backend (JSON files or SQLite)
  3. Load tours and history, optionally seed an empty catalog
  4. Create weather client, API handler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: PORT or 3000)
  -store   Backend: "json" or "sqlite" (default: STORE_BACKEND or json)
  -data    Directory for JSON collections (default: DATA_DIR or data)
  -db      SQLite database path (default: SQLITE_PATH or data/travel.db)
  -seed    JSON array of tours loaded when the catalog is empty

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete
  3. Close the backend
  4. Exit

EXAMPLES:
  # Run with JSON files under ./data
  ./server

  # Run on SQLite with a starter catalog
  ./server -store=sqlite -db=./data/travel.db -seed=./tours.seed.json

SEE ALSO:
  - config/config.go: Environment keys
  - api/server.go: Router configuration
  - booking/agency.go: Domain wiring
*/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/warp/travel-agency/api"
	"github.com/warp/travel-agency/booking"
	"github.com/warp/travel-agency/collection"
	"github.com/warp/travel-agency/config"
	"github.com/warp/travel-agency/store/jsonfile"
	"github.com/warp/travel-agency/store/sqlite"
	"github.com/warp/travel-agency/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags
	flag.IntVar(&cfg.Server.Port, "port", cfg.Server.Port, "HTTP server port")
	flag.StringVar(&cfg.Store.Backend, "store", cfg.Store.Backend, `Collection backend: "json" or "sqlite"`)
	flag.StringVar(&cfg.Store.DataDir, "data", cfg.Store.DataDir, "Directory for JSON collections")
	flag.StringVar(&cfg.Store.SQLitePath, "db", cfg.Store.SQLitePath, "SQLite database path")
	flag.StringVar(&cfg.Store.SeedFile, "seed", cfg.Store.SeedFile, "Tours loaded when the catalog is empty")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize store
	backend, err := openBackend(cfg.Store)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}

	client := weather.NewClient(weather.Config{
		BaseURL:       cfg.Weather.BaseURL,
		APIKey:        cfg.Weather.APIKey,
		Timeout:       cfg.Weather.Timeout,
		RatePerMinute: cfg.Weather.RatePerMinute,
	})

	agency, err := booking.Open(context.Background(), backend, client,
		booking.WithQuoteLimit(cfg.QuoteLogLimit),
	)
	if err != nil {
		backend.Close()
		log.Fatalf("Failed to load collections: %v", err)
	}
	defer agency.Close()

	if cfg.Store.SeedFile != "" {
		if err := seedCatalog(context.Background(), agency.Catalog, cfg.Store.SeedFile); err != nil {
			log.Printf("Warning: Failed to seed catalog: %v", err)
		}
	}

	handler := api.NewHandler(agency, client)
	router := api.NewRouter(handler, cfg.CORS.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d (store: %s)", cfg.Server.Port, cfg.Store.Backend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func openBackend(cfg config.StoreConfig) (collection.Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
				return nil, err
			}
		}
		return sqlite.New(cfg.SQLitePath)
	default:
		return jsonfile.New(cfg.DataDir)
	}
}

func seedCatalog(ctx context.Context, catalog *booking.Catalog, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var tours []booking.Tour
	if err := json.Unmarshal(data, &tours); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	_, err = catalog.Seed(ctx, tours)
	return err
}
