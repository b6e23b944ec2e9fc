/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Ambanifony aquaculture server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Read environment configuration, then command-line flags
  2. Initialize SQLite store
  3. Create API handler with dependencies
  4. Configure HTTP router
  5. Start server with graceful shutdown

CONFIGURATION:
  Environment variables (prefix SEAWEED_), overridable by flags:
    SEAWEED_PORT      HTTP server port (default: 8080)
    SEAWEED_DB        SQLite database path (default: seaweed.db)
    SEAWEED_COUNTRY   Default payroll country code (default: MG)

COMMAND-LINE FLAGS:
  -port     HTTP server port
  -db       SQLite database path (":memory:" for in-memory)
  -country  Default payroll country code

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/ambanifony.db"

  # Run with in-memory database
  ./server -db=":memory:"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
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
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/assamipatrick/seaweed-ambanifony-sub001/api"
	"github.com/assamipatrick/seaweed-ambanifony-sub001/store/sqlite"
)

// Config is the environment-driven configuration.
type Config struct {
	Port    int    `default:"8080"`
	DB      string `default:"seaweed.db"`
	Country string `default:"MG"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("seaweed", &cfg); err != nil {
		log.Fatalf("Failed to read environment: %v", err)
	}

	// Flags override environment values.
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DB, "SQLite database path")
	country := flag.String("country", cfg.Country, "default payroll country code")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler and router
	handler := api.NewHandler(store, *country)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
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
