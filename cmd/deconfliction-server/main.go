// Command deconfliction-server runs the HTTP façade in front of the
// strategic deconfliction engine: it loads configuration, connects to
// the flight catalogue (falling back to the static fixture when no
// database is configured), and serves spec.md §6's contract until
// told to shut down.
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

	_ "github.com/lib/pq"

	"github.com/aerosentry/deconfliction/internal/db"
	"github.com/aerosentry/deconfliction/internal/httpapi"
	"github.com/aerosentry/deconfliction/pkg/config"
)

var (
	configPath  = flag.String("config", "configs/config.json", "Path to configuration file")
	port        = flag.Int("port", 0, "HTTP server port (overrides config)")
	fixturePath = flag.String("fixture", "data/sample_simulated_flights.json", "Path to the simulated-flights fixture, used when no database is configured")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = fmt.Sprintf("%d", *port)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Println("no JWT secret configured, using an insecure development default")
		cfg.Auth.JWTSecret = "dev-secret-change-in-production"
	}

	deps := httpapi.Dependencies{
		Config: cfg,
	}

	database, err := connectDatabase(cfg)
	if err != nil {
		log.Printf("database unavailable, falling back to the static fixture catalogue: %v", err)
		deps.Fixture = httpapi.LoadFixture(*fixturePath)
	} else {
		defer database.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := database.InitSchema(ctx); err != nil {
			log.Printf("failed to initialize schema: %v", err)
		}
		cancel()

		deps.DB = database.DB
		deps.Operators = db.NewOperatorRepository(database.DB)
		deps.Flights = db.NewFlightRepository(database.DB)
		deps.Analyses = db.NewMissionAnalysisRepository(database.DB)
	}

	srv := httpapi.New(deps)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on port %s", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server stopped")
}

// connectDatabase opens the catalogue database, retrying with
// backoff via db.ReconnectWithRetry if the first attempt fails —
// this covers the database starting up slightly after the server
// itself (e.g. both launched together under docker-compose).
func connectDatabase(cfg *config.Config) (*db.DB, error) {
	if cfg.Database.Driver == "" {
		return nil, fmt.Errorf("no database driver configured")
	}
	database, err := db.Connect(cfg.Database)
	if err == nil {
		return database, nil
	}
	log.Printf("initial database connection failed, retrying with backoff: %v", err)
	return db.ReconnectWithRetry(cfg.Database, 5, 2*time.Second)
}
