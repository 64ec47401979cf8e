/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll surcharge engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment configuration (.env honored)
  2. Parse command-line flags (flags win over environment)
  3. Initialize SQLite store
  4. Restore the schedule registry from persisted config, seeding
     defaults for any area without one
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: from PAYROLL_PORT or 8080)
  -db      SQLite database path (default: from PAYROLL_DB or payroll.db)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  ./server -db="./data/turno.db"
  ./server -db=":memory:" -port=3000

SEE ALSO:
  - config/config.go: environment variables
  - api/server.go: router configuration
  - store/sqlite/sqlite.go: database implementation
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
	"syscall"
	"time"

	"github.com/turno/payroll-engine/api"
	"github.com/turno/payroll-engine/config"
	"github.com/turno/payroll-engine/factory"
	"github.com/turno/payroll-engine/schedule"
	"github.com/turno/payroll-engine/store/sqlite"
	"github.com/turno/payroll-engine/timebank"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	registry, err := buildRegistry(context.Background(), store, cfg.NightWindow)
	if err != nil {
		log.Fatalf("Failed to build schedule registry: %v", err)
	}

	bank := timebank.NewBank(store)
	handler := api.NewHandler(store, bank, registry)
	handler.Config = store
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

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

// buildRegistry restores persisted schedule config. The stored night
// window wins over the environment; areas without stored config get
// the default office schedule, persisted so later edits diff cleanly.
func buildRegistry(ctx context.Context, store *sqlite.Store, nw schedule.NightWindow) (*schedule.Registry, error) {
	if stored, ok, err := store.GetNightWindow(ctx); err != nil {
		return nil, err
	} else if ok {
		nw = stored
	} else if err := store.PutNightWindow(ctx, nw); err != nil {
		return nil, err
	}

	registry := schedule.NewRegistry(nw)

	configs, err := store.ListAreaSchedules(ctx)
	if err != nil {
		return nil, err
	}
	for area, raw := range configs {
		parsedArea, ds, err := factory.ParseSchedule(raw)
		if err != nil {
			return nil, fmt.Errorf("stored schedule for %s: %w", area, err)
		}
		if err := registry.Update(parsedArea, ds); err != nil {
			return nil, err
		}
	}

	for _, area := range schedule.KnownAreas() {
		if _, ok := registry.Schedule(area); ok {
			continue
		}
		cfg := defaultScheduleConfig(area)
		raw, err := json.Marshal(cfg)
		if err != nil {
			return nil, err
		}
		_, ds, err := factory.ParseSchedule(raw)
		if err != nil {
			return nil, err
		}
		if err := registry.Update(area, ds); err != nil {
			return nil, err
		}
		if err := store.PutAreaSchedule(ctx, area, raw); err != nil {
			return nil, err
		}
		log.Printf("Seeded default schedule for area %s", area)
	}

	return registry, nil
}

// defaultScheduleConfig is the standard office day: 08:00-12:00 and
// 13:45-17:00, with a disabled evening block kept for areas that later
// turn it on.
func defaultScheduleConfig(area schedule.Area) factory.ScheduleJSON {
	return factory.ScheduleJSON{
		Area: string(area),
		Subs: map[string]factory.SubIntervalJSON{
			schedule.SubManana: {Enabled: true, Start: "08:00", End: "12:00"},
			schedule.SubTarde:  {Enabled: true, Start: "13:45", End: "17:00"},
			schedule.SubNoche:  {Enabled: false, Start: "18:00", End: "22:00"},
		},
	}
}
