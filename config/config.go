/*
Package config loads server configuration from the environment.

PURPOSE:
  Reads environment variables (a local .env file is honored when
  present) and hands the server a validated Config. Flags in
  cmd/server override these values.

VARIABLES:
  PAYROLL_PORT          HTTP port (default 8080)
  PAYROLL_DB            SQLite database path (default payroll.db)
  PAYROLL_NIGHT_START   Night window start, HH:MM (default 21:00)
  PAYROLL_NIGHT_END     Night window end, HH:MM (default 06:00)

SEE ALSO:
  - cmd/server/main.go: flag overrides and startup
*/
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/turno/payroll-engine/schedule"
)

// Config is the resolved server configuration.
type Config struct {
	Port   int
	DBPath string

	// NightWindow is the legally defined nocturnal band applied to
	// every area schedule.
	NightWindow schedule.NightWindow
}

// Load reads the environment, honoring a .env file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := 8080
	if v := os.Getenv("PAYROLL_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p <= 0 || p > 65535 {
			return nil, fmt.Errorf("invalid PAYROLL_PORT %q", v)
		}
		port = p
	}

	dbPath := getEnv("PAYROLL_DB", "payroll.db")

	nw, err := schedule.NewNightWindow(
		getEnv("PAYROLL_NIGHT_START", "21:00"),
		getEnv("PAYROLL_NIGHT_END", "06:00"),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid night window: %w", err)
	}

	return &Config{
		Port:        port,
		DBPath:      dbPath,
		NightWindow: nw,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
