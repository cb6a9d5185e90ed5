package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration values.
type Config struct {
	Secret            string
	DatabaseDSN       string
	HTTPPort          string
	MonitorInterval   time.Duration
	AlertWindowDays   int
	LowStockThreshold int64
	ExportDir         string
}

// Load reads configuration from environment variables with reasonable defaults.
func Load() Config {
	secret := os.Getenv("SECRET")
	if secret == "" {
		secret = "dev_secret"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	if _, err := strconv.Atoi(port); err != nil {
		log.Printf("invalid HTTP_PORT value %q, defaulting to 8080", port)
		port = "8080"
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = "pharmatrack.db"
	}

	interval := 60 * time.Second
	if raw := os.Getenv("MONITOR_INTERVAL_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			interval = time.Duration(secs) * time.Second
		} else {
			log.Printf("invalid MONITOR_INTERVAL_SECONDS value %q, defaulting to 60", raw)
		}
	}

	window := 90
	if raw := os.Getenv("ALERT_WINDOW_DAYS"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil && days > 0 {
			window = days
		} else {
			log.Printf("invalid ALERT_WINDOW_DAYS value %q, defaulting to 90", raw)
		}
	}

	threshold := int64(10)
	if raw := os.Getenv("LOW_STOCK_THRESHOLD"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n >= 0 {
			threshold = n
		} else {
			log.Printf("invalid LOW_STOCK_THRESHOLD value %q, defaulting to 10", raw)
		}
	}

	exportDir := os.Getenv("EXPORT_DIR")
	if exportDir == "" {
		exportDir = "."
	}

	return Config{
		Secret:            secret,
		DatabaseDSN:       dsn,
		HTTPPort:          port,
		MonitorInterval:   interval,
		AlertWindowDays:   window,
		LowStockThreshold: threshold,
		ExportDir:         exportDir,
	}
}
