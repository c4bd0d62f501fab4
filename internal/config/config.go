package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Port   string
	DBPath string

	CORSAllowedOrigins []string

	// Marketplace adapter
	MarketplaceBaseURL string
	MarketplaceAPIKey  string
	FetchTimeout       time.Duration
	FetchMinInterval   time.Duration
	FetchMaxAttempts   int

	// Listing cache
	CacheTTL      time.Duration
	CacheEmptyTTL time.Duration
	CacheSize     int

	// Refresh worker
	RefreshConcurrency int

	// Comp engine cohort: other players whose sales are comparable for
	// draft-class valuations
	CohortPlayers []string
}

// Load reads configuration from the environment, with an optional .env file.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	cfg := &Config{
		Port:               "8080",
		DBPath:             "./card_portfolio.db",
		MarketplaceBaseURL: os.Getenv("MARKETPLACE_BASE_URL"),
		MarketplaceAPIKey:  os.Getenv("MARKETPLACE_API_KEY"),
		FetchTimeout:       15 * time.Second,
		FetchMinInterval:   2 * time.Second,
		FetchMaxAttempts:   3,
		CacheTTL:           15 * time.Minute,
		CacheEmptyTTL:      5 * time.Minute,
		CacheSize:          512,
		RefreshConcurrency: 3,
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if cfg.MarketplaceBaseURL == "" {
		log.Println("Warning: MARKETPLACE_BASE_URL not set, price refresh will return no data")
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = strings.Split(v, ",")
	} else {
		cfg.CORSAllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	if v := strings.TrimSpace(os.Getenv("FETCH_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FetchTimeout = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("FETCH_MIN_INTERVAL_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FetchMinInterval = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("FETCH_MAX_ATTEMPTS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FetchMaxAttempts = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CACHE_TTL_MINS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheTTL = time.Duration(n) * time.Minute
		}
	}
	if v := strings.TrimSpace(os.Getenv("CACHE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("REFRESH_CONCURRENCY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RefreshConcurrency = n
		}
	}

	if v := os.Getenv("COHORT_PLAYERS"); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.CohortPlayers = append(cfg.CohortPlayers, p)
			}
		}
	} else {
		// 2024 QB draft class, the default comparison cohort
		cfg.CohortPlayers = []string{
			"Jayden Daniels",
			"Drake Maye",
			"Bo Nix",
			"JJ McCarthy",
			"Michael Penix Jr",
		}
	}

	return cfg
}
