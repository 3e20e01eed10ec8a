package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/library-register/cmd/api/database"
	"github.com/library-register/cmd/api/notifications"
	"github.com/library-register/cmd/api/record"
)

const storeMemory = "memory"

type Config struct {
	Port               int
	RequestTimeout     time.Duration
	StoreDriver        string
	DatabaseURL        string
	SearchDebounce     time.Duration
	RestoreConcurrency int
	NoticeTTL          time.Duration
	RateLimit          float64
	RateBurst          int

	NotificationsEnabled bool
	NotificationsURL     string
	NotificationsTimeout time.Duration

	LogLevel slog.Level
}

/* Loads .env when present, then reads the configuration from the environment. */
func loadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return parseConfig(os.Getenv)
}

func parseConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:                 8080,
		RequestTimeout:       5 * time.Second,
		StoreDriver:          database.DriverSQLite,
		DatabaseURL:          "library.db",
		SearchDebounce:       record.DefaultDebounceDelay,
		RestoreConcurrency:   record.DefaultRestoreConcurrency,
		NoticeTTL:            notifications.DefaultTTL,
		RateLimit:            10,
		RateBurst:            20,
		NotificationsTimeout: 2 * time.Second,
		LogLevel:             slog.LevelInfo,
	}
	var errs []error

	intVar := func(name string, dst *int) {
		if v := getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				errs = append(errs, fmt.Errorf("getting %s from env: %q is not a non-negative number", name, v))
				return
			}
			*dst = n
		}
	}
	// Durations must be written with a unit suffix, like 5s.
	durationVar := func(name string, dst *time.Duration) {
		if v := getenv(name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("getting %s from env: %w", name, err))
				return
			}
			*dst = d
		}
	}

	intVar("HTTP_PORT", &cfg.Port)
	durationVar("HTTP_REQUEST_TIMEOUT", &cfg.RequestTimeout)
	durationVar("SEARCH_DEBOUNCE", &cfg.SearchDebounce)
	intVar("RESTORE_CONCURRENCY", &cfg.RestoreConcurrency)
	durationVar("NOTICE_TTL", &cfg.NoticeTTL)
	intVar("RATE_BURST", &cfg.RateBurst)
	durationVar("NOTIFICATIONS_TIMEOUT", &cfg.NotificationsTimeout)

	if v := getenv("RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			errs = append(errs, fmt.Errorf("getting RATE_LIMIT from env: %q is not a non-negative number", v))
		} else {
			cfg.RateLimit = f
		}
	}

	if v := getenv("STORE_DRIVER"); v != "" {
		cfg.StoreDriver = strings.ToLower(v)
	}
	switch cfg.StoreDriver {
	case database.DriverSQLite, database.DriverPostgres, storeMemory:
	default:
		errs = append(errs, fmt.Errorf("getting STORE_DRIVER from env: unknown store %q", cfg.StoreDriver))
	}
	if v := getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	if v := getenv("NOTIFICATIONS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("getting NOTIFICATIONS_ENABLED from env: %w", err))
		}
		cfg.NotificationsEnabled = enabled
	}
	cfg.NotificationsURL = getenv("NOTIFICATIONS_URL")
	if cfg.NotificationsEnabled && cfg.NotificationsURL == "" {
		errs = append(errs, errors.New("NOTIFICATIONS_URL must be set when notifications are enabled"))
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("getting LOG_LEVEL from env: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
