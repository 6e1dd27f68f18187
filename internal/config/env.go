package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendPostgres  = "postgres"
	BackendDatastore = "datastore"
	BackendMemory    = "memory"
)

type EnvConfig struct {
	APP_PORT      string
	LOG_FILE_PATH string
	LOG_LEVEL     string

	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_MAX_OPEN_CONNS    int
	DB_MAX_IDLE_CONNS    int
	DB_CONN_MAX_LIFETIME time.Duration

	GCP_PROJECT_ID string

	FILE_REFERENCE_BACKEND string
	STORAGE_PATH           string
	PROCESSOR_CONFIG_PATH  string
	STYLE_SCOPE            string
}

// DefaultEnvConfig is filled by LoadEnvConfig.
var DefaultEnvConfig = EnvConfig{}

// LoadEnvConfig reads an optional .env file and then the process environment.
func LoadEnvConfig(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := EnvConfig{
		APP_PORT:      getString("APP_PORT", "8080"),
		LOG_FILE_PATH: getString("LOG_FILE_PATH", ""),
		LOG_LEVEL:     getString("LOG_LEVEL", "info"),

		DB_HOST:     getString("DB_HOST", "localhost"),
		DB_USER:     getString("DB_USER", "postgres"),
		DB_PASSWORD: getString("DB_PASSWORD", ""),
		DB_NAME:     getString("DB_NAME", "spreadsheets"),
		DB_SSL_MODE: getString("DB_SSL_MODE", "disable"),

		GCP_PROJECT_ID: getString("GCP_PROJECT_ID", ""),

		FILE_REFERENCE_BACKEND: getString("FILE_REFERENCE_BACKEND", BackendPostgres),
		STORAGE_PATH:           getString("STORAGE_PATH", "./storage"),
		PROCESSOR_CONFIG_PATH:  getString("PROCESSOR_CONFIG_PATH", "processors.yaml"),
		STYLE_SCOPE:            getString("STYLE_SCOPE", ".spreadsheet"),
	}

	var err error
	if cfg.DB_PORT, err = getInt("DB_PORT", 5432); err != nil {
		return err
	}
	if cfg.DB_MAX_OPEN_CONNS, err = getInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return err
	}
	if cfg.DB_MAX_IDLE_CONNS, err = getInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return err
	}
	if cfg.DB_CONN_MAX_LIFETIME, err = getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute); err != nil {
		return err
	}

	switch cfg.FILE_REFERENCE_BACKEND {
	case BackendPostgres, BackendMemory:
	case BackendDatastore:
		if cfg.GCP_PROJECT_ID == "" {
			return fmt.Errorf("GCP_PROJECT_ID is required for the %s backend", BackendDatastore)
		}
	default:
		return fmt.Errorf("unknown FILE_REFERENCE_BACKEND %q", cfg.FILE_REFERENCE_BACKEND)
	}

	DefaultEnvConfig = cfg
	return nil
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
