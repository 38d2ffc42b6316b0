package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds runtime configuration sourced from an optional YAML file and
// env vars. Env vars win over the file.
type Config struct {
	Port               string
	DatabaseURL        string
	DBMaxConns         int32
	JWTSecret          string
	JWTIssuer          string
	CORSOrigins        []string
	StorageRoot        string
	MaxUploadBytes     int64
	LogLevel           string
	LoginRatePerMinute int
	DiskUsageSchedule  string
}

const (
	defaultPort          = "8080"
	defaultIssuer        = "mediavault"
	defaultStorageRoot   = "./uploads"
	defaultMaxUploadMB   = 512
	defaultLogLevel      = "info"
	defaultLoginRate     = 10
	defaultDBMaxConns    = 10
	defaultUsageSchedule = "@every 1m"
	bytesPerMegabyte     = 1 << 20
	configFileEnvVarName = "CONFIG_FILE"
)

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv(configFileEnvVarName)); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

func defaults() Config {
	return Config{
		Port:               defaultPort,
		DBMaxConns:         defaultDBMaxConns,
		JWTIssuer:          defaultIssuer,
		CORSOrigins:        []string{"*"},
		StorageRoot:        defaultStorageRoot,
		MaxUploadBytes:     defaultMaxUploadMB * bytesPerMegabyte,
		LogLevel:           defaultLogLevel,
		LoginRatePerMinute: defaultLoginRate,
		DiskUsageSchedule:  defaultUsageSchedule,
	}
}

func applyEnv(cfg *Config) error {
	cfg.Port = fallback(os.Getenv("PORT"), cfg.Port)
	cfg.DatabaseURL = fallback(os.Getenv("DATABASE_URL"), cfg.DatabaseURL)
	cfg.JWTSecret = fallback(os.Getenv("JWT_SECRET"), cfg.JWTSecret)
	cfg.JWTIssuer = fallback(os.Getenv("JWT_ISSUER"), cfg.JWTIssuer)
	cfg.StorageRoot = fallback(os.Getenv("STORAGE_ROOT"), cfg.StorageRoot)
	cfg.LogLevel = fallback(os.Getenv("LOG_LEVEL"), cfg.LogLevel)
	cfg.DiskUsageSchedule = fallback(os.Getenv("DISK_USAGE_SCHEDULE"), cfg.DiskUsageSchedule)
	if origins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); origins != "" {
		cfg.CORSOrigins = parseCSV(origins)
	}

	if v := strings.TrimSpace(os.Getenv("MAX_UPLOAD_MB")); v != "" {
		mb, err := strconv.ParseInt(v, 10, 64)
		if err != nil || mb <= 0 {
			return fmt.Errorf("invalid MAX_UPLOAD_MB value: %q", v)
		}
		cfg.MaxUploadBytes = mb * bytesPerMegabyte
	}
	if v := strings.TrimSpace(os.Getenv("LOGIN_RATE_PER_MINUTE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid LOGIN_RATE_PER_MINUTE value: %q", v)
		}
		cfg.LoginRatePerMinute = n
	}
	if v := strings.TrimSpace(os.Getenv("DB_MAX_CONNS")); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid DB_MAX_CONNS value: %q", v)
		}
		cfg.DBMaxConns = int32(n)
	}
	return nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
