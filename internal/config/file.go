package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config for YAML decoding. Only non-zero values override
// the defaults.
type fileConfig struct {
	Port               string   `yaml:"port"`
	DatabaseURL        string   `yaml:"database_url"`
	DBMaxConns         int32    `yaml:"db_max_conns"`
	JWTSecret          string   `yaml:"jwt_secret"`
	JWTIssuer          string   `yaml:"jwt_issuer"`
	CORSOrigins        []string `yaml:"cors_allowed_origins"`
	StorageRoot        string   `yaml:"storage_root"`
	MaxUploadMB        int64    `yaml:"max_upload_mb"`
	LogLevel           string   `yaml:"log_level"`
	LoginRatePerMinute int      `yaml:"login_rate_per_minute"`
	DiskUsageSchedule  string   `yaml:"disk_usage_schedule"`
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg.Port = fallback(fc.Port, cfg.Port)
	cfg.DatabaseURL = fallback(fc.DatabaseURL, cfg.DatabaseURL)
	cfg.JWTSecret = fallback(fc.JWTSecret, cfg.JWTSecret)
	cfg.JWTIssuer = fallback(fc.JWTIssuer, cfg.JWTIssuer)
	cfg.StorageRoot = fallback(fc.StorageRoot, cfg.StorageRoot)
	cfg.LogLevel = fallback(fc.LogLevel, cfg.LogLevel)
	cfg.DiskUsageSchedule = fallback(fc.DiskUsageSchedule, cfg.DiskUsageSchedule)
	if len(fc.CORSOrigins) > 0 {
		cfg.CORSOrigins = parseCSV(strings.Join(fc.CORSOrigins, ","))
	}
	if fc.MaxUploadMB > 0 {
		cfg.MaxUploadBytes = fc.MaxUploadMB * bytesPerMegabyte
	}
	if fc.LoginRatePerMinute > 0 {
		cfg.LoginRatePerMinute = fc.LoginRatePerMinute
	}
	if fc.DBMaxConns > 0 {
		cfg.DBMaxConns = fc.DBMaxConns
	}
	return nil
}
