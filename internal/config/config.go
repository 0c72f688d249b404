// Package config centralizes application configuration into typed structs,
// loaded from a YAML file with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the top-level configuration container shared by the server and
// the device agent.
type Config struct {
	Env       string          `yaml:"env" env:"APP_ENV" env-default:"dev"`
	Server    ServerConfig    `yaml:"server"`
	Publisher PublisherConfig `yaml:"publisher"`
	Geo       GeoConfig       `yaml:"geo"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"SERVER_ADDR" env-default:":8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"10s"`
}

// PublisherConfig controls the device-side location publisher.
type PublisherConfig struct {
	Interval time.Duration `yaml:"interval" env:"PUBLISH_INTERVAL" env-default:"15s"`
}

// GeoConfig controls the proximity machinery. GeohashPrecision sizes the
// cells of the in-memory coarse index (5 ≈ 5 km cells); MaxCoverCells caps
// how many cells one bounding-box query may touch before the store falls
// back to a full scan; DefaultRadiusKm applies when a nearby query omits a
// radius.
type GeoConfig struct {
	GeohashPrecision int     `yaml:"geohash_precision" env:"GEOHASH_PRECISION" env-default:"5"`
	MaxCoverCells    int     `yaml:"max_cover_cells" env:"MAX_COVER_CELLS" env-default:"1024"`
	DefaultRadiusKm  float64 `yaml:"default_radius_km" env:"DEFAULT_RADIUS_KM" env-default:"5"`
}

// StorageConfig selects the store backend. "memory" serves tests and
// single-process demos; "sqlite" persists to Path.
type StorageConfig struct {
	Backend         string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"memory"`
	Path            string `yaml:"path" env:"STORAGE_PATH" env-default:"fieldtrack.db"`
	ClientStatePath string `yaml:"client_state_path" env:"CLIENT_STATE_PATH" env-default:"fieldtrack-agent.db"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
}

// Load reads configuration from the YAML file at path (when it exists) and
// the environment. A .env file in the working directory is loaded first so
// local development overrides work without exporting anything.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
			return &cfg, nil
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	return &cfg, nil
}
