package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given explicitly
const DefaultPath = "config.yml"

// Source formats
const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// Config 应用配置
type Config struct {
	Port      string `yaml:"port" validate:"required"`
	DBPath    string `yaml:"db_path" validate:"required"`
	JWTSecret string `yaml:"jwt_secret"`
	DataDir   string `yaml:"data_dir"`

	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`

	// Cities maps a lower-case city name to its trip source
	Cities map[string]CityConfig `yaml:"cities" validate:"required,min=1,dive"`
}

// CityConfig describes where a city's trips come from
type CityConfig struct {
	// Source is a CSV path, relative paths resolve against DataDir
	Source string `yaml:"source" validate:"required_unless=Format sqlite"`
	Format string `yaml:"format" validate:"omitempty,oneof=csv sqlite"`
}

// LogConfig controls the slog handler
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	RateLimit  int           `yaml:"rate_limit" validate:"gte=0"`
	RateWindow time.Duration `yaml:"rate_window" validate:"gte=0"`
	CacheSize  int           `yaml:"cache_size" validate:"gte=0"`
	CacheTTL   time.Duration `yaml:"cache_ttl" validate:"gte=0"`
}

// Default returns the built-in configuration for the three bikeshare cities
func Default() *Config {
	return &Config{
		Port:    ":8080",
		DBPath:  "./data/bikeshare.db",
		DataDir: "./data",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			RateLimit:  120,
			RateWindow: time.Minute,
			CacheSize:  3,
			CacheTTL:   10 * time.Minute,
		},
		Cities: map[string]CityConfig{
			"chicago":       {Source: "chicago.csv", Format: FormatCSV},
			"new york city": {Source: "new_york_city.csv", Format: FormatCSV},
			"washington":    {Source: "washington.csv", Format: FormatCSV},
		},
	}
}

// Load 加载配置
//
// Defaults are overlaid with the YAML file at path, then with environment
// variables, then validated. A missing file is only an error when path is
// not DefaultPath.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			// A file that lists cities replaces the built-in set
			defaults := cfg.Cities
			cfg.Cities = nil
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			if len(cfg.Cities) == 0 {
				cfg.Cities = defaults
			}
		case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	applyEnv(cfg)
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		cfg.JWTSecret = jwtSecret
	}
	if dataDir := os.Getenv("BIKESHARE_DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}
}

func (c *Config) normalize() {
	cities := make(map[string]CityConfig, len(c.Cities))
	for name, city := range c.Cities {
		if city.Format == "" {
			city.Format = FormatCSV
		}
		cities[NormalizeCity(name)] = city
	}
	c.Cities = cities
}

// Validate checks struct constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// CityNames returns the configured city names in sorted order
func (c *Config) CityNames() []string {
	names := make([]string, 0, len(c.Cities))
	for name := range c.Cities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// City looks a city up case-insensitively
func (c *Config) City(name string) (CityConfig, bool) {
	_, city, ok := c.Lookup(name)
	return city, ok
}

// Lookup is City that also returns the canonical city name
func (c *Config) Lookup(name string) (string, CityConfig, bool) {
	key := NormalizeCity(name)
	city, ok := c.Cities[key]
	return key, city, ok
}

// SourcePath resolves a city's source path against DataDir
func (c *Config) SourcePath(city CityConfig) string {
	if city.Source == "" || filepath.IsAbs(city.Source) || c.DataDir == "" {
		return city.Source
	}
	return filepath.Join(c.DataDir, city.Source)
}

// NormalizeCity lower-cases a city name and collapses its whitespace
func NormalizeCity(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
